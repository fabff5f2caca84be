/*
Package req provides helpers for HTTP request parsing and data binding.

It encapsulates JSON and multipart form parsing with size constraints, so
handlers only deal with validated, bounded input.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"relayhub/internal/pkg/errs"
)

const (
	// MaxFormMemory defines the maximum amount of memory (32 MB) ParseMultipartForm
	// will use for non-file fields. File parts beyond this spill to temporary files.
	MaxFormMemory int64 = 32 << 20 // 32 MB
)

// BindJSON binds the JSON request body to dst. Unknown fields and trailing
// content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart caps the request body at maxBodySize via http.MaxBytesReader
// and parses the multipart form. The cap rejects oversized uploads before
// their bytes are accepted into storage.
func SetupMultipart(w http.ResponseWriter, r *http.Request, maxBodySize int64) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	err := r.ParseMultipartForm(MaxFormMemory)

	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}

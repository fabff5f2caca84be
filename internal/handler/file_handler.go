/*
Package handler provides the HTTP handlers and routing setup for the relay.

This file contains the upload and download collaborators: multipart parsing,
metadata validation before any bytes are accepted, blob persistence, and the
file_shared notification hand-off to the hub.
*/
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"relayhub/internal/app/blob"
	"relayhub/internal/app/hub"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/randx"
	"relayhub/internal/pkg/req"
	"relayhub/internal/pkg/resp"
)

// uploadFormField is the multipart form field carrying the file.
const uploadFormField = "file"

// HandleUpload processes file uploads scoped to a room and uploader.
// Metadata is validated before the blob store is touched; on success the hub
// broadcasts the file_shared notification to the room.
func HandleUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "room")
		userID := chi.URLParam(r, "user")

		if customErr := hub.ValidateRoomID(roomID, deps.Config.MaxRoomIDLength); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := hub.ValidateUserID(userID, deps.Config.MaxUserIDLength); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// The body cap leaves room for multipart framing around the file.
		if customErr := req.SetupMultipart(w, r, deps.Config.MaxFileSize+req.MaxFormMemory); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")

		if customErr := hub.ValidateFileMetadata(
			header.Filename,
			mimeType,
			header.Size,
			deps.Config.MaxFileSize,
			deps.Config.AllowedFileTypes,
		); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fileID := randx.FileID()
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		fileKey := fmt.Sprintf("%s/%s%s", roomID, fileID, fileExt)

		if err := deps.Blob.Upload(r.Context(), fileKey, mimeType, header.Size, file); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		downloadURL := fmt.Sprintf("/files/%s/%s%s", roomID, fileID, fileExt)

		deps.Manager.NotifyFileShared(r.Context(), roomID, hub.FileSharedPayload{
			FileID:      fileID,
			FileName:    header.Filename,
			FileSize:    header.Size,
			Uploader:    userID,
			DownloadURL: downloadURL,
		})

		logx.Info("File uploaded and shared",
			"room_id", roomID, "user_id", userID, "file_id", fileID, "size", header.Size)

		data := map[string]any{
			"fileId":      fileID,
			"fileName":    header.Filename,
			"downloadUrl": downloadURL,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleDownload streams a previously uploaded blob back to the client.
func HandleDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "room")
		fileName := chi.URLParam(r, "file")

		if customErr := hub.ValidateRoomID(roomID, deps.Config.MaxRoomIDLength); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// The stored key embeds the room, so a request can only ever reach
		// blobs shared inside the room it names.
		if fileName == "" || strings.Contains(fileName, "..") || strings.ContainsAny(fileName, `/\`) {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileNameInvalid))
			return
		}

		fileKey := fmt.Sprintf("%s/%s", roomID, fileName)

		body, info, err := deps.Blob.Download(r.Context(), fileKey)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}
		defer body.Close()

		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")

		if _, err := io.Copy(w, body); err != nil {
			logx.Warn("File download interrupted", "file_key", fileKey)
		}
	}
}

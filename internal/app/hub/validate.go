package hub

import (
	"strings"

	"relayhub/internal/pkg/errs"
)

// maxFileNameLength bounds uploaded filenames independently of the
// filesystem; longer names are rejected as invalid.
const maxFileNameLength = 255

// isValidIDChar restricts room and user ids to letters, digits,
// underscore, and hyphen.
func isValidIDChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

func validIdentifier(id string, maxLen int) bool {
	if id == "" || len(id) > maxLen {
		return false
	}

	for _, r := range id {
		if !isValidIDChar(r) {
			return false
		}
	}

	return true
}

// ValidateRoomID checks the room identifier against length and charset bounds.
func ValidateRoomID(roomID string, maxLen int) *errs.CustomError {
	if !validIdentifier(roomID, maxLen) {
		return errs.NewError(errs.ErrInvalidRoomID)
	}
	return nil
}

// ValidateUserID checks the user identifier against length and charset bounds.
func ValidateUserID(userID string, maxLen int) *errs.CustomError {
	if !validIdentifier(userID, maxLen) {
		return errs.NewError(errs.ErrInvalidUserID)
	}
	return nil
}

// ValidateMessageContent checks that message content is non-empty and within
// the configured length bound. Length is measured in bytes, matching the
// transport read limit.
func ValidateMessageContent(content string, maxLen int) *errs.CustomError {
	if content == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if len(content) > maxLen {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}

	return nil
}

// ValidateFileMetadata sanity-checks upload metadata before any file bytes
// are accepted: the filename must not contain path separators or traversal
// components, the MIME type must be on the allow-list, and the declared size
// must be positive and within the configured maximum.
func ValidateFileMetadata(fileName, mimeType string, fileSize, maxFileSize int64, allowedTypes []string) *errs.CustomError {
	if fileName == "" || len(fileName) > maxFileNameLength {
		return errs.NewError(errs.ErrFileNameInvalid)
	}

	if strings.Contains(fileName, "..") ||
		strings.ContainsAny(fileName, `/\`) ||
		strings.ContainsRune(fileName, 0) {
		return errs.NewError(errs.ErrFileNameInvalid)
	}

	lowerMime := strings.ToLower(strings.TrimSpace(mimeType))
	allowed := false
	for _, t := range allowedTypes {
		if lowerMime == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return errs.NewError(errs.ErrFileTypeNotAllowed)
	}

	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > maxFileSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

package hub

import (
	"strings"
	"testing"

	"relayhub/internal/pkg/errs"
)

func TestValidateIdentifiers(t *testing.T) {
	const maxLen = 50

	valid := []string{
		"lobby",
		"room-1",
		"A_b-2",
		strings.Repeat("x", maxLen),
	}
	for _, id := range valid {
		if customErr := ValidateRoomID(id, maxLen); customErr != nil {
			t.Errorf("ValidateRoomID(%q) rejected a valid id: %v", id, customErr)
		}
		if customErr := ValidateUserID(id, maxLen); customErr != nil {
			t.Errorf("ValidateUserID(%q) rejected a valid id: %v", id, customErr)
		}
	}

	invalid := []string{
		"",
		strings.Repeat("x", maxLen+1),
		"room 1",
		"room/1",
		"room.1",
		"röom",
		"../lobby",
	}
	for _, id := range invalid {
		customErr := ValidateRoomID(id, maxLen)
		if customErr == nil {
			t.Errorf("ValidateRoomID(%q) accepted an invalid id", id)
		} else if customErr.Code != errs.ErrInvalidRoomID {
			t.Errorf("ValidateRoomID(%q) code = %d, want %d", id, customErr.Code, errs.ErrInvalidRoomID)
		}

		customErr = ValidateUserID(id, maxLen)
		if customErr == nil {
			t.Errorf("ValidateUserID(%q) accepted an invalid id", id)
		} else if customErr.Code != errs.ErrInvalidUserID {
			t.Errorf("ValidateUserID(%q) code = %d, want %d", id, customErr.Code, errs.ErrInvalidUserID)
		}
	}
}

func TestValidateMessageContent(t *testing.T) {
	const maxLen = 1000

	tests := []struct {
		name     string
		content  string
		wantCode int
	}{
		{"simple message", "hello", 0},
		{"exactly at the bound", strings.Repeat("a", maxLen), 0},
		{"empty", "", errs.ErrInvalidParams},
		{"one byte over", strings.Repeat("a", maxLen+1), errs.ErrMessageContentTooLong},
		// The bound is in bytes, so multibyte text hits it earlier.
		{"multibyte over the bound", strings.Repeat("é", 600), errs.ErrMessageContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customErr := ValidateMessageContent(tt.content, maxLen)

			if tt.wantCode == 0 {
				if customErr != nil {
					t.Errorf("rejected valid content: %v", customErr)
				}
				return
			}

			if customErr == nil {
				t.Fatal("accepted invalid content")
			}
			if customErr.Code != tt.wantCode {
				t.Errorf("error code = %d, want %d", customErr.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateFileMetadata(t *testing.T) {
	const maxFileSize = 10 * 1024 * 1024
	allowedTypes := []string{"image/png", "image/jpeg", "application/pdf", "text/plain"}

	tests := []struct {
		name     string
		fileName string
		mimeType string
		fileSize int64
		wantCode int
	}{
		{"valid pdf", "report.pdf", "application/pdf", 1024, 0},
		{"mime case insensitive", "pic.png", "IMAGE/PNG", 1024, 0},
		{"exactly max size", "big.png", "image/png", maxFileSize, 0},
		{"empty name", "", "image/png", 1024, errs.ErrFileNameInvalid},
		{"name too long", strings.Repeat("a", 256), "image/png", 1024, errs.ErrFileNameInvalid},
		{"path traversal", "../../etc/passwd", "text/plain", 1024, errs.ErrFileNameInvalid},
		{"forward slash", "a/b.png", "image/png", 1024, errs.ErrFileNameInvalid},
		{"backslash", `a\b.png`, "image/png", 1024, errs.ErrFileNameInvalid},
		{"embedded NUL", "a\x00b.png", "image/png", 1024, errs.ErrFileNameInvalid},
		{"disallowed mime", "page.html", "text/html", 1024, errs.ErrFileTypeNotAllowed},
		{"empty mime", "pic.png", "", 1024, errs.ErrFileTypeNotAllowed},
		{"zero size", "pic.png", "image/png", 0, errs.ErrInvalidParams},
		{"negative size", "pic.png", "image/png", -1, errs.ErrInvalidParams},
		{"over max size", "huge.png", "image/png", maxFileSize + 1, errs.ErrFileSizeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customErr := ValidateFileMetadata(tt.fileName, tt.mimeType, tt.fileSize, maxFileSize, allowedTypes)

			if tt.wantCode == 0 {
				if customErr != nil {
					t.Errorf("rejected valid metadata: %v", customErr)
				}
				return
			}

			if customErr == nil {
				t.Fatal("accepted invalid metadata")
			}
			if customErr.Code != tt.wantCode {
				t.Errorf("error code = %d, want %d", customErr.Code, tt.wantCode)
			}
		})
	}
}

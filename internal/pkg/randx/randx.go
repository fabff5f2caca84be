/*
Package randx provides generation of random identifiers used by the relay.

It produces fixed-length uppercase-alphanumeric room access codes backed by
crypto/rand, and standard UUID v4 strings for message, file, and connection ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// CodeChars defines the character set for room access codes (0-9, A-Z).
	CodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// CodeCharsLen is the size of the room code character set (36).
	CodeCharsLen = int64(len(CodeChars))
)

// RoomCode generates a room access code of the given length drawn from
// CodeChars using crypto/rand. With a charset of 36 the collision
// probability between independently generated codes is accepted at the
// expected room counts; uniqueness is ultimately enforced by the store's
// set-if-absent semantics, not by this generator.
func RoomCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("room code length must be positive, got %d", length)
	}

	result := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(CodeCharsLen))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room code: %v", err)
		}

		result[i] = CodeChars[num.Int64()]
	}

	return string(result), nil
}

// IsValidRoomCode reports whether the given string has the expected length
// and consists only of CodeChars characters.
func IsValidRoomCode(code string, length int) bool {
	if len(code) != length {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(CodeChars, char) {
			return false
		}
	}

	return true
}

// MessageID generates a UUID v4 string to serve as a unique message identifier.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates a UUID v4 string identifying a single live connection.
func ConnectionID() string {
	return uuid.New().String()
}

// FileID generates a UUID v4 string under which an uploaded blob is stored.
func FileID() string {
	return uuid.New().String()
}

/*
Package store persists room access codes and message history.

It defines a single Store contract with two interchangeable implementations:
a durable Redis store and an in-process memory store. The Fallback wrapper
selects between them per call based on connectivity, so admission and history
semantics never diverge between backends.
*/
package store

import (
	"context"
	"errors"
)

var (
	// ErrCodeNotFound is returned by GetCode when no code is stored for the room.
	ErrCodeNotFound = errors.New("store: room code not found")

	// ErrCodeExists is returned by SetCode when the room already has a code.
	// A room's code is immutable for its lifetime in the store.
	ErrCodeExists = errors.New("store: room code already exists")
)

// Store is the contract shared by the durable and in-memory backends.
// History entries are opaque marshaled messages; ordering and bounding are
// the store's responsibility, interpretation is the caller's.
//
// Any error other than the sentinel values above is treated by callers as a
// connectivity failure of the backend.
type Store interface {
	// GetCode returns the access code stored for roomID, or ErrCodeNotFound.
	GetCode(ctx context.Context, roomID string) (string, error)

	// SetCode stores the access code for roomID if none exists yet.
	// Returns ErrCodeExists if a code is already present. Once SetCode
	// succeeds, GetCode returns the same value for the backend's lifetime.
	SetCode(ctx context.Context, roomID string, code string) error

	// AppendHistory appends a marshaled message to the room's history,
	// evicting the oldest entries beyond the configured length.
	AppendHistory(ctx context.Context, roomID string, data []byte) error

	// History returns the room's retained history, oldest first.
	History(ctx context.Context, roomID string) ([][]byte, error)

	// HealthCheck reports whether the backend is currently reachable.
	HealthCheck(ctx context.Context) bool
}

package store

import (
	"context"
	"sync"
)

// memoryStore is the in-process Store implementation used when the durable
// backend is unreachable. Entries never expire before process restart; that
// is an accepted operational limitation of degraded mode, not a bug.
type memoryStore struct {
	mu         sync.Mutex
	codes      map[string]string
	history    map[string][][]byte
	historyLen int
}

// NewMemoryStore returns an in-memory Store retaining at most historyLen
// messages per room.
func NewMemoryStore(historyLen int) Store {
	return &memoryStore{
		codes:      make(map[string]string),
		history:    make(map[string][][]byte),
		historyLen: historyLen,
	}
}

func (s *memoryStore) GetCode(_ context.Context, roomID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[roomID]
	if !ok {
		return "", ErrCodeNotFound
	}

	return code, nil
}

func (s *memoryStore) SetCode(_ context.Context, roomID string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[roomID]; ok {
		return ErrCodeExists
	}

	s.codes[roomID] = code
	return nil
}

func (s *memoryStore) AppendHistory(_ context.Context, roomID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := make([]byte, len(data))
	copy(entry, data)

	history := append(s.history[roomID], entry)
	if len(history) > s.historyLen {
		history = history[len(history)-s.historyLen:]
	}
	s.history[roomID] = history

	return nil
}

func (s *memoryStore) History(_ context.Context, roomID string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.history[roomID]
	history := make([][]byte, len(stored))
	copy(history, stored)

	return history, nil
}

func (s *memoryStore) HealthCheck(_ context.Context) bool {
	return true
}

package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// flakyStore wraps an in-memory store with a switchable outage.
type flakyStore struct {
	mu    sync.Mutex
	down  bool
	inner Store
}

func newFlakyStore() *flakyStore {
	return &flakyStore{inner: NewMemoryStore(10)}
}

func (s *flakyStore) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *flakyStore) isDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.down
}

func (s *flakyStore) GetCode(ctx context.Context, roomID string) (string, error) {
	if s.isDown() {
		return "", errors.New("connection refused")
	}
	return s.inner.GetCode(ctx, roomID)
}

func (s *flakyStore) SetCode(ctx context.Context, roomID string, code string) error {
	if s.isDown() {
		return errors.New("connection refused")
	}
	return s.inner.SetCode(ctx, roomID, code)
}

func (s *flakyStore) AppendHistory(ctx context.Context, roomID string, data []byte) error {
	if s.isDown() {
		return errors.New("connection refused")
	}
	return s.inner.AppendHistory(ctx, roomID, data)
}

func (s *flakyStore) History(ctx context.Context, roomID string) ([][]byte, error) {
	if s.isDown() {
		return nil, errors.New("connection refused")
	}
	return s.inner.History(ctx, roomID)
}

func (s *flakyStore) HealthCheck(ctx context.Context) bool {
	return !s.isDown()
}

func TestFallbackSentinelsAreAuthoritative(t *testing.T) {
	ctx := context.Background()
	primary := newFlakyStore()
	f := NewFallback(primary, NewMemoryStore(10), zerolog.Nop())

	// A not-found answer from a healthy primary is a result, not an outage.
	if _, err := f.GetCode(ctx, "lobby"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("GetCode: got %v, want ErrCodeNotFound", err)
	}
	if f.Degraded() {
		t.Error("sentinel error marked the store degraded")
	}

	if err := f.SetCode(ctx, "lobby", "ABC12"); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	if err := f.SetCode(ctx, "lobby", "XYZ99"); !errors.Is(err, ErrCodeExists) {
		t.Errorf("second SetCode: got %v, want ErrCodeExists", err)
	}
	if f.Degraded() {
		t.Error("sentinel error marked the store degraded")
	}
}

func TestFallbackServesDuringOutage(t *testing.T) {
	ctx := context.Background()
	primary := newFlakyStore()
	f := NewFallback(primary, NewMemoryStore(10), zerolog.Nop())

	primary.setDown(true)

	if err := f.SetCode(ctx, "lobby", "ABC12"); err != nil {
		t.Fatalf("SetCode during outage failed: %v", err)
	}
	if !f.Degraded() {
		t.Error("outage did not mark the store degraded")
	}

	code, err := f.GetCode(ctx, "lobby")
	if err != nil || code != "ABC12" {
		t.Errorf("GetCode during outage = (%q, %v), want the fallback entry", code, err)
	}

	if err := f.AppendHistory(ctx, "lobby", []byte("while down")); err != nil {
		t.Fatalf("AppendHistory during outage failed: %v", err)
	}
	history, err := f.History(ctx, "lobby")
	if err != nil || len(history) != 1 || string(history[0]) != "while down" {
		t.Errorf("History during outage = (%v, %v), want the fallback entry", history, err)
	}

	// The primary never saw any of it.
	if _, err := primary.inner.GetCode(ctx, "lobby"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("primary received a write during its outage: %v", err)
	}
}

func TestFallbackRecovery(t *testing.T) {
	ctx := context.Background()
	primary := newFlakyStore()
	f := NewFallback(primary, NewMemoryStore(10), zerolog.Nop())

	primary.setDown(true)
	if err := f.SetCode(ctx, "lobby", "ABC12"); err != nil {
		t.Fatalf("SetCode during outage failed: %v", err)
	}

	primary.setDown(false)

	// The recovered primary is authoritative again: entries made in the
	// fallback during the outage are not replayed, so the room reads as new.
	if _, err := f.GetCode(ctx, "lobby"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("GetCode after recovery = %v, want ErrCodeNotFound from the primary", err)
	}
	if f.Degraded() {
		t.Error("successful primary call did not clear the degraded flag")
	}
}

func TestFallbackHealthCheckReflectsPrimaryOnly(t *testing.T) {
	ctx := context.Background()
	primary := newFlakyStore()
	f := NewFallback(primary, NewMemoryStore(10), zerolog.Nop())

	if !f.HealthCheck(ctx) {
		t.Error("HealthCheck with a healthy primary = false")
	}

	primary.setDown(true)
	if f.HealthCheck(ctx) {
		t.Error("HealthCheck with a down primary = true")
	}
}

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// primaryCallTimeout bounds each round-trip to the durable backend.
// When it elapses the call counts as a connectivity failure and is served
// from the in-memory fallback instead.
const primaryCallTimeout = 2 * time.Second

// Fallback composes the durable primary store with an in-memory fallback.
// Selection happens per call, not per process lifetime: every operation first
// attempts the primary and, on a connectivity failure, is served by the
// fallback. The relay therefore stays correct (though not durable) even if
// the primary is down for the whole process lifetime.
type Fallback struct {
	primary  Store
	fallback Store

	// degraded records whether the most recent primary call failed.
	degraded atomic.Bool

	logger zerolog.Logger
}

// NewFallback wraps primary with the given in-memory fallback store.
func NewFallback(primary, fallback Store, logger zerolog.Logger) *Fallback {
	return &Fallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "store").Logger(),
	}
}

// isConnectivityFailure separates backend outages from authoritative
// answers. The sentinel errors are real results and must never trigger
// a fallback, otherwise the two backends could give divergent admission
// decisions for the same room.
func isConnectivityFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrCodeNotFound) && !errors.Is(err, ErrCodeExists)
}

// markDegraded flips the degradation flag and logs transitions in both
// directions so operators can see outage windows.
func (f *Fallback) markDegraded(op string, err error) {
	if f.degraded.CompareAndSwap(false, true) {
		f.logger.Warn().
			Err(err).
			Str("operation", op).
			Msg("Durable store unreachable. Serving from in-memory fallback; entries will not survive a restart.")
	}
}

func (f *Fallback) markRecovered() {
	if f.degraded.CompareAndSwap(true, false) {
		f.logger.Info().Msg("Durable store reachable again. Fallback entries made during the outage are not replayed.")
	}
}

// Degraded reports whether the most recent primary operation failed.
// Exposed on the health surface; never surfaced to chat participants.
func (f *Fallback) Degraded() bool {
	return f.degraded.Load()
}

func (f *Fallback) GetCode(ctx context.Context, roomID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, primaryCallTimeout)
	defer cancel()

	code, err := f.primary.GetCode(callCtx, roomID)
	if !isConnectivityFailure(err) {
		f.markRecovered()
		return code, err
	}

	f.markDegraded("get_code", err)
	return f.fallback.GetCode(ctx, roomID)
}

func (f *Fallback) SetCode(ctx context.Context, roomID string, code string) error {
	callCtx, cancel := context.WithTimeout(ctx, primaryCallTimeout)
	defer cancel()

	err := f.primary.SetCode(callCtx, roomID, code)
	if !isConnectivityFailure(err) {
		f.markRecovered()
		return err
	}

	f.markDegraded("set_code", err)
	return f.fallback.SetCode(ctx, roomID, code)
}

func (f *Fallback) AppendHistory(ctx context.Context, roomID string, data []byte) error {
	callCtx, cancel := context.WithTimeout(ctx, primaryCallTimeout)
	defer cancel()

	err := f.primary.AppendHistory(callCtx, roomID, data)
	if !isConnectivityFailure(err) {
		f.markRecovered()
		return err
	}

	f.markDegraded("append_history", err)
	return f.fallback.AppendHistory(ctx, roomID, data)
}

func (f *Fallback) History(ctx context.Context, roomID string) ([][]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, primaryCallTimeout)
	defer cancel()

	history, err := f.primary.History(callCtx, roomID)
	if !isConnectivityFailure(err) {
		f.markRecovered()
		return history, err
	}

	f.markDegraded("history", err)
	return f.fallback.History(ctx, roomID)
}

func (f *Fallback) HealthCheck(ctx context.Context) bool {
	callCtx, cancel := context.WithTimeout(ctx, primaryCallTimeout)
	defer cancel()

	return f.primary.HealthCheck(callCtx)
}

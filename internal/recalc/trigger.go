// Package recalc runs the asynchronous allowance-and-streak recomputation
// that follows every activity mutation. Failures go to the logging sink and
// are never surfaced to the triggering request; the returned handle lets
// tests and callers await completion deterministically.
package recalc

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/observability"
)

// AllowanceRecomputer rebuilds today's allowance.
type AllowanceRecomputer interface {
	RecomputeToday(ctx context.Context, userID string, loc *time.Location) (*domain.Allowance, error)
}

// StreakUpdater advances the streak from the recomputed allowance.
type StreakUpdater interface {
	Update(ctx context.Context, userID string, loc *time.Location) (*domain.Streak, error)
}

// Handle is an awaitable completion token for one recompute run.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the run finishes or ctx is cancelled, returning the
// run's error.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the run's error. Valid only after Wait has returned.
func (h *Handle) Err() error {
	return h.err
}

// Trigger fires recompute runs detached from the request lifecycle.
type Trigger struct {
	allowances AllowanceRecomputer
	streaks    StreakUpdater
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewTrigger constructs a Trigger. A non-positive timeout defaults to 30s.
func NewTrigger(allowances AllowanceRecomputer, streaks StreakUpdater, timeout time.Duration, logger zerolog.Logger) *Trigger {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Trigger{allowances: allowances, streaks: streaks, timeout: timeout, logger: logger}
}

// Fire starts a recompute for the user's current local day. The run uses a
// background context so a finished HTTP request cannot cancel it. The streak
// update runs after the allowance recompute because it reads its outcome.
func (t *Trigger) Fire(userID string, loc *time.Location) *Handle {
	h := &Handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		if _, err := t.allowances.RecomputeToday(ctx, userID, loc); err != nil {
			h.err = err
			observability.RecordRecompute(false)
			t.logger.Error().Err(err).Str("user_id", userID).Msg("allowance recompute failed")
			return
		}
		if _, err := t.streaks.Update(ctx, userID, loc); err != nil {
			h.err = err
			observability.RecordRecompute(false)
			t.logger.Error().Err(err).Str("user_id", userID).Msg("streak update failed")
			return
		}
		observability.RecordRecompute(true)
	}()

	return h
}

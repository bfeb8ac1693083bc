// Package allowance converts trust-weighted activity into the day's earned
// screen-time minutes.
package allowance

import (
	"context"
	"math"
	"time"

	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/trust"
)

// ActivityStore lists activities whose start falls in a time range.
type ActivityStore interface {
	ListForRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Activity, error)
}

// GoalStore lists a user's active goals.
type GoalStore interface {
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Goal, error)
}

// StreakStore reads the user's streak for the bonus multiplier.
type StreakStore interface {
	FindByUser(ctx context.Context, userID string) (*domain.Streak, error)
}

// Store persists allowances keyed by (user, date).
type Store interface {
	FindByUserAndDate(ctx context.Context, userID, date string) (*domain.Allowance, error)
	// Upsert overwrites the recomputed fields for the (user, date) key.
	// Usage counters are untouched and UnlockedAt is set only on the first
	// transition to unlocked.
	Upsert(ctx context.Context, userID, date string, rec domain.AllowanceRecompute) (*domain.Allowance, error)
	History(ctx context.Context, userID string, q domain.AllowanceHistoryQuery) ([]domain.Allowance, error)
	UpdateUsedMinutes(ctx context.Context, id string, usedMinutes int) (*domain.Allowance, error)
}

// Engine recomputes allowances from activities and goals.
type Engine struct {
	activities ActivityStore
	goals      GoalStore
	streaks    StreakStore
	store      Store
}

// NewEngine constructs an Engine.
func NewEngine(activities ActivityStore, goals GoalStore, streaks StreakStore, store Store) *Engine {
	return &Engine{activities: activities, goals: goals, streaks: streaks, store: store}
}

// Recompute rebuilds the allowance for one calendar day from scratch. It is
// idempotent: with no new activities, successive calls produce the same
// allowance.
func (e *Engine) Recompute(ctx context.Context, userID, date string, loc *time.Location) (*domain.Allowance, error) {
	from, to, err := domain.DayBounds(date, loc)
	if err != nil {
		return nil, err
	}

	activities, err := e.activities.ListForRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	weighted := 0.0
	for _, a := range activities {
		weighted += a.DistanceMeters * trust.Multiplier(a.TrustScore)
	}

	goals, err := e.goals.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	earned := 0
	unlocked := false
	for _, g := range goals {
		if g.Cadence != domain.CadenceDaily {
			continue
		}
		// All-or-nothing: the boundary is inclusive and rewards from
		// multiple satisfied goals are additive.
		if weighted >= g.TargetMeters() {
			earned += g.RewardMinutes
			unlocked = true
		}
	}

	bonus := 0
	if streak, err := e.streaks.FindByUser(ctx, userID); err != nil {
		return nil, err
	} else if streak != nil {
		bonus = int(math.Floor(float64(earned) * (streak.Multiplier - 1)))
	}

	return e.store.Upsert(ctx, userID, date, domain.AllowanceRecompute{
		EarnedMinutes: earned,
		BonusMinutes:  bonus,
		IsUnlocked:    unlocked,
		Now:           time.Now().UTC(),
	})
}

// RecomputeToday recomputes the allowance for the user's current local day.
func (e *Engine) RecomputeToday(ctx context.Context, userID string, loc *time.Location) (*domain.Allowance, error) {
	return e.Recompute(ctx, userID, domain.DateKey(time.Now(), loc), loc)
}

// Today returns the current day's allowance, creating it lazily through a
// recompute when absent.
func (e *Engine) Today(ctx context.Context, userID string, loc *time.Location) (*domain.Allowance, error) {
	date := domain.DateKey(time.Now(), loc)
	a, err := e.store.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}
	return e.Recompute(ctx, userID, date, loc)
}

// Remaining is the enforceable minutes left today, never negative.
func (e *Engine) Remaining(ctx context.Context, userID string, loc *time.Location) (int, error) {
	a, err := e.Today(ctx, userID, loc)
	if err != nil {
		return 0, err
	}
	return a.RemainingMinutes(), nil
}

// History lists past allowances, newest first.
func (e *Engine) History(ctx context.Context, userID string, q domain.AllowanceHistoryQuery) ([]domain.Allowance, error) {
	return e.store.History(ctx, userID, q)
}

// SetSelfReportedUsed updates the legacy self-reported usage counter after
// checking it against the day's budget. Device-tracked usage goes through
// the usage module instead.
func (e *Engine) SetSelfReportedUsed(ctx context.Context, userID string, minutes int, loc *time.Location) (*domain.Allowance, error) {
	date := domain.DateKey(time.Now(), loc)
	a, err := e.store.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrAllowanceNotFound
	}
	if minutes > a.TotalMinutes() {
		return nil, domain.NewValidationError("used minutes cannot exceed available minutes (%d)", a.TotalMinutes())
	}
	return e.store.UpdateUsedMinutes(ctx, a.ID, minutes)
}

// Package streak maintains the consecutive-day completion streak and its
// reward multiplier.
package streak

import (
	"context"
	"time"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Store persists the single streak record per user.
type Store interface {
	FindByUser(ctx context.Context, userID string) (*domain.Streak, error)
	Upsert(ctx context.Context, userID string, upd domain.StreakUpdate) (*domain.Streak, error)
}

// AllowanceStore reads the day's allowance to learn whether the goal was
// completed.
type AllowanceStore interface {
	FindByUserAndDate(ctx context.Context, userID, date string) (*domain.Allowance, error)
}

// Engine mutates streak state. No other component writes streaks.
type Engine struct {
	store      Store
	allowances AllowanceStore
}

// NewEngine constructs an Engine.
func NewEngine(store Store, allowances AllowanceStore) *Engine {
	return &Engine{store: store, allowances: allowances}
}

// Get returns the user's streak, synthesizing a zero-value record for users
// who have none yet.
func (e *Engine) Get(ctx context.Context, userID string) (*domain.Streak, error) {
	s, err := e.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	return e.store.Upsert(ctx, userID, domain.StreakUpdate{Multiplier: 1.0})
}

// Update advances the streak after the day's allowance was recomputed. All
// date keys derive from the caller's reference timezone.
func (e *Engine) Update(ctx context.Context, userID string, loc *time.Location) (*domain.Streak, error) {
	now := time.Now()
	today := domain.DateKey(now, loc)
	yesterday := domain.PreviousDateKey(today)

	allowance, err := e.allowances.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if allowance == nil || !allowance.IsUnlocked {
		// Goal not completed today; nothing to advance.
		return e.Get(ctx, userID)
	}

	current, err := e.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.LastCompletedDate == today {
		// Already counted today.
		return current, nil
	}

	next := 1
	longest := 0
	if current != nil {
		longest = current.LongestStreak
		if current.LastCompletedDate == yesterday {
			next = current.CurrentStreak + 1
		}
	}
	if next > longest {
		longest = next
	}

	return e.store.Upsert(ctx, userID, domain.StreakUpdate{
		CurrentStreak:     next,
		LongestStreak:     longest,
		LastCompletedDate: today,
		Multiplier:        domain.MultiplierForStreak(next),
	})
}

// DecayCheck resets a broken streak. It runs opportunistically on profile
// access rather than on a timer: a streak whose last completion is before
// yesterday drops to zero while LastCompletedDate stays as history.
func (e *Engine) DecayCheck(ctx context.Context, userID string, loc *time.Location) (*domain.Streak, error) {
	s, err := e.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.LastCompletedDate == "" {
		return s, nil
	}

	yesterday := domain.PreviousDateKey(domain.DateKey(time.Now(), loc))
	if s.LastCompletedDate >= yesterday {
		return s, nil
	}

	return e.store.Upsert(ctx, userID, domain.StreakUpdate{
		CurrentStreak:     0,
		LongestStreak:     s.LongestStreak,
		LastCompletedDate: s.LastCompletedDate,
		Multiplier:        1.0,
	})
}

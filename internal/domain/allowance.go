package domain

import "time"

// Allowance is the per-user, per-calendar-day record of earned screen time.
// EarnedMinutes, BonusMinutes and IsUnlocked are fully overwritten on each
// recompute; UsedMinutes and RealUsedMinutes are owned by the usage module
// and never touched by recompute.
type Allowance struct {
	ID            string
	UserID        string
	Date          string // calendar-date key, YYYY-MM-DD in the user's timezone
	EarnedMinutes int
	UsedMinutes   int // legacy self-reported usage
	BonusMinutes  int
	IsUnlocked    bool
	UnlockedAt    *time.Time
	// RealUsedMinutes comes from device-tracked usage sessions and is the
	// authoritative input for enforcement.
	RealUsedMinutes   int
	EnforcementActive bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalMinutes is the day's full budget.
func (a Allowance) TotalMinutes() int {
	return a.EarnedMinutes + a.BonusMinutes
}

// RemainingMinutes is the enforceable remainder, never negative.
func (a Allowance) RemainingMinutes() int {
	remaining := a.TotalMinutes() - a.RealUsedMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AllowanceRecompute carries the recomputed fields for an upsert. The store
// sets UnlockedAt only on the first transition to unlocked.
type AllowanceRecompute struct {
	EarnedMinutes int
	BonusMinutes  int
	IsUnlocked    bool
	Now           time.Time
}

// AllowanceHistoryQuery filters an allowance history listing.
type AllowanceHistoryQuery struct {
	From  string // inclusive date key, "" for open
	To    string // inclusive date key, "" for open
	Limit int
}

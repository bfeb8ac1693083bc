package domain

import "time"

// CooldownPeriod is the delay before a restriction-loosening change to the
// blocked-app selection takes effect.
const CooldownPeriod = 24 * time.Hour

// BlockedAppsConfig is the single blocked-app selection record a user may
// have. The selection payload is an opaque token produced on-device; the
// backend only reasons about counts and the active flag.
type BlockedAppsConfig struct {
	ID            string
	UserID        string
	SelectionData string
	SelectionID   string
	AppCount      int
	CategoryCount int
	IsActive      bool
	Pending       *PendingChange
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPending reports whether a staged change is waiting to apply.
func (c BlockedAppsConfig) HasPending() bool {
	return c.Pending != nil
}

// PendingChange is a staged restriction-loosening change. At most one may
// exist per config.
type PendingChange struct {
	SelectionData *string
	AppCount      *int
	CategoryCount *int
	IsActive      *bool
	AppliesAt     time.Time
}

// Due reports whether the staged change should be folded into the active
// fields.
func (p *PendingChange) Due(now time.Time) bool {
	return p != nil && !p.AppliesAt.After(now)
}

// Materialize folds a due pending change into the active fields and clears
// the pending snapshot. It is pure: the input is not mutated, and applying
// the result a second time is a no-op because Pending is nil afterwards.
func Materialize(cfg BlockedAppsConfig, now time.Time) (BlockedAppsConfig, bool) {
	if !cfg.Pending.Due(now) {
		return cfg, false
	}

	p := cfg.Pending
	if p.SelectionData != nil {
		cfg.SelectionData = *p.SelectionData
	}
	if p.AppCount != nil {
		cfg.AppCount = *p.AppCount
	}
	if p.CategoryCount != nil {
		cfg.CategoryCount = *p.CategoryCount
	}
	if p.IsActive != nil {
		cfg.IsActive = *p.IsActive
	}
	cfg.Pending = nil
	return cfg, true
}

// SelectionChange is a submitted blocked-app selection update.
type SelectionChange struct {
	SelectionData string
	SelectionID   string
	AppCount      int
	CategoryCount int
}

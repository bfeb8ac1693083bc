// Package blockedapps owns the blocked-app selection record and the
// asymmetric cooldown that guards restriction-loosening changes.
package blockedapps

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Store persists blocked-app configs. Reads through the manager always
// materialize due pending changes first.
type Store interface {
	// FindByUserRaw returns the record without folding pending changes.
	FindByUserRaw(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error)
	Create(ctx context.Context, cfg domain.BlockedAppsConfig) (*domain.BlockedAppsConfig, error)
	UpdateSelection(ctx context.Context, id string, sel domain.SelectionChange) (*domain.BlockedAppsConfig, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.BlockedAppsConfig, error)
	SetPending(ctx context.Context, userID string, pending domain.PendingChange) (*domain.BlockedAppsConfig, error)
	ClearPending(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error)
	// ApplyPending atomically folds a due pending change into the active
	// fields and clears it. Returns nil when another reader already applied
	// it or nothing is due.
	ApplyPending(ctx context.Context, userID string, now time.Time) (*domain.BlockedAppsConfig, error)
	Delete(ctx context.Context, userID string) error
}

// Manager enforces the cooldown rules: tightening is free, loosening waits a
// full day. No other mutation path may touch the config.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager constructs a Manager.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Get returns the user's config with any due pending change applied, or nil
// when none exists. Application is lazy-on-access and idempotent.
func (m *Manager) Get(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error) {
	cfg, err := m.store.FindByUserRaw(ctx, userID)
	if err != nil || cfg == nil {
		return nil, err
	}

	now := m.now()
	if _, due := domain.Materialize(*cfg, now); !due {
		return cfg, nil
	}

	applied, err := m.store.ApplyPending(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if applied != nil {
		return applied, nil
	}
	// A concurrent reader folded it first; the re-read sees the applied
	// state with no pending left.
	return m.store.FindByUserRaw(ctx, userID)
}

// Submit applies a selection change. Creating a config and tightening the
// selection are immediate; shrinking the app count stages a pending change
// behind the cooldown.
func (m *Manager) Submit(ctx context.Context, userID string, change domain.SelectionChange) (*domain.BlockedAppsConfig, error) {
	existing, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return m.store.Create(ctx, domain.BlockedAppsConfig{
			ID:            uuid.NewString(),
			UserID:        userID,
			SelectionData: change.SelectionData,
			SelectionID:   change.SelectionID,
			AppCount:      change.AppCount,
			CategoryCount: change.CategoryCount,
			IsActive:      true,
		})
	}

	if existing.HasPending() {
		return nil, domain.ErrPendingChangeExists
	}

	if change.AppCount >= existing.AppCount {
		return m.store.UpdateSelection(ctx, existing.ID, change)
	}

	return m.store.SetPending(ctx, userID, domain.PendingChange{
		SelectionData: &change.SelectionData,
		AppCount:      &change.AppCount,
		CategoryCount: &change.CategoryCount,
		AppliesAt:     m.now().Add(domain.CooldownPeriod),
	})
}

// SetEnforcement toggles the master switch. Enabling is immediate; disabling
// is staged behind the cooldown.
func (m *Manager) SetEnforcement(ctx context.Context, userID string, active bool) (*domain.BlockedAppsConfig, error) {
	existing, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrConfigNotFound
	}
	if existing.HasPending() {
		return nil, domain.ErrPendingChangeExists
	}

	switch {
	case active && !existing.IsActive:
		return m.store.SetActive(ctx, existing.ID, true)
	case !active && existing.IsActive:
		off := false
		return m.store.SetPending(ctx, userID, domain.PendingChange{
			IsActive:  &off,
			AppliesAt: m.now().Add(domain.CooldownPeriod),
		})
	default:
		return existing, nil
	}
}

// CancelPending discards the staged change unconditionally.
func (m *Manager) CancelPending(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error) {
	existing, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrConfigNotFound
	}
	if !existing.HasPending() {
		return nil, domain.ErrNoPendingChange
	}
	return m.store.ClearPending(ctx, userID)
}

// Delete removes the config entirely.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	existing, err := m.store.FindByUserRaw(ctx, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrConfigNotFound
	}
	return m.store.Delete(ctx, userID)
}

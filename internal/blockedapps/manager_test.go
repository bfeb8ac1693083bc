package blockedapps

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// fakeStore keeps one config in memory and mirrors the SQL store's
// conditional semantics for pending changes.
type fakeStore struct {
	cfg           *domain.BlockedAppsConfig
	applyPendings int
}

func (f *fakeStore) FindByUserRaw(context.Context, string) (*domain.BlockedAppsConfig, error) {
	if f.cfg == nil {
		return nil, nil
	}
	copied := *f.cfg
	return &copied, nil
}

func (f *fakeStore) Create(_ context.Context, cfg domain.BlockedAppsConfig) (*domain.BlockedAppsConfig, error) {
	f.cfg = &cfg
	copied := cfg
	return &copied, nil
}

func (f *fakeStore) UpdateSelection(_ context.Context, _ string, sel domain.SelectionChange) (*domain.BlockedAppsConfig, error) {
	f.cfg.SelectionData = sel.SelectionData
	f.cfg.SelectionID = sel.SelectionID
	f.cfg.AppCount = sel.AppCount
	f.cfg.CategoryCount = sel.CategoryCount
	copied := *f.cfg
	return &copied, nil
}

func (f *fakeStore) SetActive(_ context.Context, _ string, active bool) (*domain.BlockedAppsConfig, error) {
	f.cfg.IsActive = active
	copied := *f.cfg
	return &copied, nil
}

func (f *fakeStore) SetPending(_ context.Context, _ string, pending domain.PendingChange) (*domain.BlockedAppsConfig, error) {
	if f.cfg.Pending != nil {
		return nil, domain.ErrPendingChangeExists
	}
	p := pending
	f.cfg.Pending = &p
	copied := *f.cfg
	return &copied, nil
}

func (f *fakeStore) ClearPending(_ context.Context, _ string) (*domain.BlockedAppsConfig, error) {
	if f.cfg.Pending == nil {
		return nil, domain.ErrNoPendingChange
	}
	f.cfg.Pending = nil
	copied := *f.cfg
	return &copied, nil
}

func (f *fakeStore) ApplyPending(_ context.Context, _ string, now time.Time) (*domain.BlockedAppsConfig, error) {
	f.applyPendings++
	if f.cfg == nil || !f.cfg.Pending.Due(now) {
		return nil, nil
	}
	folded, _ := domain.Materialize(*f.cfg, now)
	f.cfg = &folded
	copied := folded
	return &copied, nil
}

func (f *fakeStore) Delete(context.Context, string) error {
	f.cfg = nil
	return nil
}

func newTestManager(store *fakeStore, now time.Time) *Manager {
	m := NewManager(store)
	m.now = func() time.Time { return now }
	return m
}

func selection(appCount int) domain.SelectionChange {
	return domain.SelectionChange{
		SelectionData: "token",
		SelectionID:   "sel-1",
		AppCount:      appCount,
		CategoryCount: 1,
	}
}

func TestSubmitCreatesImmediately(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, time.Now())

	cfg, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.AppCount)
	require.True(t, cfg.IsActive)
	require.False(t, cfg.HasPending())

	// The id column is a UUID primary key; the manager must supply one.
	_, err = uuid.Parse(store.cfg.ID)
	require.NoError(t, err)
}

func TestSubmitTighteningIsImmediate(t *testing.T) {
	store := &fakeStore{}
	now := time.Now()
	m := newTestManager(store, now)

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)

	cfg, err := m.Submit(context.Background(), "u1", selection(8))
	require.NoError(t, err)
	require.Equal(t, 8, cfg.AppCount)
	require.False(t, cfg.HasPending())
}

func TestSubmitLooseningStagesBehindCooldown(t *testing.T) {
	store := &fakeStore{}
	now := time.Now()
	m := newTestManager(store, now)

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)

	cfg, err := m.Submit(context.Background(), "u1", selection(2))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.AppCount, "active selection unchanged until the cooldown passes")
	require.True(t, cfg.HasPending())
	require.Equal(t, now.Add(domain.CooldownPeriod), cfg.Pending.AppliesAt)
	require.Equal(t, 2, *cfg.Pending.AppCount)
}

func TestSubmitRejectedWhileChangePending(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, time.Now())

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)
	_, err = m.Submit(context.Background(), "u1", selection(2))
	require.NoError(t, err)

	_, err = m.Submit(context.Background(), "u1", selection(1))
	require.ErrorIs(t, err, domain.ErrPendingChangeExists)
	_, err = m.SetEnforcement(context.Background(), "u1", false)
	require.ErrorIs(t, err, domain.ErrPendingChangeExists)
}

func TestGetAppliesDuePendingChange(t *testing.T) {
	store := &fakeStore{}
	start := time.Now()
	m := newTestManager(store, start)

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)
	_, err = m.Submit(context.Background(), "u1", selection(2))
	require.NoError(t, err)

	// Just before the cooldown expires nothing is folded.
	m.now = func() time.Time { return start.Add(domain.CooldownPeriod - time.Second) }
	cfg, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 5, cfg.AppCount)
	require.True(t, cfg.HasPending())

	m.now = func() time.Time { return start.Add(domain.CooldownPeriod + time.Second) }
	cfg, err = m.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.AppCount)
	require.False(t, cfg.HasPending())

	// Folding happened exactly once; later reads take the fast path.
	folds := store.applyPendings
	_, err = m.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, folds, store.applyPendings)
}

func TestSetEnforcementEnableImmediateDisableStaged(t *testing.T) {
	store := &fakeStore{}
	now := time.Now()
	m := newTestManager(store, now)

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)

	cfg, err := m.SetEnforcement(context.Background(), "u1", false)
	require.NoError(t, err)
	require.True(t, cfg.IsActive, "disable waits for the cooldown")
	require.True(t, cfg.HasPending())
	require.False(t, *cfg.Pending.IsActive)

	m.now = func() time.Time { return now.Add(domain.CooldownPeriod) }
	cfg, err = m.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.False(t, cfg.IsActive)

	cfg, err = m.SetEnforcement(context.Background(), "u1", true)
	require.NoError(t, err)
	require.True(t, cfg.IsActive)
	require.False(t, cfg.HasPending())
}

func TestSetEnforcementNoopWhenStateMatches(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, time.Now())

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)

	cfg, err := m.SetEnforcement(context.Background(), "u1", true)
	require.NoError(t, err)
	require.True(t, cfg.IsActive)
	require.False(t, cfg.HasPending())
}

func TestCancelPending(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, time.Now())

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)

	_, err = m.CancelPending(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrNoPendingChange)

	_, err = m.Submit(context.Background(), "u1", selection(2))
	require.NoError(t, err)

	cfg, err := m.CancelPending(context.Background(), "u1")
	require.NoError(t, err)
	require.False(t, cfg.HasPending())
	require.Equal(t, 5, cfg.AppCount)
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, time.Now())

	require.ErrorIs(t, m.Delete(context.Background(), "u1"), domain.ErrConfigNotFound)

	_, err := m.Submit(context.Background(), "u1", selection(5))
	require.NoError(t, err)
	require.NoError(t, m.Delete(context.Background(), "u1"))

	cfg, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Nil(t, cfg)
}

package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

type fakeSessions struct {
	byID map[string]*domain.UsageSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]*domain.UsageSession{}}
}

func (f *fakeSessions) Create(_ context.Context, s domain.UsageSession) error {
	copied := s
	f.byID[s.ID] = &copied
	return nil
}

func (f *fakeSessions) FindByID(_ context.Context, id string) (*domain.UsageSession, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) FindActive(_ context.Context, userID string) (*domain.UsageSession, error) {
	for _, s := range f.byID {
		if s.UserID == userID && s.Open() {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSessions) End(_ context.Context, id string, endedAt time.Time, durationSeconds int) (*domain.UsageSession, error) {
	s := f.byID[id]
	t := endedAt
	s.EndedAt = &t
	s.DurationSeconds = durationSeconds
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) ListForRange(_ context.Context, userID string, from, to time.Time) ([]domain.UsageSession, error) {
	var out []domain.UsageSession
	for _, s := range f.byID {
		if s.UserID == userID && !s.StartedAt.Before(from) && s.StartedAt.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessions) SumForRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	sessions, _ := f.ListForRange(ctx, userID, from, to)
	total := 0
	for _, s := range sessions {
		total += s.DurationSeconds
	}
	return total, nil
}

type fakeAllowances struct {
	allowance *domain.Allowance
}

func (f *fakeAllowances) FindByUserAndDate(_ context.Context, userID, date string) (*domain.Allowance, error) {
	if f.allowance == nil || f.allowance.UserID != userID || f.allowance.Date != date {
		return nil, nil
	}
	copied := *f.allowance
	return &copied, nil
}

func (f *fakeAllowances) AddRealUsedMinutes(_ context.Context, id string, minutes int) error {
	if f.allowance == nil || f.allowance.ID != id {
		return domain.ErrAllowanceNotFound
	}
	f.allowance.RealUsedMinutes += minutes
	return nil
}

func todayAllowance(earned int) *domain.Allowance {
	return &domain.Allowance{
		ID:            "al-1",
		UserID:        "u1",
		Date:          domain.DateKey(time.Now(), time.UTC),
		EarnedMinutes: earned,
		IsUnlocked:    true,
	}
}

func newTestService(sessions *fakeSessions, allowances *fakeAllowances, now time.Time) *Service {
	s := NewService(sessions, allowances)
	s.now = func() time.Time { return now }
	return s
}

func TestStartOpensAndLinksAllowance(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions, &fakeAllowances{allowance: todayAllowance(30)}, time.Now())

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)
	require.False(t, r.IsDuplicate)
	require.NotEmpty(t, r.SessionID)
	require.Equal(t, "al-1", sessions.byID[r.SessionID].AllowanceID)
}

func TestStartWithoutAllowanceLeavesLinkEmpty(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions, &fakeAllowances{}, time.Now())

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceThresholdEvent, time.UTC)
	require.NoError(t, err)
	require.Equal(t, "", sessions.byID[r.SessionID].AllowanceID)
}

func TestStartIsIdempotentWhileOpen(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions, &fakeAllowances{}, time.Now())

	first, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)

	second, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)
	require.True(t, second.IsDuplicate)
	require.Equal(t, first.SessionID, second.SessionID)
	require.Len(t, sessions.byID, 1)
}

func TestEndComputesDurationAndCreditsAllowance(t *testing.T) {
	sessions := newFakeSessions()
	allowances := &fakeAllowances{allowance: todayAllowance(30)}
	start := time.Now()
	svc := newTestService(sessions, allowances, start)

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)

	// 12 minutes and a bit pass; only whole minutes are credited.
	svc.now = func() time.Time { return start.Add(12*time.Minute + 30*time.Second) }
	ended, err := svc.End(context.Background(), "u1", r.SessionID, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 750, ended.DurationSeconds)
	require.Equal(t, 12, ended.DurationMinutes)
	require.Equal(t, 12, allowances.allowance.RealUsedMinutes)
	require.Equal(t, 18, ended.RemainingMinutes)
}

func TestEndClampsDurationAtDayCap(t *testing.T) {
	sessions := newFakeSessions()
	allowances := &fakeAllowances{allowance: todayAllowance(30)}
	start := time.Now()
	svc := newTestService(sessions, allowances, start)

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(30 * time.Hour) }
	ended, err := svc.End(context.Background(), "u1", r.SessionID, time.UTC)
	require.NoError(t, err)
	require.Equal(t, domain.MaxSessionDurationSeconds, ended.DurationSeconds)
}

func TestEndIsIdempotent(t *testing.T) {
	sessions := newFakeSessions()
	allowances := &fakeAllowances{allowance: todayAllowance(30)}
	start := time.Now()
	svc := newTestService(sessions, allowances, start)

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(10 * time.Minute) }
	_, err = svc.End(context.Background(), "u1", r.SessionID, time.UTC)
	require.NoError(t, err)

	again, err := svc.End(context.Background(), "u1", r.SessionID, time.UTC)
	require.NoError(t, err)
	require.True(t, again.IsDuplicate)
	require.Equal(t, 10, again.DurationMinutes)
	// The credit was not applied twice.
	require.Equal(t, 10, allowances.allowance.RealUsedMinutes)
}

func TestEndRejectsForeignAndUnknownSessions(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions, &fakeAllowances{}, time.Now())

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)

	_, err = svc.End(context.Background(), "u2", r.SessionID, time.UTC)
	require.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = svc.End(context.Background(), "u1", "missing", time.UTC)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestActiveAndToday(t *testing.T) {
	sessions := newFakeSessions()
	start := time.Now()
	svc := newTestService(sessions, &fakeAllowances{}, start)

	active, err := svc.Active(context.Background(), "u1")
	require.NoError(t, err)
	require.Nil(t, active)

	r, err := svc.Start(context.Background(), "u1", domain.UsageSourceAppForeground, time.UTC)
	require.NoError(t, err)

	active, err = svc.Active(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, r.SessionID, active.ID)

	svc.now = func() time.Time { return start.Add(5 * time.Minute) }
	_, err = svc.End(context.Background(), "u1", r.SessionID, time.UTC)
	require.NoError(t, err)

	summary, err := svc.Today(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Len(t, summary.Sessions, 1)
	require.Equal(t, 300, summary.TotalSeconds)
	require.Equal(t, 5, summary.TotalMinutes)
}

package streak

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

type fakeStore struct {
	streak  *domain.Streak
	upserts int
}

func (f *fakeStore) FindByUser(context.Context, string) (*domain.Streak, error) {
	if f.streak == nil {
		return nil, nil
	}
	copied := *f.streak
	return &copied, nil
}

func (f *fakeStore) Upsert(_ context.Context, userID string, upd domain.StreakUpdate) (*domain.Streak, error) {
	f.upserts++
	if f.streak == nil {
		f.streak = &domain.Streak{ID: "s1", UserID: userID}
	}
	f.streak.CurrentStreak = upd.CurrentStreak
	f.streak.LongestStreak = upd.LongestStreak
	f.streak.LastCompletedDate = upd.LastCompletedDate
	f.streak.Multiplier = upd.Multiplier
	copied := *f.streak
	return &copied, nil
}

type fakeAllowances struct {
	unlocked bool
	absent   bool
}

func (f *fakeAllowances) FindByUserAndDate(_ context.Context, userID, date string) (*domain.Allowance, error) {
	if f.absent {
		return nil, nil
	}
	return &domain.Allowance{UserID: userID, Date: date, IsUnlocked: f.unlocked}, nil
}

func todayKey() string {
	return domain.DateKey(time.Now(), time.UTC)
}

func TestGetSynthesizesZeroRecord(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(store, &fakeAllowances{})

	s, err := e.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 0, s.CurrentStreak)
	require.Equal(t, 1.0, s.Multiplier)
	require.Equal(t, "", s.LastCompletedDate)
}

func TestUpdateFirstCompletionStartsAtOne(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(store, &fakeAllowances{unlocked: true})

	s, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentStreak)
	require.Equal(t, 1, s.LongestStreak)
	require.Equal(t, todayKey(), s.LastCompletedDate)
	require.Equal(t, 1.0, s.Multiplier)
}

func TestUpdateConsecutiveDayExtends(t *testing.T) {
	store := &fakeStore{streak: &domain.Streak{
		ID: "s1", UserID: "u1",
		CurrentStreak: 2, LongestStreak: 5,
		LastCompletedDate: domain.PreviousDateKey(todayKey()),
		Multiplier:        1.0,
	}}
	e := NewEngine(store, &fakeAllowances{unlocked: true})

	s, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 3, s.CurrentStreak)
	require.Equal(t, 5, s.LongestStreak)
}

func TestUpdateSkippedDayRestartsAtOne(t *testing.T) {
	twoDaysAgo := domain.PreviousDateKey(domain.PreviousDateKey(todayKey()))
	store := &fakeStore{streak: &domain.Streak{
		ID: "s1", UserID: "u1",
		CurrentStreak: 9, LongestStreak: 9,
		LastCompletedDate: twoDaysAgo,
		Multiplier:        1.1,
	}}
	e := NewEngine(store, &fakeAllowances{unlocked: true})

	s, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentStreak)
	require.Equal(t, 9, s.LongestStreak)
	require.Equal(t, 1.0, s.Multiplier)
}

func TestUpdateReachingDaySevenLiftsMultiplier(t *testing.T) {
	store := &fakeStore{streak: &domain.Streak{
		ID: "s1", UserID: "u1",
		CurrentStreak: 6, LongestStreak: 6,
		LastCompletedDate: domain.PreviousDateKey(todayKey()),
		Multiplier:        1.0,
	}}
	e := NewEngine(store, &fakeAllowances{unlocked: true})

	s, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 7, s.CurrentStreak)
	require.Equal(t, 7, s.LongestStreak)
	require.Equal(t, 1.1, s.Multiplier)
}

func TestUpdateIsIdempotentWithinADay(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(store, &fakeAllowances{unlocked: true})

	_, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	writes := store.upserts

	s, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentStreak)
	require.Equal(t, writes, store.upserts)
}

func TestUpdateGoalNotCompletedLeavesStreakAlone(t *testing.T) {
	store := &fakeStore{streak: &domain.Streak{
		ID: "s1", UserID: "u1",
		CurrentStreak: 4, LongestStreak: 4,
		LastCompletedDate: domain.PreviousDateKey(todayKey()),
		Multiplier:        1.0,
	}}
	e := NewEngine(store, &fakeAllowances{unlocked: false})

	s, err := e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 4, s.CurrentStreak)

	e = NewEngine(store, &fakeAllowances{absent: true})
	s, err = e.Update(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 4, s.CurrentStreak)
}

func TestDecayCheckResetsStaleStreak(t *testing.T) {
	twoDaysAgo := domain.PreviousDateKey(domain.PreviousDateKey(todayKey()))
	store := &fakeStore{streak: &domain.Streak{
		ID: "s1", UserID: "u1",
		CurrentStreak: 12, LongestStreak: 12,
		LastCompletedDate: twoDaysAgo,
		Multiplier:        1.1,
	}}
	e := NewEngine(store, &fakeAllowances{})

	s, err := e.DecayCheck(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 0, s.CurrentStreak)
	require.Equal(t, 12, s.LongestStreak)
	require.Equal(t, 1.0, s.Multiplier)
	// Last completion stays as history.
	require.Equal(t, twoDaysAgo, s.LastCompletedDate)
}

func TestDecayCheckKeepsFreshStreak(t *testing.T) {
	store := &fakeStore{streak: &domain.Streak{
		ID: "s1", UserID: "u1",
		CurrentStreak: 3, LongestStreak: 3,
		LastCompletedDate: domain.PreviousDateKey(todayKey()),
		Multiplier:        1.0,
	}}
	e := NewEngine(store, &fakeAllowances{})

	s, err := e.DecayCheck(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 3, s.CurrentStreak)
	require.Equal(t, 0, store.upserts)
}

func TestDecayCheckNoRecord(t *testing.T) {
	e := NewEngine(&fakeStore{}, &fakeAllowances{})

	s, err := e.DecayCheck(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	require.Nil(t, s)
}

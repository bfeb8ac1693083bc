package recalc

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

type fakeRecomputer struct {
	calls int
	err   error
}

func (f *fakeRecomputer) RecomputeToday(context.Context, string, *time.Location) (*domain.Allowance, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Allowance{}, nil
}

type fakeStreaks struct {
	calls int
	err   error
}

func (f *fakeStreaks) Update(context.Context, string, *time.Location) (*domain.Streak, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Streak{}, nil
}

func TestFireRunsAllowanceThenStreak(t *testing.T) {
	allowances := &fakeRecomputer{}
	streaks := &fakeStreaks{}
	trig := NewTrigger(allowances, streaks, time.Second, zerolog.Nop())

	h := trig.Fire("u1", time.UTC)
	require.NoError(t, h.Wait(context.Background()))
	require.Equal(t, 1, allowances.calls)
	require.Equal(t, 1, streaks.calls)
}

func TestFireRecomputeFailureSkipsStreak(t *testing.T) {
	boom := errors.New("boom")
	allowances := &fakeRecomputer{err: boom}
	streaks := &fakeStreaks{}

	var buf bytes.Buffer
	trig := NewTrigger(allowances, streaks, time.Second, zerolog.New(&buf))

	h := trig.Fire("u1", time.UTC)
	require.ErrorIs(t, h.Wait(context.Background()), boom)
	require.Equal(t, 0, streaks.calls)
	require.Contains(t, buf.String(), "allowance recompute failed")
}

func TestFireStreakFailureSurfacesOnHandle(t *testing.T) {
	boom := errors.New("boom")
	trig := NewTrigger(&fakeRecomputer{}, &fakeStreaks{err: boom}, time.Second, zerolog.Nop())

	h := trig.Fire("u1", time.UTC)
	require.ErrorIs(t, h.Wait(context.Background()), boom)
	require.ErrorIs(t, h.Err(), boom)
}

func TestWaitHonorsCallerContext(t *testing.T) {
	trig := NewTrigger(&fakeRecomputer{}, &fakeStreaks{}, time.Second, zerolog.Nop())
	h := trig.Fire("u1", time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.Wait(ctx)
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
}

package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

func TestEvaluateCleanActivityScoresZero(t *testing.T) {
	now := time.Now()
	s := Evaluate(validCandidate(now), now)

	require.Equal(t, 0, s.Value)
	require.Empty(t, s.Flags)
}

func TestEvaluateManualEntryPenalty(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.Source = domain.SourceManual

	s := Evaluate(c, now)
	require.Equal(t, -5, s.Value)
	require.Equal(t, []string{FlagManualEntry}, s.Flags)
}

func TestEvaluateShakeRigPattern(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	// 2000m over 10000 steps is a 0.2m stride.
	c.Steps = 10000

	s := Evaluate(c, now)
	require.Equal(t, -4, s.Value)
	require.Equal(t, []string{FlagShakeRigPattern}, s.Flags)
}

func TestEvaluateAbnormalStride(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	// 2000m over 500 steps is a 4m stride.
	c.Steps = 500

	s := Evaluate(c, now)
	require.Equal(t, -2, s.Value)
	require.Equal(t, []string{FlagAbnormalStride}, s.Flags)
}

func TestEvaluateSpeedStrideMismatch(t *testing.T) {
	now := time.Now()
	c := Candidate{
		Type:            domain.ActivityRun,
		DistanceMeters:  6500,
		DurationSeconds: 1800,  // 13 km/h
		Steps:           13000, // 0.5m stride
		StartedAt:       now.Add(-35 * time.Minute),
		EndedAt:         now.Add(-5 * time.Minute),
		Source:          domain.SourceDeviceSensor,
	}

	s := Evaluate(c, now)
	require.Equal(t, -3, s.Value)
	require.Equal(t, []string{FlagSpeedStrideMismatch}, s.Flags)
}

func TestEvaluateStrideRulesExclusive(t *testing.T) {
	now := time.Now()
	c := Candidate{
		Type:            domain.ActivityRun,
		DistanceMeters:  6500,
		DurationSeconds: 1800,
		Steps:           33000, // 0.197m stride also mismatches speed
		StartedAt:       now.Add(-35 * time.Minute),
		EndedAt:         now.Add(-5 * time.Minute),
		Source:          domain.SourceDeviceSensor,
	}

	s := Evaluate(c, now)
	require.Equal(t, []string{FlagShakeRigPattern}, s.Flags)
	require.Equal(t, -4, s.Value)
}

func TestEvaluateSkipsStrideRulesWithoutSteps(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.Steps = 0

	s := Evaluate(c, now)
	require.Equal(t, 0, s.Value)
}

func TestEvaluateWalkSpeedUnrealistic(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.Steps = 0
	c.DistanceMeters = 5000 // 10 km/h over 30 min

	s := Evaluate(c, now)
	require.Equal(t, -2, s.Value)
	require.Equal(t, []string{FlagWalkSpeedUnreal}, s.Flags)
}

func TestEvaluateBackfillPenalty(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.StartedAt = now.Add(-26 * time.Hour)
	c.EndedAt = now.Add(-25 * time.Hour)

	s := Evaluate(c, now)
	require.Equal(t, -3, s.Value)
	require.Equal(t, []string{FlagPotentialBackfill}, s.Flags)
}

func TestEvaluateSparseRoute(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	// 30 minutes of activity with 3 route points is well under the
	// one-point-per-minute expectation.
	c.RoutePointCount = 3

	s := Evaluate(c, now)
	require.Equal(t, -1, s.Value)
	require.Equal(t, []string{FlagSparseRoute}, s.Flags)

	c.RoutePointCount = 25
	require.Equal(t, 0, Evaluate(c, now).Value)
}

func TestEvaluatePenaltiesStack(t *testing.T) {
	now := time.Now()
	c := Candidate{
		Type:            domain.ActivityWalk,
		DistanceMeters:  2000,
		DurationSeconds: 1800,
		Steps:           10000, // shake rig
		StartedAt:       now.Add(-26 * time.Hour),
		EndedAt:         now.Add(-25 * time.Hour), // backfill
		Source:          domain.SourceManual,      // manual
	}

	s := Evaluate(c, now)
	require.Equal(t, -12, s.Value)
	require.Equal(t, []string{FlagManualEntry, FlagShakeRigPattern, FlagPotentialBackfill}, s.Flags)
}

func TestMultiplierTiers(t *testing.T) {
	require.Equal(t, 1.0, Multiplier(0))
	require.Equal(t, 1.0, Multiplier(3))
	require.Equal(t, 0.5, Multiplier(-1))
	require.Equal(t, 0.5, Multiplier(-2))
	require.Equal(t, 0.0, Multiplier(-3))
	require.Equal(t, 0.0, Multiplier(-12))
}

func TestVerified(t *testing.T) {
	require.True(t, Verified(domain.SourceGPSTracked, -5))
	require.True(t, Verified(domain.SourceDeviceSensor, 0))
	require.False(t, Verified(domain.SourceDeviceSensor, -1))
	require.False(t, Verified(domain.SourceManual, -5))
}

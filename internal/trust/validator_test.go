package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

func validCandidate(now time.Time) Candidate {
	return Candidate{
		Type:            domain.ActivityWalk,
		DistanceMeters:  2000,
		DurationSeconds: 1800,
		Steps:           2600,
		StartedAt:       now.Add(-35 * time.Minute),
		EndedAt:         now.Add(-5 * time.Minute),
		Source:          domain.SourceDeviceSensor,
	}
}

func TestValidateAcceptsPlausibleWalk(t *testing.T) {
	now := time.Now()
	require.NoError(t, Validate(validCandidate(now), now))
}

func TestValidateRejectsFutureStart(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.StartedAt = now.Add(time.Hour)
	c.EndedAt = now.Add(2 * time.Hour)

	err := Validate(c, now)
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.EndedAt = c.StartedAt.Add(-time.Minute)

	require.True(t, domain.IsValidation(Validate(c, now)))
}

func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.DurationSeconds = 0

	require.True(t, domain.IsValidation(Validate(c, now)))
}

func TestValidateRejectsOverlongDuration(t *testing.T) {
	now := time.Now()
	c := validCandidate(now)
	c.DurationSeconds = MaxDurationSeconds + 1

	require.True(t, domain.IsValidation(Validate(c, now)))
}

func TestValidateSpeedCeilingsPerType(t *testing.T) {
	now := time.Now()

	// 16 km/h walk is rejected, the same pace as a run is fine.
	c := validCandidate(now)
	c.DistanceMeters = 8000
	c.DurationSeconds = 1800
	require.True(t, domain.IsValidation(Validate(c, now)))

	c.Type = domain.ActivityRun
	require.NoError(t, Validate(c, now))

	// 50 km/h exceeds even the run ceiling.
	c.DistanceMeters = 25000
	require.True(t, domain.IsValidation(Validate(c, now)))
}

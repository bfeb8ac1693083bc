// Package trust decides how much credit self-reported activity deserves.
// The validator rejects physically impossible data outright; the scorer
// down-weights plausible-but-suspicious data without blocking it.
package trust

import (
	"time"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Per-type speed ceilings. An elite sprinter tops out around 44 km/h.
const (
	MaxRunSpeedKmh  = 45.0
	MaxWalkSpeedKmh = 15.0

	// MaxDurationSeconds caps a single activity at 24 hours.
	MaxDurationSeconds = 86400
)

// Candidate is the telemetry for a submitted activity, before persistence.
type Candidate struct {
	Type            domain.ActivityType
	DistanceMeters  float64
	DurationSeconds int
	Steps           int
	StartedAt       time.Time
	EndedAt         time.Time
	Source          domain.ActivitySource
	RoutePointCount int
}

// SpeedKmh is the implied average speed. Zero when duration is unusable.
func (c Candidate) SpeedKmh() float64 {
	if c.DurationSeconds <= 0 {
		return 0
	}
	return (c.DistanceMeters / 1000) / (float64(c.DurationSeconds) / 3600)
}

// Validate applies the hard gate. Any returned error is a
// *domain.ValidationError and means no record may be created.
func Validate(c Candidate, now time.Time) error {
	if c.StartedAt.After(now) {
		return domain.NewValidationError("activity cannot start in the future")
	}
	if !c.EndedAt.After(c.StartedAt) {
		return domain.NewValidationError("end time must be after start time")
	}
	if c.DurationSeconds <= 0 {
		return domain.NewValidationError("duration must be positive")
	}
	if c.DurationSeconds > MaxDurationSeconds {
		return domain.NewValidationError("duration cannot exceed 24 hours")
	}

	maxSpeed := MaxWalkSpeedKmh
	if c.Type == domain.ActivityRun {
		maxSpeed = MaxRunSpeedKmh
	}
	if speed := c.SpeedKmh(); speed > maxSpeed {
		return domain.NewValidationError("speed %.1f km/h exceeds maximum for %s", speed, c.Type)
	}
	return nil
}

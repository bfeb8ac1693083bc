package domain

import "time"

// UsageSessionSource records what triggered a usage session.
const (
	UsageSourceThresholdEvent = "threshold_event" // device hit the time limit
	UsageSourceAppForeground  = "app_foreground"  // companion app reconciled state
	UsageSourceManualMark     = "manual_mark"     // user ended the session
)

// MaxSessionDurationSeconds caps a single session at 24 hours. Durations are
// always computed server-side; a caller-supplied duration is never trusted.
const MaxSessionDurationSeconds = 86400

// UsageSession is one device-tracked interval of screen-time consumption.
type UsageSession struct {
	ID          string
	UserID      string
	AllowanceID string // "" when no allowance existed at session start
	StartedAt   time.Time
	EndedAt     *time.Time // nil while the session is open
	// DurationSeconds is computed on close from server clocks.
	DurationSeconds int
	Source          string
	CreatedAt       time.Time
}

// Open reports whether the session is still running.
func (s UsageSession) Open() bool {
	return s.EndedAt == nil
}

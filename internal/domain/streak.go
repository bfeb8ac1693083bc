package domain

import "time"

// Streak tracks consecutive calendar days of goal completion for one user.
type Streak struct {
	ID            string
	UserID        string
	CurrentStreak int
	LongestStreak int
	// LastCompletedDate is a calendar-date key, "" when the user has never
	// completed a goal. Preserved as history when a streak decays.
	LastCompletedDate string
	Multiplier        float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StreakUpdate carries the fields written by the streak engine.
type StreakUpdate struct {
	CurrentStreak     int
	LongestStreak     int
	LastCompletedDate string
	Multiplier        float64
}

// MultiplierForStreak maps a streak length to its reward multiplier tier.
func MultiplierForStreak(days int) float64 {
	switch {
	case days >= 30:
		return 1.5
	case days >= 14:
		return 1.25
	case days >= 7:
		return 1.1
	default:
		return 1.0
	}
}

// Package events defines the payloads published through the outbox for
// downstream consumers such as the notification service.
package events

import "time"

// ActivityCreated is emitted after an activity passes validation and is
// persisted.
type ActivityCreated struct {
	ActivityID     string    `json:"activity_id"`
	UserID         string    `json:"user_id"`
	ActivityType   string    `json:"activity_type"`
	DistanceMeters float64   `json:"distance_meters"`
	StartedAt      time.Time `json:"started_at"`
	Source         string    `json:"source"`
	TrustScore     int       `json:"trust_score"`
}

// ActivityDeleted is emitted when a user removes an activity.
type ActivityDeleted struct {
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AllowanceRecomputed is emitted after every allowance upsert so the
// notification service can congratulate newly unlocked users.
type AllowanceRecomputed struct {
	UserID        string    `json:"user_id"`
	Date          string    `json:"date"`
	EarnedMinutes int       `json:"earned_minutes"`
	BonusMinutes  int       `json:"bonus_minutes"`
	IsUnlocked    bool      `json:"is_unlocked"`
	OccurredAt    time.Time `json:"occurred_at"`
}

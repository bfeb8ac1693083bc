package domain

import "time"

const (
	// EmergencyBypassLimit caps bypass grants per user per calendar day.
	EmergencyBypassLimit = 3
	// EmergencyBypassMinutes is the screen time granted per bypass.
	EmergencyBypassMinutes = 5
)

// EmergencyBypass is the per-user, per-day bypass counter. It is mutated
// only through a conditional atomic increment so concurrent requests cannot
// jointly exceed the daily cap.
type EmergencyBypass struct {
	ID           string
	UserID       string
	Date         string
	BypassCount  int
	TotalMinutes int
	CreatedAt    time.Time
}

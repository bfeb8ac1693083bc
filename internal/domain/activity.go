// Package domain defines the entities and invariants shared by the
// screen-time engines.
package domain

import "time"

// ActivityType identifies the kind of physical activity.
type ActivityType string

const (
	ActivityRun  ActivityType = "run"
	ActivityWalk ActivityType = "walk"
)

// ActivitySource records how an activity reached the backend.
type ActivitySource string

const (
	SourceDeviceSensor ActivitySource = "device_sensor"
	SourceGPSTracked   ActivitySource = "gps_tracked"
	SourceManual       ActivitySource = "manual"
)

// Activity is an immutable record of reported physical activity. Trust
// penalties never prevent persistence; they only reduce the weight the
// allowance engine gives the distance.
type Activity struct {
	ID              string
	UserID          string
	Type            ActivityType
	DistanceMeters  float64
	DurationSeconds int
	Steps           int // 0 when the device reported no step count
	Calories        int
	StartedAt       time.Time
	EndedAt         time.Time
	Source          ActivitySource
	IsVerified      bool
	ExternalID      string // dedup key from the device health store, "" when absent
	TrustScore      int
	TrustFlags      []string
	SourceBundleID  string
	SourceDevice    string
	RoutePointCount int
	CreatedAt       time.Time
}

// ActivityFilters narrows an activity listing.
type ActivityFilters struct {
	Type ActivityType // "" means all types
	From time.Time
	To   time.Time
}

// DayStats aggregates a user's activity over a date range.
type DayStats struct {
	TotalDistanceMeters float64
	TotalDurationSecs   int
	ActivityCount       int
}

// Cursor models the pagination token for activity listings.
type Cursor struct {
	StartedAt time.Time
	ID        string
}

package domain

import "time"

// GoalCadence is how often a goal resets. Only daily goals feed the
// allowance engine; weekly goals are stored for future use.
type GoalCadence string

const (
	CadenceDaily  GoalCadence = "daily"
	CadenceWeekly GoalCadence = "weekly"
)

// GoalActivityType restricts which activities a goal accepts.
type GoalActivityType string

const (
	GoalRun  GoalActivityType = "run"
	GoalWalk GoalActivityType = "walk"
	GoalAny  GoalActivityType = "any"
)

// GoalUnit is the unit the target value is expressed in.
type GoalUnit string

const (
	UnitKilometers GoalUnit = "km"
	UnitMiles      GoalUnit = "miles"
	UnitSteps      GoalUnit = "steps"
)

const (
	metersPerKilometer = 1000.0
	metersPerMile      = 1609.34
	metersPerStep      = 0.75
)

// Goal is a user-defined activity target that earns screen-time minutes.
type Goal struct {
	ID            string
	UserID        string
	Cadence       GoalCadence
	ActivityType  GoalActivityType
	TargetValue   float64
	TargetUnit    GoalUnit
	RewardMinutes int
	IsActive      bool
	// Suggestion provenance, kept for analytics.
	SuggestedValue float64
	UserAdjusted   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TargetMeters converts the goal target into meters.
func (g Goal) TargetMeters() float64 {
	return UnitToMeters(g.TargetValue, g.TargetUnit)
}

// UnitToMeters converts a value in the given unit to meters. Steps use an
// approximate 0.75 m stride.
func UnitToMeters(value float64, unit GoalUnit) float64 {
	switch unit {
	case UnitKilometers:
		return value * metersPerKilometer
	case UnitMiles:
		return value * metersPerMile
	case UnitSteps:
		return value * metersPerStep
	default:
		return value
	}
}

// MetersToUnit converts meters back into the given unit.
func MetersToUnit(meters float64, unit GoalUnit) float64 {
	switch unit {
	case UnitKilometers:
		return meters / metersPerKilometer
	case UnitMiles:
		return meters / metersPerMile
	case UnitSteps:
		return meters / metersPerStep
	default:
		return meters
	}
}

// Package enforcement renders the authoritative block/unlock decision. The
// client displays the result; it never computes entitlement itself.
package enforcement

import (
	"context"
	"math"
	"time"

	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/observability"
	"github.com/Jaseempk/dashtok-server/internal/trust"
)

// Reason explains a block/unlock decision.
type Reason string

const (
	ReasonGoalIncomplete      Reason = "goal_incomplete"
	ReasonTimeExhausted       Reason = "time_exhausted"
	ReasonUnlocked            Reason = "unlocked"
	ReasonEnforcementDisabled Reason = "enforcement_disabled"
	ReasonNoBlockedApps       Reason = "no_blocked_apps"

	// ReasonDailyLimitReached declines an emergency bypass at the cap.
	ReasonDailyLimitReached Reason = "daily_limit_reached"
)

// AllowanceProvider supplies the server-computed allowance for today.
type AllowanceProvider interface {
	Today(ctx context.Context, userID string, loc *time.Location) (*domain.Allowance, error)
}

// ConfigProvider supplies the materialized blocked-app config, nil when the
// user has none.
type ConfigProvider interface {
	Get(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error)
}

// GoalStore lists active goals for the unlock requirement.
type GoalStore interface {
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Goal, error)
}

// ActivityStore reads the day's activities for progress reporting.
type ActivityStore interface {
	ListForRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Activity, error)
}

// BypassStore reads and conditionally increments the per-day bypass counter.
type BypassStore interface {
	FindByUserAndDate(ctx context.Context, userID, date string) (*domain.EmergencyBypass, error)
	// IncrementIfBelow atomically increments the counter and adds minutes
	// unless bypassCount has reached limit, in which case it returns nil.
	IncrementIfBelow(ctx context.Context, userID, date string, limit, minutes int) (*domain.EmergencyBypass, error)
}

// Status is the full decision payload for the client.
type Status struct {
	ShouldBlock           bool               `json:"shouldBlock"`
	Reason                Reason             `json:"reason"`
	RemainingMinutes      int                `json:"remainingMinutes"`
	TotalMinutes          int                `json:"totalMinutes"`
	UsedMinutes           int                `json:"usedMinutes"`
	NextUnlockRequirement *UnlockRequirement `json:"nextUnlockRequirement"`
	EmergencyBypassAvail  bool               `json:"emergencyBypassAvailable"`
	EmergencyBypassesLeft int                `json:"emergencyBypassesLeft"`
	IsUnlocked            bool               `json:"isUnlocked"`
}

// UnlockRequirement describes progress toward the first active daily goal.
type UnlockRequirement struct {
	Current         float64         `json:"current"`
	Target          float64         `json:"target"`
	Unit            domain.GoalUnit `json:"unit"`
	PercentComplete int             `json:"percentComplete"`
}

// UnlockResult answers a client unlock request.
type UnlockResult struct {
	Unlocked        bool   `json:"unlocked"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Reason          Reason `json:"reason,omitempty"`
}

// LockResult answers a client lock request.
type LockResult struct {
	Locked bool `json:"locked"`
}

// BypassResult answers an emergency bypass request.
type BypassResult struct {
	Granted           bool   `json:"granted"`
	MinutesGranted    int    `json:"minutesGranted,omitempty"`
	BypassesRemaining int    `json:"bypassesRemaining"`
	Reason            Reason `json:"reason,omitempty"`
}

// Decider combines allowance, usage, config, and bypass state into a
// decision. It is stateless; every call re-reads persisted state.
type Decider struct {
	allowances AllowanceProvider
	configs    ConfigProvider
	goals      GoalStore
	activities ActivityStore
	bypasses   BypassStore
}

// NewDecider constructs a Decider.
func NewDecider(allowances AllowanceProvider, configs ConfigProvider, goals GoalStore, activities ActivityStore, bypasses BypassStore) *Decider {
	return &Decider{allowances: allowances, configs: configs, goals: goals, activities: activities, bypasses: bypasses}
}

// Status evaluates the decision rules in precedence order: no config,
// enforcement disabled, goal incomplete, time exhausted, unlocked.
func (d *Decider) Status(ctx context.Context, userID string, loc *time.Location) (*Status, error) {
	cfg, err := d.configs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		observability.RecordDecision(string(ReasonNoBlockedApps))
		return &Status{Reason: ReasonNoBlockedApps}, nil
	}
	if !cfg.IsActive {
		observability.RecordDecision(string(ReasonEnforcementDisabled))
		return &Status{Reason: ReasonEnforcementDisabled}, nil
	}

	a, err := d.allowances.Today(ctx, userID, loc)
	if err != nil {
		return nil, err
	}

	requirement, err := d.nextUnlockRequirement(ctx, userID, loc)
	if err != nil {
		return nil, err
	}

	today := domain.DateKey(time.Now(), loc)
	bypassCount := 0
	if bypass, err := d.bypasses.FindByUserAndDate(ctx, userID, today); err != nil {
		return nil, err
	} else if bypass != nil {
		bypassCount = bypass.BypassCount
	}
	bypassesLeft := domain.EmergencyBypassLimit - bypassCount
	if bypassesLeft < 0 {
		bypassesLeft = 0
	}

	status := &Status{
		RemainingMinutes:      a.RemainingMinutes(),
		TotalMinutes:          a.TotalMinutes(),
		UsedMinutes:           a.RealUsedMinutes,
		NextUnlockRequirement: requirement,
		EmergencyBypassAvail:  bypassesLeft > 0,
		EmergencyBypassesLeft: bypassesLeft,
		IsUnlocked:            a.IsUnlocked,
	}

	switch {
	case !a.IsUnlocked:
		status.ShouldBlock = true
		status.Reason = ReasonGoalIncomplete
	case status.RemainingMinutes <= 0:
		status.ShouldBlock = true
		status.Reason = ReasonTimeExhausted
	default:
		status.Reason = ReasonUnlocked
	}
	observability.RecordDecision(string(status.Reason))
	return status, nil
}

// RequestUnlock re-derives entitlement server-side and never trusts a
// client-asserted completion.
func (d *Decider) RequestUnlock(ctx context.Context, userID string, loc *time.Location) (*UnlockResult, error) {
	a, err := d.allowances.Today(ctx, userID, loc)
	if err != nil {
		return nil, err
	}
	if !a.IsUnlocked {
		return &UnlockResult{Reason: ReasonGoalIncomplete}, nil
	}
	remaining := a.RemainingMinutes()
	if remaining <= 0 {
		return &UnlockResult{Reason: ReasonTimeExhausted}, nil
	}
	return &UnlockResult{Unlocked: true, DurationMinutes: remaining}, nil
}

// RequestLock always succeeds when a config exists; locking is a
// restriction, not a privilege.
func (d *Decider) RequestLock(ctx context.Context, userID string) (*LockResult, error) {
	cfg, err := d.configs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &LockResult{Locked: cfg != nil}, nil
}

// RequestEmergencyBypass grants a fixed-minute override up to the daily cap.
// The increment is race-safe: concurrent requests at the cap cannot both
// succeed.
func (d *Decider) RequestEmergencyBypass(ctx context.Context, userID string, loc *time.Location) (*BypassResult, error) {
	today := domain.DateKey(time.Now(), loc)

	bypass, err := d.bypasses.IncrementIfBelow(ctx, userID, today, domain.EmergencyBypassLimit, domain.EmergencyBypassMinutes)
	if err != nil {
		return nil, err
	}
	if bypass == nil {
		observability.RecordBypass(false)
		return &BypassResult{Reason: ReasonDailyLimitReached}, nil
	}

	remaining := domain.EmergencyBypassLimit - bypass.BypassCount
	if remaining < 0 {
		remaining = 0
	}
	observability.RecordBypass(true)
	return &BypassResult{
		Granted:           true,
		MinutesGranted:    domain.EmergencyBypassMinutes,
		BypassesRemaining: remaining,
	}, nil
}

// nextUnlockRequirement reports progress toward the first active daily goal
// using trust-weighted distance, nil when the user has no daily goal.
func (d *Decider) nextUnlockRequirement(ctx context.Context, userID string, loc *time.Location) (*UnlockRequirement, error) {
	goals, err := d.goals.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var daily *domain.Goal
	for i := range goals {
		if goals[i].Cadence == domain.CadenceDaily {
			daily = &goals[i]
			break
		}
	}
	if daily == nil {
		return nil, nil
	}

	from, to, err := domain.DayBounds(domain.DateKey(time.Now(), loc), loc)
	if err != nil {
		return nil, err
	}
	activities, err := d.activities.ListForRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	weighted := 0.0
	for _, a := range activities {
		weighted += a.DistanceMeters * trust.Multiplier(a.TrustScore)
	}

	targetMeters := daily.TargetMeters()
	percent := 0
	if targetMeters > 0 {
		percent = int(math.Round(math.Min(100, weighted/targetMeters*100)))
	}
	return &UnlockRequirement{
		Current:         math.Round(domain.MetersToUnit(weighted, daily.TargetUnit)*100) / 100,
		Target:          daily.TargetValue,
		Unit:            daily.TargetUnit,
		PercentComplete: percent,
	}, nil
}

package trust

import (
	"time"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Flag labels attached by scoring rules, in evaluation order.
const (
	FlagManualEntry         = "manual_entry"
	FlagShakeRigPattern     = "shake_rig_pattern"
	FlagAbnormalStride      = "abnormal_stride"
	FlagSpeedStrideMismatch = "speed_stride_mismatch"
	FlagWalkSpeedUnreal     = "walk_speed_unrealistic"
	FlagPotentialBackfill   = "potential_backfill"
	FlagSparseRoute         = "sparse_route"
)

// Score is the outcome of trust scoring: a non-positive penalty accumulator
// and the flags that produced it.
type Score struct {
	Value int
	Flags []string
}

// penaltyRule inspects a candidate and returns a penalty and flag when it
// matches.
type penaltyRule func(c Candidate, now time.Time) (penalty int, flag string, hit bool)

// Independent rules stack; the stride group is mutually exclusive and only
// its first matching branch applies.
var independentRules = []penaltyRule{
	walkSpeedRule,
	backfillRule,
	sparseRouteRule,
}

var strideRules = []penaltyRule{
	shakeRigRule,
	abnormalStrideRule,
	speedStrideMismatchRule,
}

// Evaluate scores a candidate. The score starts at zero and each matching
// rule subtracts its penalty.
func Evaluate(c Candidate, now time.Time) Score {
	score := Score{Flags: []string{}}

	apply := func(penalty int, flag string) {
		score.Value -= penalty
		score.Flags = append(score.Flags, flag)
	}

	if penalty, flag, hit := manualEntryRule(c, now); hit {
		apply(penalty, flag)
	}

	if c.Steps > 0 {
		for _, rule := range strideRules {
			if penalty, flag, hit := rule(c, now); hit {
				apply(penalty, flag)
				break
			}
		}
	}

	for _, rule := range independentRules {
		if penalty, flag, hit := rule(c, now); hit {
			apply(penalty, flag)
		}
	}

	return score
}

// Multiplier maps a trust score to the distance-credit multiplier used by
// the allowance engine.
func Multiplier(score int) float64 {
	switch {
	case score >= 0:
		return 1.0
	case score >= -2:
		return 0.5
	default:
		return 0.0
	}
}

// Verified reports whether an activity counts as verified: GPS-tracked, or
// scored clean.
func Verified(source domain.ActivitySource, score int) bool {
	return source == domain.SourceGPSTracked || score >= 0
}

func manualEntryRule(c Candidate, _ time.Time) (int, string, bool) {
	if c.Source == domain.SourceManual {
		return 5, FlagManualEntry, true
	}
	return 0, "", false
}

// strideMeters is meters covered per step. Only meaningful when steps > 0.
func strideMeters(c Candidate) float64 {
	return c.DistanceMeters / float64(c.Steps)
}

func shakeRigRule(c Candidate, _ time.Time) (int, string, bool) {
	// Sub-0.3m strides with real distance means the device was likely
	// shaken to fake steps.
	if strideMeters(c) < 0.3 {
		return 4, FlagShakeRigPattern, true
	}
	return 0, "", false
}

func abnormalStrideRule(c Candidate, _ time.Time) (int, string, bool) {
	if strideMeters(c) > 2.5 {
		return 2, FlagAbnormalStride, true
	}
	return 0, "", false
}

func speedStrideMismatchRule(c Candidate, _ time.Time) (int, string, bool) {
	speed := c.SpeedKmh()
	stride := strideMeters(c)
	if (speed > 12 && stride < 0.6) || (speed > 8 && stride < 0.4) {
		return 3, FlagSpeedStrideMismatch, true
	}
	return 0, "", false
}

func walkSpeedRule(c Candidate, _ time.Time) (int, string, bool) {
	if c.Type == domain.ActivityWalk && c.SpeedKmh() > 9 {
		return 2, FlagWalkSpeedUnreal, true
	}
	return 0, "", false
}

func backfillRule(c Candidate, now time.Time) (int, string, bool) {
	if now.Sub(c.EndedAt).Hours() > 24 {
		return 3, FlagPotentialBackfill, true
	}
	return 0, "", false
}

func sparseRouteRule(c Candidate, _ time.Time) (int, string, bool) {
	if c.RoutePointCount <= 0 {
		return 0, "", false
	}
	// Expect roughly one route point per minute of activity.
	expected := float64(c.DurationSeconds) / 60
	if float64(c.RoutePointCount) < 0.3*expected {
		return 1, FlagSparseRoute, true
	}
	return 0, "", false
}

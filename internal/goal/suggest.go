package goal

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Profile describes a user during onboarding.
type Profile struct {
	AgeRange      string // "18-24" .. "55+"
	HeightRange   string // "under-150", "150-170", "over-170"
	FitnessLevel  string // sedentary | light | moderate | active
	ActivityType  domain.ActivityType
	BehaviorScore int // 0-12, higher means more screen dependent
}

// Suggestion is a proposed starting goal.
type Suggestion struct {
	DistanceKm    float64 `json:"suggestedDistanceKm"`
	RewardMinutes int     `json:"suggestedRewardMinutes"`
	ProfileType   string  `json:"profileType"`
	Reasoning     string  `json:"reasoning"`
}

// Suggester proposes an initial goal for a profile. The production
// implementation calls an LLM and lives outside this service; the engine
// only depends on this port.
type Suggester interface {
	SuggestGoal(ctx context.Context, p Profile) (*Suggestion, error)
}

// Reward rates per kilometer of target distance.
const (
	walkRewardPerKm = 15
	runRewardPerKm  = 22
)

var baseDistancesKm = map[domain.ActivityType]map[string]float64{
	domain.ActivityWalk: {"sedentary": 1.0, "light": 1.5, "moderate": 2.5, "active": 3.5},
	domain.ActivityRun:  {"sedentary": 1.5, "light": 2.0, "moderate": 3.0, "active": 5.0},
}

// RuleSuggester is the deterministic fallback: fitness-level base distances
// with age, height, and behavior adjustments.
type RuleSuggester struct{}

// SuggestGoal never fails.
func (RuleSuggester) SuggestGoal(_ context.Context, p Profile) (*Suggestion, error) {
	distance, ok := baseDistancesKm[p.ActivityType][p.FitnessLevel]
	if !ok {
		distance = baseDistancesKm[domain.ActivityWalk]["light"]
	}

	if p.AgeRange == "55+" {
		distance *= 0.8
	}
	if p.HeightRange == "under-150" {
		distance *= 0.9
	}
	if p.BehaviorScore >= 8 {
		distance *= 0.85
	}
	distance = math.Round(distance*10) / 10

	rate := walkRewardPerKm
	if p.ActivityType == domain.ActivityRun {
		rate = runRewardPerKm
	}

	return &Suggestion{
		DistanceKm:    distance,
		RewardMinutes: int(math.Round(distance * float64(rate))),
		ProfileType:   classifyProfile(p),
		Reasoning:     "Starting target based on your fitness level, adjusted for your profile.",
	}, nil
}

func classifyProfile(p Profile) string {
	lowFitness := p.FitnessLevel == "sedentary" || p.FitnessLevel == "light"
	switch {
	case lowFitness && p.BehaviorScore >= 6:
		return "rebuilder"
	case lowFitness:
		return "starter"
	default:
		return "optimizer"
	}
}

// SuggestWithFallback tries the configured suggester and falls back to the
// deterministic rules on any error. Suggestion is advisory; it never blocks
// onboarding.
func SuggestWithFallback(ctx context.Context, s Suggester, p Profile, logger zerolog.Logger) *Suggestion {
	if s != nil {
		if out, err := s.SuggestGoal(ctx, p); err == nil {
			return out
		} else {
			logger.Warn().Err(err).Msg("goal suggester failed, using fallback")
		}
	}
	out, _ := RuleSuggester{}.SuggestGoal(ctx, p)
	return out
}

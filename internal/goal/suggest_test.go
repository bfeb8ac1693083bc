package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

func TestRuleSuggesterBaseDistances(t *testing.T) {
	cases := []struct {
		name       string
		profile    Profile
		wantKm     float64
		wantReward int
	}{
		{
			name:       "sedentary walker",
			profile:    Profile{FitnessLevel: "sedentary", ActivityType: domain.ActivityWalk},
			wantKm:     1.0,
			wantReward: 15,
		},
		{
			name:       "active runner",
			profile:    Profile{FitnessLevel: "active", ActivityType: domain.ActivityRun},
			wantKm:     5.0,
			wantReward: 110,
		},
		{
			name:       "unknown fitness falls back to light walk",
			profile:    Profile{FitnessLevel: "superhuman", ActivityType: domain.ActivityWalk},
			wantKm:     1.5,
			wantReward: 23,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := RuleSuggester{}.SuggestGoal(context.Background(), tc.profile)
			require.NoError(t, err)
			require.Equal(t, tc.wantKm, s.DistanceKm)
			require.Equal(t, tc.wantReward, s.RewardMinutes)
		})
	}
}

func TestRuleSuggesterAdjustmentsStack(t *testing.T) {
	p := Profile{
		FitnessLevel:  "moderate",
		ActivityType:  domain.ActivityWalk,
		AgeRange:      "55+",
		HeightRange:   "under-150",
		BehaviorScore: 9,
	}

	s, err := RuleSuggester{}.SuggestGoal(context.Background(), p)
	require.NoError(t, err)
	// 2.5 * 0.8 * 0.9 * 0.85 = 1.53, rounded to one decimal.
	require.Equal(t, 1.5, s.DistanceKm)
	require.Equal(t, 23, s.RewardMinutes)
}

func TestClassifyProfile(t *testing.T) {
	require.Equal(t, "rebuilder", classifyProfile(Profile{FitnessLevel: "sedentary", BehaviorScore: 7}))
	require.Equal(t, "starter", classifyProfile(Profile{FitnessLevel: "light", BehaviorScore: 2}))
	require.Equal(t, "optimizer", classifyProfile(Profile{FitnessLevel: "active", BehaviorScore: 10}))
}

type failingSuggester struct{}

func (failingSuggester) SuggestGoal(context.Context, Profile) (*Suggestion, error) {
	return nil, errors.New("model unavailable")
}

type cannedSuggester struct {
	out *Suggestion
}

func (c cannedSuggester) SuggestGoal(context.Context, Profile) (*Suggestion, error) {
	return c.out, nil
}

func TestSuggestWithFallback(t *testing.T) {
	p := Profile{FitnessLevel: "light", ActivityType: domain.ActivityWalk}

	canned := &Suggestion{DistanceKm: 9.9, RewardMinutes: 1, ProfileType: "custom"}
	out := SuggestWithFallback(context.Background(), cannedSuggester{out: canned}, p, zerolog.Nop())
	require.Same(t, canned, out)

	out = SuggestWithFallback(context.Background(), failingSuggester{}, p, zerolog.Nop())
	require.Equal(t, 1.5, out.DistanceKm)

	out = SuggestWithFallback(context.Background(), nil, p, zerolog.Nop())
	require.Equal(t, 1.5, out.DistanceKm)
}

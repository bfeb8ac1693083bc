package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/goal"
)

func (h *Handler) goalsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createGoal(w, r)
	case http.MethodGet:
		h.listGoals(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) goalByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/goals/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing goal id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getGoal(w, r, id)
	case http.MethodPatch:
		h.updateGoal(w, r, id)
	case http.MethodDelete:
		h.deleteGoal(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// CreateGoalRequest is the payload for POST /v1/goals.
type CreateGoalRequest struct {
	Cadence        string  `json:"cadence"`
	ActivityType   string  `json:"activityType"`
	TargetValue    float64 `json:"targetValue"`
	TargetUnit     string  `json:"targetUnit"`
	RewardMinutes  int     `json:"rewardMinutes"`
	SuggestedValue float64 `json:"suggestedValue"`
	UserAdjusted   bool    `json:"userAdjusted"`
}

// Validate ensures request correctness.
func (r CreateGoalRequest) Validate() error {
	switch domain.GoalCadence(r.Cadence) {
	case domain.CadenceDaily, domain.CadenceWeekly:
	default:
		return errors.New("cadence must be daily or weekly")
	}
	switch domain.GoalActivityType(r.ActivityType) {
	case domain.GoalRun, domain.GoalWalk, domain.GoalAny:
	default:
		return errors.New("activityType must be run, walk or any")
	}
	switch domain.GoalUnit(r.TargetUnit) {
	case domain.UnitKilometers, domain.UnitMiles, domain.UnitSteps:
	default:
		return errors.New("targetUnit must be km, miles or steps")
	}
	if r.TargetValue <= 0 {
		return errors.New("targetValue must be > 0")
	}
	if r.RewardMinutes <= 0 {
		return errors.New("rewardMinutes must be > 0")
	}
	return nil
}

// GoalView exposes a goal to clients.
type GoalView struct {
	ID             string    `json:"id"`
	Cadence        string    `json:"cadence"`
	ActivityType   string    `json:"activityType"`
	TargetValue    float64   `json:"targetValue"`
	TargetUnit     string    `json:"targetUnit"`
	RewardMinutes  int       `json:"rewardMinutes"`
	IsActive       bool      `json:"isActive"`
	SuggestedValue float64   `json:"suggestedValue,omitempty"`
	UserAdjusted   bool      `json:"userAdjusted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toGoalView(g domain.Goal) GoalView {
	return GoalView{
		ID:             g.ID,
		Cadence:        string(g.Cadence),
		ActivityType:   string(g.ActivityType),
		TargetValue:    g.TargetValue,
		TargetUnit:     string(g.TargetUnit),
		RewardMinutes:  g.RewardMinutes,
		IsActive:       g.IsActive,
		SuggestedValue: g.SuggestedValue,
		UserAdjusted:   g.UserAdjusted,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	g, err := h.goals.Create(r.Context(), claims.Subject, goal.CreateInput{
		Cadence:        domain.GoalCadence(req.Cadence),
		ActivityType:   domain.GoalActivityType(req.ActivityType),
		TargetValue:    req.TargetValue,
		TargetUnit:     domain.GoalUnit(req.TargetUnit),
		RewardMinutes:  req.RewardMinutes,
		SuggestedValue: req.SuggestedValue,
		UserAdjusted:   req.UserAdjusted,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalView(*g))
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	goals, err := h.goals.List(r.Context(), claims.Subject, activeOnly)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	writeJSON(w, http.StatusOK, map[string][]GoalView{"items": views})
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	g, err := h.goals.Get(r.Context(), claims.Subject, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalView(*g))
}

// UpdateGoalRequest carries the mutable goal fields.
type UpdateGoalRequest struct {
	TargetValue   *float64 `json:"targetValue"`
	TargetUnit    *string  `json:"targetUnit"`
	RewardMinutes *int     `json:"rewardMinutes"`
	IsActive      *bool    `json:"isActive"`
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.TargetValue != nil && *req.TargetValue <= 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "targetValue must be > 0")
		return
	}
	if req.RewardMinutes != nil && *req.RewardMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "rewardMinutes must be > 0")
		return
	}

	in := goal.UpdateInput{
		TargetValue:   req.TargetValue,
		RewardMinutes: req.RewardMinutes,
		IsActive:      req.IsActive,
	}
	if req.TargetUnit != nil {
		unit := domain.GoalUnit(*req.TargetUnit)
		switch unit {
		case domain.UnitKilometers, domain.UnitMiles, domain.UnitSteps:
		default:
			writeError(w, http.StatusBadRequest, "validation_failed", "targetUnit must be km, miles or steps")
			return
		}
		in.TargetUnit = &unit
	}

	g, err := h.goals.Update(r.Context(), claims.Subject, id, in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalView(*g))
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	if err := h.goals.Delete(r.Context(), claims.Subject, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuggestGoalRequest is the onboarding profile for POST /v1/goals/suggest.
type SuggestGoalRequest struct {
	AgeRange      string `json:"ageRange"`
	HeightRange   string `json:"heightRange"`
	FitnessLevel  string `json:"fitnessLevel"`
	ActivityType  string `json:"activityType"`
	BehaviorScore int    `json:"behaviorScore"`
}

func (h *Handler) goalSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireClaims(w, r, auth.ScopeRead); !ok {
		return
	}

	var req SuggestGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activityType := domain.ActivityType(req.ActivityType)
	if activityType != domain.ActivityRun {
		activityType = domain.ActivityWalk
	}

	suggestion := goal.SuggestWithFallback(r.Context(), h.suggester, goal.Profile{
		AgeRange:      req.AgeRange,
		HeightRange:   req.HeightRange,
		FitnessLevel:  req.FitnessLevel,
		ActivityType:  activityType,
		BehaviorScore: req.BehaviorScore,
	}, h.logger)
	writeJSON(w, http.StatusOK, suggestion)
}

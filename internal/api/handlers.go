// Package api exposes the HTTP surface of the screen-time service.
package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/goccy/go-json"

	"github.com/Jaseempk/dashtok-server/internal/activity"
	"github.com/Jaseempk/dashtok-server/internal/allowance"
	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/blockedapps"
	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/enforcement"
	"github.com/Jaseempk/dashtok-server/internal/goal"
	"github.com/Jaseempk/dashtok-server/internal/streak"
	"github.com/Jaseempk/dashtok-server/internal/usage"
)

// Handler coordinates HTTP requests with the domain engines.
type Handler struct {
	activities  *activity.Service
	goals       *goal.Service
	suggester   goal.Suggester
	allowances  *allowance.Engine
	streaks     *streak.Engine
	enforcement *enforcement.Decider
	blockedApps *blockedapps.Manager
	usage       *usage.Service
	logger      zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(
	activities *activity.Service,
	goals *goal.Service,
	suggester goal.Suggester,
	allowances *allowance.Engine,
	streaks *streak.Engine,
	decider *enforcement.Decider,
	blockedApps *blockedapps.Manager,
	usageSvc *usage.Service,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		activities:  activities,
		goals:       goals,
		suggester:   suggester,
		allowances:  allowances,
		streaks:     streaks,
		enforcement: decider,
		blockedApps: blockedApps,
		usage:       usageSvc,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activitiesRoot)
	mux.HandleFunc("/v1/activities/today", h.activityToday)
	mux.HandleFunc("/v1/activities/", h.activityByID)

	mux.HandleFunc("/v1/goals", h.goalsRoot)
	mux.HandleFunc("/v1/goals/suggest", h.goalSuggest)
	mux.HandleFunc("/v1/goals/", h.goalByID)

	mux.HandleFunc("/v1/allowance/today", h.allowanceToday)
	mux.HandleFunc("/v1/allowance/history", h.allowanceHistory)
	mux.HandleFunc("/v1/allowance/used", h.allowanceUsed)
	mux.HandleFunc("/v1/allowance/recompute", h.allowanceRecompute)

	mux.HandleFunc("/v1/streak", h.streakGet)

	mux.HandleFunc("/v1/enforcement/status", h.enforcementStatus)
	mux.HandleFunc("/v1/enforcement/unlock", h.enforcementUnlock)
	mux.HandleFunc("/v1/enforcement/lock", h.enforcementLock)
	mux.HandleFunc("/v1/enforcement/bypass", h.enforcementBypass)

	mux.HandleFunc("/v1/blocked-apps", h.blockedAppsRoot)
	mux.HandleFunc("/v1/blocked-apps/enforcement", h.blockedAppsEnforcement)
	mux.HandleFunc("/v1/blocked-apps/pending", h.blockedAppsPending)

	mux.HandleFunc("/v1/usage/sessions/start", h.usageStart)
	mux.HandleFunc("/v1/usage/sessions/end", h.usageEnd)
	mux.HandleFunc("/v1/usage/sessions/active", h.usageActive)
	mux.HandleFunc("/v1/usage/today", h.usageToday)

	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requireClaims extracts verified claims and checks the scope, writing the
// error response itself when the request is not allowed.
func requireClaims(w http.ResponseWriter, r *http.Request, scope string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	// Write scope implies read.
	if !claims.HasScope(scope) && !(scope == auth.ScopeRead && claims.HasScope(auth.ScopeWrite)) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return nil, false
	}
	return claims, true
}

// writeDomainError maps domain errors onto HTTP statuses. Unrecognized
// errors become 500s.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrActivityNotFound),
		errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrAllowanceNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrConfigNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrDuplicateActivity),
		errors.Is(err, domain.ErrPendingChangeExists):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrNoPendingChange):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

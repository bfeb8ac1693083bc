package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Jaseempk/dashtok-server/internal/activity"
	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/persistence"
)

func (h *Handler) activitiesRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getActivity(w, r, id)
	case http.MethodDelete:
		h.deleteActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Type            string    `json:"type"`
	DistanceMeters  float64   `json:"distanceMeters"`
	DurationSeconds int       `json:"durationSeconds"`
	Steps           int       `json:"steps"`
	Calories        int       `json:"calories"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	Source          string    `json:"source"`
	ExternalID      string    `json:"externalId"`
	SourceBundleID  string    `json:"sourceBundleId"`
	SourceDevice    string    `json:"sourceDevice"`
	RoutePointCount int       `json:"routePointCount"`
}

// Validate ensures request correctness before domain validation runs.
func (r CreateActivityRequest) Validate() error {
	switch domain.ActivityType(r.Type) {
	case domain.ActivityRun, domain.ActivityWalk:
	default:
		return errors.New("type must be run or walk")
	}
	switch domain.ActivitySource(r.Source) {
	case domain.SourceDeviceSensor, domain.SourceGPSTracked, domain.SourceManual:
	default:
		return errors.New("source must be device_sensor, gps_tracked or manual")
	}
	if r.DistanceMeters < 0 {
		return errors.New("distanceMeters must be >= 0")
	}
	if r.DurationSeconds <= 0 {
		return errors.New("durationSeconds must be > 0")
	}
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return errors.New("startedAt and endedAt are required")
	}
	return nil
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	DistanceMeters  float64   `json:"distanceMeters"`
	DurationSeconds int       `json:"durationSeconds"`
	Steps           int       `json:"steps"`
	Calories        int       `json:"calories"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	Source          string    `json:"source"`
	IsVerified      bool      `json:"isVerified"`
	TrustScore      int       `json:"trustScore"`
	TrustFlags      []string  `json:"trustFlags,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:              a.ID,
		Type:            string(a.Type),
		DistanceMeters:  a.DistanceMeters,
		DurationSeconds: a.DurationSeconds,
		Steps:           a.Steps,
		Calories:        a.Calories,
		StartedAt:       a.StartedAt,
		EndedAt:         a.EndedAt,
		Source:          string(a.Source),
		IsVerified:      a.IsVerified,
		TrustScore:      a.TrustScore,
		TrustFlags:      a.TrustFlags,
		CreatedAt:       a.CreatedAt,
	}
}

// CreateActivityResponse describes the response body for create.
type CreateActivityResponse struct {
	Activity ActivityView `json:"activity"`
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	a, _, err := h.activities.Create(r.Context(), claims.Subject, activity.CreateInput{
		Type:            domain.ActivityType(req.Type),
		DistanceMeters:  req.DistanceMeters,
		DurationSeconds: req.DurationSeconds,
		Steps:           req.Steps,
		Calories:        req.Calories,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		Source:          domain.ActivitySource(req.Source),
		ExternalID:      req.ExternalID,
		SourceBundleID:  req.SourceBundleID,
		SourceDevice:    req.SourceDevice,
		RoutePointCount: req.RoutePointCount,
	}, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateActivityResponse{Activity: toActivityView(*a)})
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	a, err := h.activities.Get(r.Context(), claims.Subject, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*a))
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	if _, err := h.activities.Delete(r.Context(), claims.Subject, id, claims.Timezone); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	var filters domain.ActivityFilters
	if t := r.URL.Query().Get("type"); t != "" {
		filters.Type = domain.ActivityType(t)
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid from timestamp")
			return
		}
		filters.From = ts
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid to timestamp")
			return
		}
		filters.To = ts
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	items, next, err := h.activities.List(r.Context(), claims.Subject, filters, cursor, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := make([]ActivityView, 0, len(items))
	for _, a := range items {
		views = append(views, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: views, NextCursor: persistence.EncodeCursor(next)})
}

// TodayStatsResponse aggregates the local day's activity.
type TodayStatsResponse struct {
	TotalDistanceMeters float64 `json:"totalDistanceMeters"`
	TotalDurationSecs   int     `json:"totalDurationSeconds"`
	ActivityCount       int     `json:"activityCount"`
}

func (h *Handler) activityToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	stats, err := h.activities.TodayStats(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TodayStatsResponse{
		TotalDistanceMeters: stats.TotalDistanceMeters,
		TotalDurationSecs:   stats.TotalDurationSecs,
		ActivityCount:       stats.ActivityCount,
	})
}

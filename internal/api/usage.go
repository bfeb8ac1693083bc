package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// StartSessionRequest opens a usage session.
type StartSessionRequest struct {
	Source string `json:"source"`
}

func (h *Handler) usageStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	switch req.Source {
	case domain.UsageSourceThresholdEvent, domain.UsageSourceAppForeground, domain.UsageSourceManualMark:
	default:
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown session source")
		return
	}

	result, err := h.usage.Start(r.Context(), claims.Subject, req.Source, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.IsDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// EndSessionRequest closes a usage session. The client does not supply a
// duration; elapsed time is measured server-side.
type EndSessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) usageEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "sessionId is required")
		return
	}

	result, err := h.usage.End(r.Context(), claims.Subject, req.SessionID, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SessionView exposes a usage session.
type SessionView struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	DurationSeconds int        `json:"durationSeconds"`
	Source          string     `json:"source"`
}

func toSessionView(s domain.UsageSession) SessionView {
	return SessionView{
		ID:              s.ID,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		DurationSeconds: s.DurationSeconds,
		Source:          s.Source,
	}
}

func (h *Handler) usageActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	session, err := h.usage.Active(r.Context(), claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": true, "session": toSessionView(*session)})
}

// UsageTodayResponse aggregates the local day's sessions.
type UsageTodayResponse struct {
	TotalMinutes int           `json:"totalMinutes"`
	TotalSeconds int           `json:"totalSeconds"`
	Sessions     []SessionView `json:"sessions"`
}

func (h *Handler) usageToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	summary, err := h.usage.Today(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := make([]SessionView, 0, len(summary.Sessions))
	for _, s := range summary.Sessions {
		views = append(views, toSessionView(s))
	}
	writeJSON(w, http.StatusOK, UsageTodayResponse{
		TotalMinutes: summary.TotalMinutes,
		TotalSeconds: summary.TotalSeconds,
		Sessions:     views,
	})
}

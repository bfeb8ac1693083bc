package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// AllowanceView exposes an allowance to clients.
type AllowanceView struct {
	ID               string     `json:"id"`
	Date             string     `json:"date"`
	EarnedMinutes    int        `json:"earnedMinutes"`
	BonusMinutes     int        `json:"bonusMinutes"`
	TotalMinutes     int        `json:"totalMinutes"`
	UsedMinutes      int        `json:"usedMinutes"`
	RealUsedMinutes  int        `json:"realUsedMinutes"`
	RemainingMinutes int        `json:"remainingMinutes"`
	IsUnlocked       bool       `json:"isUnlocked"`
	UnlockedAt       *time.Time `json:"unlockedAt,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func toAllowanceView(a domain.Allowance) AllowanceView {
	return AllowanceView{
		ID:               a.ID,
		Date:             a.Date,
		EarnedMinutes:    a.EarnedMinutes,
		BonusMinutes:     a.BonusMinutes,
		TotalMinutes:     a.TotalMinutes(),
		UsedMinutes:      a.UsedMinutes,
		RealUsedMinutes:  a.RealUsedMinutes,
		RemainingMinutes: a.RemainingMinutes(),
		IsUnlocked:       a.IsUnlocked,
		UnlockedAt:       a.UnlockedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (h *Handler) allowanceToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	a, err := h.allowances.Today(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllowanceView(*a))
}

func (h *Handler) allowanceHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	q := domain.AllowanceHistoryQuery{
		From:  r.URL.Query().Get("from"),
		To:    r.URL.Query().Get("to"),
		Limit: 30,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 90 {
				parsed = 90
			}
			q.Limit = parsed
		}
	}

	items, err := h.allowances.History(r.Context(), claims.Subject, q)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := make([]AllowanceView, 0, len(items))
	for _, a := range items {
		views = append(views, toAllowanceView(a))
	}
	writeJSON(w, http.StatusOK, map[string][]AllowanceView{"items": views})
}

// UpdateUsedRequest reports self-tracked usage for today.
type UpdateUsedRequest struct {
	UsedMinutes int `json:"usedMinutes"`
}

func (h *Handler) allowanceUsed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req UpdateUsedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	a, err := h.allowances.SetSelfReportedUsed(r.Context(), claims.Subject, req.UsedMinutes, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllowanceView(*a))
}

func (h *Handler) allowanceRecompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	a, err := h.allowances.RecomputeToday(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if _, err := h.streaks.Update(r.Context(), claims.Subject, claims.Timezone); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllowanceView(*a))
}

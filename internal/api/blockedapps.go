package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// BlockedAppsView exposes the config with any staged change.
type BlockedAppsView struct {
	ID            string             `json:"id"`
	SelectionData string             `json:"selectionData"`
	SelectionID   string             `json:"selectionId"`
	AppCount      int                `json:"appCount"`
	CategoryCount int                `json:"categoryCount"`
	IsActive      bool               `json:"isActive"`
	Pending       *PendingChangeView `json:"pendingChange,omitempty"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// PendingChangeView describes a staged restriction-loosening change.
type PendingChangeView struct {
	AppCount      *int      `json:"appCount,omitempty"`
	CategoryCount *int      `json:"categoryCount,omitempty"`
	IsActive      *bool     `json:"isActive,omitempty"`
	AppliesAt     time.Time `json:"appliesAt"`
}

func toBlockedAppsView(c domain.BlockedAppsConfig) BlockedAppsView {
	v := BlockedAppsView{
		ID:            c.ID,
		SelectionData: c.SelectionData,
		SelectionID:   c.SelectionID,
		AppCount:      c.AppCount,
		CategoryCount: c.CategoryCount,
		IsActive:      c.IsActive,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Pending != nil {
		v.Pending = &PendingChangeView{
			AppCount:      c.Pending.AppCount,
			CategoryCount: c.Pending.CategoryCount,
			IsActive:      c.Pending.IsActive,
			AppliesAt:     c.Pending.AppliesAt,
		}
	}
	return v
}

func (h *Handler) blockedAppsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getBlockedApps(w, r)
	case http.MethodPost:
		h.submitBlockedApps(w, r)
	case http.MethodDelete:
		h.deleteBlockedApps(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) getBlockedApps(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	cfg, err := h.blockedApps.Get(r.Context(), claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if cfg == nil {
		writeError(w, http.StatusNotFound, "not_found", "no blocked apps configured")
		return
	}
	writeJSON(w, http.StatusOK, toBlockedAppsView(*cfg))
}

// SubmitBlockedAppsRequest is a new or replacement app selection.
type SubmitBlockedAppsRequest struct {
	SelectionData string `json:"selectionData"`
	SelectionID   string `json:"selectionId"`
	AppCount      int    `json:"appCount"`
	CategoryCount int    `json:"categoryCount"`
}

// Validate ensures request correctness.
func (r SubmitBlockedAppsRequest) Validate() error {
	if r.SelectionData == "" {
		return errors.New("selectionData is required")
	}
	if r.AppCount < 0 || r.CategoryCount < 0 {
		return errors.New("counts must be >= 0")
	}
	return nil
}

func (h *Handler) submitBlockedApps(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req SubmitBlockedAppsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	cfg, err := h.blockedApps.Submit(r.Context(), claims.Subject, domain.SelectionChange{
		SelectionData: req.SelectionData,
		SelectionID:   req.SelectionID,
		AppCount:      req.AppCount,
		CategoryCount: req.CategoryCount,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if cfg.HasPending() {
		// Loosening staged behind the cooldown.
		status = http.StatusAccepted
	}
	writeJSON(w, status, toBlockedAppsView(*cfg))
}

func (h *Handler) deleteBlockedApps(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	if err := h.blockedApps.Delete(r.Context(), claims.Subject); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetEnforcementRequest flips the config's active flag.
type SetEnforcementRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) blockedAppsEnforcement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req SetEnforcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	cfg, err := h.blockedApps.SetEnforcement(r.Context(), claims.Subject, req.IsActive)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if cfg.HasPending() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, toBlockedAppsView(*cfg))
}

func (h *Handler) blockedAppsPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	cfg, err := h.blockedApps.CancelPending(r.Context(), claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBlockedAppsView(*cfg))
}

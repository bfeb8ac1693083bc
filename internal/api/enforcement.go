package api

import (
	"net/http"

	"github.com/Jaseempk/dashtok-server/internal/auth"
)

func (h *Handler) enforcementStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	status, err := h.enforcement.Status(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) enforcementUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	result, err := h.enforcement.RequestUnlock(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) enforcementLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	result, err := h.enforcement.RequestLock(r.Context(), claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) enforcementBypass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	result, err := h.enforcement.RequestEmergencyBypass(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Granted {
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, result)
}

package api

import (
	"net/http"
	"time"

	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// StreakView exposes streak state to clients.
type StreakView struct {
	CurrentStreak     int       `json:"currentStreak"`
	LongestStreak     int       `json:"longestStreak"`
	LastCompletedDate string    `json:"lastCompletedDate,omitempty"`
	Multiplier        float64   `json:"multiplier"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toStreakView(s domain.Streak) StreakView {
	return StreakView{
		CurrentStreak:     s.CurrentStreak,
		LongestStreak:     s.LongestStreak,
		LastCompletedDate: s.LastCompletedDate,
		Multiplier:        s.Multiplier,
		UpdatedAt:         s.UpdatedAt,
	}
}

// streakGet reads the streak, applying the opportunistic decay check so a
// lapsed streak reads as zero without waiting for the next recompute.
func (h *Handler) streakGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRead)
	if !ok {
		return
	}

	s, err := h.streaks.DecayCheck(r.Context(), claims.Subject, claims.Timezone)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if s == nil {
		s, err = h.streaks.Get(r.Context(), claims.Subject)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toStreakView(*s))
}

// Package usage records device-tracked screen-time sessions and feeds the
// authoritative realUsedMinutes counter.
package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// SessionStore persists usage sessions.
type SessionStore interface {
	Create(ctx context.Context, s domain.UsageSession) error
	FindByID(ctx context.Context, id string) (*domain.UsageSession, error)
	// FindActive returns the user's open session, nil when none.
	FindActive(ctx context.Context, userID string) (*domain.UsageSession, error)
	End(ctx context.Context, id string, endedAt time.Time, durationSeconds int) (*domain.UsageSession, error)
	ListForRange(ctx context.Context, userID string, from, to time.Time) ([]domain.UsageSession, error)
	SumForRange(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// AllowanceStore links sessions to the day's allowance and accumulates
// real usage.
type AllowanceStore interface {
	FindByUserAndDate(ctx context.Context, userID, date string) (*domain.Allowance, error)
	AddRealUsedMinutes(ctx context.Context, id string, minutes int) error
}

// Service implements session workflows. Durations are always computed from
// server clocks; client-supplied durations are ignored.
type Service struct {
	sessions   SessionStore
	allowances AllowanceStore
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(sessions SessionStore, allowances AllowanceStore) *Service {
	return &Service{sessions: sessions, allowances: allowances, now: time.Now}
}

// StartResult reports the open session after a start request.
type StartResult struct {
	SessionID   string    `json:"sessionId"`
	StartedAt   time.Time `json:"startedAt"`
	IsDuplicate bool      `json:"isDuplicate"`
}

// EndResult reports the closed session and the remaining budget.
type EndResult struct {
	SessionID        string `json:"sessionId"`
	DurationSeconds  int    `json:"durationSeconds"`
	DurationMinutes  int    `json:"durationMinutes"`
	RemainingMinutes int    `json:"remainingMinutes"`
	IsDuplicate      bool   `json:"isDuplicate"`
}

// TodaySummary aggregates the local day's sessions.
type TodaySummary struct {
	TotalMinutes int                   `json:"totalMinutes"`
	TotalSeconds int                   `json:"totalSeconds"`
	Sessions     []domain.UsageSession `json:"sessions"`
}

// Start opens a session, idempotently returning the already-open one when it
// exists. The session links to today's allowance when one is present.
func (s *Service) Start(ctx context.Context, userID, source string, loc *time.Location) (*StartResult, error) {
	if active, err := s.sessions.FindActive(ctx, userID); err != nil {
		return nil, err
	} else if active != nil {
		return &StartResult{SessionID: active.ID, StartedAt: active.StartedAt, IsDuplicate: true}, nil
	}

	allowanceID := ""
	today := domain.DateKey(s.now(), loc)
	if a, err := s.allowances.FindByUserAndDate(ctx, userID, today); err != nil {
		return nil, err
	} else if a != nil {
		allowanceID = a.ID
	}

	session := domain.UsageSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		AllowanceID: allowanceID,
		StartedAt:   s.now().UTC(),
		Source:      source,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &StartResult{SessionID: session.ID, StartedAt: session.StartedAt}, nil
}

// End closes a session, computing the duration server-side capped at 24
// hours and crediting whole minutes to the linked allowance. Ending an
// already-closed session is idempotent.
func (s *Service) End(ctx context.Context, userID, sessionID string, loc *time.Location) (*EndResult, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	if !session.Open() {
		remaining, err := s.remainingToday(ctx, userID, loc)
		if err != nil {
			return nil, err
		}
		return &EndResult{
			SessionID:        session.ID,
			DurationSeconds:  session.DurationSeconds,
			DurationMinutes:  session.DurationSeconds / 60,
			RemainingMinutes: remaining,
			IsDuplicate:      true,
		}, nil
	}

	now := s.now().UTC()
	duration := int(now.Sub(session.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if duration > domain.MaxSessionDurationSeconds {
		duration = domain.MaxSessionDurationSeconds
	}

	ended, err := s.sessions.End(ctx, session.ID, now, duration)
	if err != nil {
		return nil, err
	}

	minutes := duration / 60
	if session.AllowanceID != "" && minutes > 0 {
		if err := s.allowances.AddRealUsedMinutes(ctx, session.AllowanceID, minutes); err != nil {
			return nil, err
		}
	}

	remaining, err := s.remainingToday(ctx, userID, loc)
	if err != nil {
		return nil, err
	}
	return &EndResult{
		SessionID:        ended.ID,
		DurationSeconds:  duration,
		DurationMinutes:  minutes,
		RemainingMinutes: remaining,
	}, nil
}

// Active returns the user's open session, nil when none.
func (s *Service) Active(ctx context.Context, userID string) (*domain.UsageSession, error) {
	return s.sessions.FindActive(ctx, userID)
}

// Today summarizes the local day's sessions.
func (s *Service) Today(ctx context.Context, userID string, loc *time.Location) (*TodaySummary, error) {
	from, to, err := domain.DayBounds(domain.DateKey(s.now(), loc), loc)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListForRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	totalSeconds, err := s.sessions.SumForRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &TodaySummary{
		TotalMinutes: totalSeconds / 60,
		TotalSeconds: totalSeconds,
		Sessions:     sessions,
	}, nil
}

func (s *Service) remainingToday(ctx context.Context, userID string, loc *time.Location) (int, error) {
	a, err := s.allowances.FindByUserAndDate(ctx, userID, domain.DateKey(s.now(), loc))
	if err != nil {
		return 0, err
	}
	if a == nil {
		return 0, nil
	}
	return a.RemainingMinutes(), nil
}

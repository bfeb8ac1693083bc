// Package activity orchestrates activity submission: hard validation, trust
// scoring, persistence, and the asynchronous progress recompute.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/recalc"
	"github.com/Jaseempk/dashtok-server/internal/trust"
)

// Store captures activity persistence. Create and Delete also record the
// matching outbox events inside the same transaction.
type Store interface {
	Create(ctx context.Context, a domain.Activity) error
	FindByID(ctx context.Context, id string) (*domain.Activity, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Activity, error)
	ListByUser(ctx context.Context, userID string, filters domain.ActivityFilters, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error)
	Delete(ctx context.Context, a domain.Activity) error
	SumForRange(ctx context.Context, userID string, from, to time.Time) (domain.DayStats, error)
}

// ProgressTrigger fires the async allowance/streak recompute.
type ProgressTrigger interface {
	Fire(userID string, loc *time.Location) *recalc.Handle
}

// Service implements activity workflows.
type Service struct {
	store   Store
	trigger ProgressTrigger
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, trigger ProgressTrigger) *Service {
	return &Service{store: store, trigger: trigger, now: time.Now}
}

// CreateInput is the submission payload after transport-level validation.
type CreateInput struct {
	Type            domain.ActivityType
	DistanceMeters  float64
	DurationSeconds int
	Steps           int
	Calories        int
	StartedAt       time.Time
	EndedAt         time.Time
	Source          domain.ActivitySource
	ExternalID      string
	SourceBundleID  string
	SourceDevice    string
	RoutePointCount int
}

// Create validates, scores, and persists an activity, then fires the async
// recompute. The returned handle is awaitable; the HTTP layer ignores it.
// Trust penalties never block creation; suspect activity is persisted with
// reduced weight.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput, loc *time.Location) (*domain.Activity, *recalc.Handle, error) {
	now := s.now().UTC()
	candidate := trust.Candidate{
		Type:            in.Type,
		DistanceMeters:  in.DistanceMeters,
		DurationSeconds: in.DurationSeconds,
		Steps:           in.Steps,
		StartedAt:       in.StartedAt,
		EndedAt:         in.EndedAt,
		Source:          in.Source,
		RoutePointCount: in.RoutePointCount,
	}

	if err := trust.Validate(candidate, now); err != nil {
		return nil, nil, err
	}

	if in.ExternalID != "" {
		existing, err := s.store.FindByExternalID(ctx, in.ExternalID)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			if existing.UserID != userID {
				return nil, nil, domain.ErrDuplicateActivity
			}
			return existing, nil, domain.ErrDuplicateActivity
		}
	}

	score := trust.Evaluate(candidate, now)
	record := domain.Activity{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            in.Type,
		DistanceMeters:  in.DistanceMeters,
		DurationSeconds: in.DurationSeconds,
		Steps:           in.Steps,
		Calories:        in.Calories,
		StartedAt:       in.StartedAt.UTC(),
		EndedAt:         in.EndedAt.UTC(),
		Source:          in.Source,
		IsVerified:      trust.Verified(in.Source, score.Value),
		ExternalID:      in.ExternalID,
		TrustScore:      score.Value,
		TrustFlags:      score.Flags,
		SourceBundleID:  in.SourceBundleID,
		SourceDevice:    in.SourceDevice,
		RoutePointCount: in.RoutePointCount,
		CreatedAt:       now,
	}

	if err := s.store.Create(ctx, record); err != nil {
		return nil, nil, err
	}

	return &record, s.trigger.Fire(userID, loc), nil
}

// Get fetches an activity, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	a, err := s.store.FindByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrActivityNotFound
	}
	if a.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return a, nil
}

// List returns the user's activities, newest first.
func (s *Service) List(ctx context.Context, userID string, filters domain.ActivityFilters, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	return s.store.ListByUser(ctx, userID, filters, cursor, limit)
}

// Delete removes an activity and re-triggers the recompute for the day.
func (s *Service) Delete(ctx context.Context, userID, activityID string, loc *time.Location) (*recalc.Handle, error) {
	a, err := s.Get(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, *a); err != nil {
		return nil, err
	}
	return s.trigger.Fire(userID, loc), nil
}

// TodayStats aggregates the user's activity for the current local day.
func (s *Service) TodayStats(ctx context.Context, userID string, loc *time.Location) (domain.DayStats, error) {
	from, to, err := domain.DayBounds(domain.DateKey(s.now(), loc), loc)
	if err != nil {
		return domain.DayStats{}, err
	}
	return s.store.SumForRange(ctx, userID, from, to)
}

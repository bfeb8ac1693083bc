// Package goal manages activity targets and the initial-goal suggestion.
package goal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Store persists goals.
type Store interface {
	Create(ctx context.Context, g domain.Goal) error
	FindByID(ctx context.Context, id string) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Goal, error)
	Update(ctx context.Context, g domain.Goal) error
	Delete(ctx context.Context, id string) error
}

// Service implements goal workflows.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateInput is a new goal definition.
type CreateInput struct {
	Cadence        domain.GoalCadence
	ActivityType   domain.GoalActivityType
	TargetValue    float64
	TargetUnit     domain.GoalUnit
	RewardMinutes  int
	SuggestedValue float64
	UserAdjusted   bool
}

// UpdateInput carries the mutable goal fields; nil pointers are left
// unchanged.
type UpdateInput struct {
	TargetValue   *float64
	TargetUnit    *domain.GoalUnit
	RewardMinutes *int
	IsActive      *bool
}

// Create stores a new active goal.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Goal, error) {
	now := s.now().UTC()
	g := domain.Goal{
		ID:             uuid.NewString(),
		UserID:         userID,
		Cadence:        in.Cadence,
		ActivityType:   in.ActivityType,
		TargetValue:    in.TargetValue,
		TargetUnit:     in.TargetUnit,
		RewardMinutes:  in.RewardMinutes,
		IsActive:       true,
		SuggestedValue: in.SuggestedValue,
		UserAdjusted:   in.UserAdjusted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Get fetches a goal, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	g, err := s.store.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrGoalNotFound
	}
	if g.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return g, nil
}

// List returns the user's goals, optionally only active ones.
func (s *Service) List(ctx context.Context, userID string, activeOnly bool) ([]domain.Goal, error) {
	return s.store.ListByUser(ctx, userID, activeOnly)
}

// Update applies partial changes to an owned goal.
func (s *Service) Update(ctx context.Context, userID, goalID string, in UpdateInput) (*domain.Goal, error) {
	g, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if in.TargetValue != nil {
		g.TargetValue = *in.TargetValue
	}
	if in.TargetUnit != nil {
		g.TargetUnit = *in.TargetUnit
	}
	if in.RewardMinutes != nil {
		g.RewardMinutes = *in.RewardMinutes
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	g.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, *g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes an owned goal.
func (s *Service) Delete(ctx context.Context, userID, goalID string) error {
	g, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, g.ID)
}

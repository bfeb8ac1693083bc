package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

const goalColumns = `id, user_id, cadence, activity_type, target_value, target_unit, reward_minutes, is_active,
        suggested_value, user_adjusted, created_at, updated_at`

// GoalRepository persists activity goals.
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository constructs a GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Cadence, &g.ActivityType, &g.TargetValue, &g.TargetUnit, &g.RewardMinutes,
		&g.IsActive, &g.SuggestedValue, &g.UserAdjusted, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a goal.
func (r *GoalRepository) Create(ctx context.Context, g domain.Goal) error {
	const stmt = `INSERT INTO goals (id, user_id, cadence, activity_type, target_value, target_unit, reward_minutes, is_active,
        suggested_value, user_adjusted, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.pool.Exec(ctx, stmt,
		g.ID, g.UserID, g.Cadence, g.ActivityType, g.TargetValue, g.TargetUnit, g.RewardMinutes, g.IsActive,
		g.SuggestedValue, g.UserAdjusted, g.CreatedAt, g.UpdatedAt)
	return err
}

// FindByID retrieves a goal, nil when absent.
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*domain.Goal, error) {
	const query = `SELECT ` + goalColumns + ` FROM goals WHERE id=$1`

	g, err := scanGoal(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListByUser lists a user's goals, optionally only active ones.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id=$1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *g)
	}
	return results, rows.Err()
}

// ListActiveByUser lists only active goals.
func (r *GoalRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	return r.ListByUser(ctx, userID, true)
}

// Update overwrites the mutable goal fields.
func (r *GoalRepository) Update(ctx context.Context, g domain.Goal) error {
	const stmt = `UPDATE goals SET
            cadence=$2, activity_type=$3, target_value=$4, target_unit=$5, reward_minutes=$6, is_active=$7,
            user_adjusted=$8, updated_at=$9
        WHERE id=$1`

	tag, err := r.pool.Exec(ctx, stmt,
		g.ID, g.Cadence, g.ActivityType, g.TargetValue, g.TargetUnit, g.RewardMinutes, g.IsActive,
		g.UserAdjusted, g.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal.
func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

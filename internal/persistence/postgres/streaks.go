package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

const streakColumns = `id, user_id, current_streak, longest_streak, last_completed_date, multiplier, created_at, updated_at`

// StreakRepository persists the single streak record per user.
type StreakRepository struct {
	pool *pgxpool.Pool
}

// NewStreakRepository constructs a StreakRepository.
func NewStreakRepository(pool *pgxpool.Pool) *StreakRepository {
	return &StreakRepository{pool: pool}
}

func scanStreak(row pgx.Row) (*domain.Streak, error) {
	var s domain.Streak
	var lastCompleted *string
	err := row.Scan(&s.ID, &s.UserID, &s.CurrentStreak, &s.LongestStreak, &lastCompleted, &s.Multiplier, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastCompleted != nil {
		s.LastCompletedDate = *lastCompleted
	}
	return &s, nil
}

// FindByUser retrieves the user's streak, nil when absent.
func (r *StreakRepository) FindByUser(ctx context.Context, userID string) (*domain.Streak, error) {
	const query = `SELECT ` + streakColumns + ` FROM streaks WHERE user_id=$1`

	s, err := scanStreak(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert writes the streak fields for the user, creating the record on
// first touch.
func (r *StreakRepository) Upsert(ctx context.Context, userID string, upd domain.StreakUpdate) (*domain.Streak, error) {
	const stmt = `INSERT INTO streaks (id, user_id, current_streak, longest_streak, last_completed_date, multiplier, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6, now(), now())
        ON CONFLICT (user_id) DO UPDATE SET
            current_streak      = EXCLUDED.current_streak,
            longest_streak      = EXCLUDED.longest_streak,
            last_completed_date = EXCLUDED.last_completed_date,
            multiplier          = EXCLUDED.multiplier,
            updated_at          = now()
        RETURNING ` + streakColumns

	return scanStreak(r.pool.QueryRow(ctx, stmt,
		uuid.NewString(), userID, upd.CurrentStreak, upd.LongestStreak, nullIfEmpty(upd.LastCompletedDate), upd.Multiplier))
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

const bypassColumns = `id, user_id, date, bypass_count, total_minutes, created_at`

// BypassRepository persists the per-day emergency bypass counter.
type BypassRepository struct {
	pool *pgxpool.Pool
}

// NewBypassRepository constructs a BypassRepository.
func NewBypassRepository(pool *pgxpool.Pool) *BypassRepository {
	return &BypassRepository{pool: pool}
}

func scanBypass(row pgx.Row) (*domain.EmergencyBypass, error) {
	var b domain.EmergencyBypass
	err := row.Scan(&b.ID, &b.UserID, &b.Date, &b.BypassCount, &b.TotalMinutes, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByUserAndDate retrieves the counter for a date key, nil when absent.
func (r *BypassRepository) FindByUserAndDate(ctx context.Context, userID, date string) (*domain.EmergencyBypass, error) {
	const query = `SELECT ` + bypassColumns + ` FROM emergency_bypasses WHERE user_id=$1 AND date=$2`

	b, err := scanBypass(r.pool.QueryRow(ctx, query, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// IncrementIfBelow atomically increments the counter and adds minutes
// unless bypass_count has reached limit. The WHERE guard on the conflict
// update means racing requests see exactly limit grants in total; a capped
// request returns nil rather than an error.
func (r *BypassRepository) IncrementIfBelow(ctx context.Context, userID, date string, limit, minutes int) (*domain.EmergencyBypass, error) {
	const stmt = `INSERT INTO emergency_bypasses (id, user_id, date, bypass_count, total_minutes, created_at)
        VALUES ($1,$2,$3,1,$4, now())
        ON CONFLICT (user_id, date) DO UPDATE SET
            bypass_count  = emergency_bypasses.bypass_count + 1,
            total_minutes = emergency_bypasses.total_minutes + EXCLUDED.total_minutes
        WHERE emergency_bypasses.bypass_count < $5
        RETURNING ` + bypassColumns

	b, err := scanBypass(r.pool.QueryRow(ctx, stmt, uuid.NewString(), userID, date, minutes, limit))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

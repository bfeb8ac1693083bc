package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

const usageColumns = `id, user_id, allowance_id, started_at, ended_at, duration_seconds, source, created_at`

// UsageRepository persists screen-time usage sessions.
type UsageRepository struct {
	pool *pgxpool.Pool
}

// NewUsageRepository constructs a UsageRepository.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func scanSession(row pgx.Row) (*domain.UsageSession, error) {
	var s domain.UsageSession
	var allowanceID *string
	err := row.Scan(&s.ID, &s.UserID, &allowanceID, &s.StartedAt, &s.EndedAt, &s.DurationSeconds, &s.Source, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if allowanceID != nil {
		s.AllowanceID = *allowanceID
	}
	return &s, nil
}

// Create inserts an open session.
func (r *UsageRepository) Create(ctx context.Context, s domain.UsageSession) error {
	const stmt = `INSERT INTO usage_sessions (id, user_id, allowance_id, started_at, source, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := r.pool.Exec(ctx, stmt, s.ID, s.UserID, nullIfEmpty(s.AllowanceID), s.StartedAt, s.Source, s.CreatedAt)
	return err
}

// FindByID retrieves a session, nil when absent.
func (r *UsageRepository) FindByID(ctx context.Context, id string) (*domain.UsageSession, error) {
	const query = `SELECT ` + usageColumns + ` FROM usage_sessions WHERE id=$1`

	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindActive returns the user's open session, nil when none. At most one
// session may be open per user thanks to the partial unique index.
func (r *UsageRepository) FindActive(ctx context.Context, userID string) (*domain.UsageSession, error) {
	const query = `SELECT ` + usageColumns + ` FROM usage_sessions WHERE user_id=$1 AND ended_at IS NULL`

	s, err := scanSession(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// End closes an open session. Ending an already-closed session returns the
// stored row unchanged.
func (r *UsageRepository) End(ctx context.Context, id string, endedAt time.Time, durationSeconds int) (*domain.UsageSession, error) {
	const stmt = `UPDATE usage_sessions SET ended_at=$2, duration_seconds=$3
        WHERE id=$1 AND ended_at IS NULL
        RETURNING ` + usageColumns

	s, err := scanSession(r.pool.QueryRow(ctx, stmt, id, endedAt, durationSeconds))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListForRange lists sessions started inside [from, to), oldest first.
func (r *UsageRepository) ListForRange(ctx context.Context, userID string, from, to time.Time) ([]domain.UsageSession, error) {
	const query = `SELECT ` + usageColumns + ` FROM usage_sessions
        WHERE user_id=$1 AND started_at >= $2 AND started_at < $3
        ORDER BY started_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.UsageSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *s)
	}
	return results, rows.Err()
}

// SumForRange totals recorded seconds for sessions started inside [from, to).
func (r *UsageRepository) SumForRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(duration_seconds), 0) FROM usage_sessions
        WHERE user_id=$1 AND started_at >= $2 AND started_at < $3`

	var total int
	err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&total)
	return total, err
}

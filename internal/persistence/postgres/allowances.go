package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/events"
)

const allowanceColumns = `id, user_id, date, earned_minutes, used_minutes, bonus_minutes, is_unlocked,
        unlocked_at, real_used_minutes, enforcement_active, created_at, updated_at`

// AllowanceRepository persists per-day allowances.
type AllowanceRepository struct {
	pool *pgxpool.Pool
}

// NewAllowanceRepository constructs an AllowanceRepository.
func NewAllowanceRepository(pool *pgxpool.Pool) *AllowanceRepository {
	return &AllowanceRepository{pool: pool}
}

func scanAllowance(row pgx.Row) (*domain.Allowance, error) {
	var a domain.Allowance
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.EarnedMinutes, &a.UsedMinutes, &a.BonusMinutes, &a.IsUnlocked,
		&a.UnlockedAt, &a.RealUsedMinutes, &a.EnforcementActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByUserAndDate retrieves the allowance for a date key, nil when absent.
func (r *AllowanceRepository) FindByUserAndDate(ctx context.Context, userID, date string) (*domain.Allowance, error) {
	const query = `SELECT ` + allowanceColumns + ` FROM allowances WHERE user_id=$1 AND date=$2`

	a, err := scanAllowance(r.pool.QueryRow(ctx, query, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByID retrieves an allowance by primary key, nil when absent.
func (r *AllowanceRepository) FindByID(ctx context.Context, id string) (*domain.Allowance, error) {
	const query = `SELECT ` + allowanceColumns + ` FROM allowances WHERE id=$1`

	a, err := scanAllowance(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Upsert overwrites the recomputed fields for the (user, date) key and
// records allowance.recomputed in the same transaction. Usage counters are
// preserved and unlocked_at is set only on the first transition to unlocked.
func (r *AllowanceRepository) Upsert(ctx context.Context, userID, date string, rec domain.AllowanceRecompute) (*domain.Allowance, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO allowances (id, user_id, date, earned_minutes, bonus_minutes, is_unlocked, unlocked_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6, CASE WHEN $6 THEN $7 ELSE NULL END, $7, $7)
        ON CONFLICT (user_id, date) DO UPDATE SET
            earned_minutes = EXCLUDED.earned_minutes,
            bonus_minutes  = EXCLUDED.bonus_minutes,
            is_unlocked    = EXCLUDED.is_unlocked,
            unlocked_at    = CASE
                WHEN EXCLUDED.is_unlocked AND allowances.unlocked_at IS NULL THEN EXCLUDED.updated_at
                ELSE allowances.unlocked_at
            END,
            updated_at     = EXCLUDED.updated_at
        RETURNING ` + allowanceColumns

	row := tx.QueryRow(ctx, stmt, uuid.NewString(), userID, date, rec.EarnedMinutes, rec.BonusMinutes, rec.IsUnlocked, rec.Now.UTC())
	a, err := scanAllowance(row)
	if err != nil {
		return nil, err
	}

	dedupeKey := a.ID + ":allowance.recomputed:" + rec.Now.UTC().Format("20060102T150405.000000000")
	if err = insertOutbox(ctx, tx, "allowance", a.ID, userID, "allowance.recomputed", dedupeKey, events.AllowanceRecomputed{
		UserID:        userID,
		Date:          date,
		EarnedMinutes: a.EarnedMinutes,
		BonusMinutes:  a.BonusMinutes,
		IsUnlocked:    a.IsUnlocked,
		OccurredAt:    rec.Now.UTC(),
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// History lists allowances for an inclusive date-key range, newest first.
func (r *AllowanceRepository) History(ctx context.Context, userID string, q domain.AllowanceHistoryQuery) ([]domain.Allowance, error) {
	args := []interface{}{userID, q.Limit}
	query := `SELECT ` + allowanceColumns + ` FROM allowances WHERE user_id=$1`
	next := 3

	if q.From != "" {
		query += ` AND date >= $` + itoa(next)
		args = append(args, q.From)
		next++
	}
	if q.To != "" {
		query += ` AND date <= $` + itoa(next)
		args = append(args, q.To)
	}

	query += ` ORDER BY date DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Allowance
	for rows.Next() {
		a, err := scanAllowance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *a)
	}
	return results, rows.Err()
}

// UpdateUsedMinutes sets the self-reported usage counter.
func (r *AllowanceRepository) UpdateUsedMinutes(ctx context.Context, id string, usedMinutes int) (*domain.Allowance, error) {
	const stmt = `UPDATE allowances SET used_minutes=$2, updated_at=now() WHERE id=$1 RETURNING ` + allowanceColumns

	a, err := scanAllowance(r.pool.QueryRow(ctx, stmt, id, usedMinutes))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAllowanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AddRealUsedMinutes accumulates device-tracked usage onto the allowance.
func (r *AllowanceRepository) AddRealUsedMinutes(ctx context.Context, id string, minutes int) error {
	const stmt = `UPDATE allowances SET real_used_minutes = real_used_minutes + $2, updated_at=now() WHERE id=$1`

	tag, err := r.pool.Exec(ctx, stmt, id, minutes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAllowanceNotFound
	}
	return nil
}

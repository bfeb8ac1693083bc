package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

const blockedAppsColumns = `id, user_id, selection_data, selection_id, app_count, category_count, is_active,
        pending_selection_data, pending_app_count, pending_category_count, pending_is_active, pending_applies_at,
        created_at, updated_at`

// BlockedAppsRepository persists the single blocked-app config per user.
// Pending-change columns mirror the PendingChange fields; a row has a
// staged change exactly when pending_applies_at is non-null.
type BlockedAppsRepository struct {
	pool *pgxpool.Pool
}

// NewBlockedAppsRepository constructs a BlockedAppsRepository.
func NewBlockedAppsRepository(pool *pgxpool.Pool) *BlockedAppsRepository {
	return &BlockedAppsRepository{pool: pool}
}

func scanBlockedApps(row pgx.Row) (*domain.BlockedAppsConfig, error) {
	var c domain.BlockedAppsConfig
	var pSelection *string
	var pAppCount, pCategoryCount *int
	var pIsActive *bool
	var pAppliesAt *time.Time

	err := row.Scan(&c.ID, &c.UserID, &c.SelectionData, &c.SelectionID, &c.AppCount, &c.CategoryCount, &c.IsActive,
		&pSelection, &pAppCount, &pCategoryCount, &pIsActive, &pAppliesAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if pAppliesAt != nil {
		c.Pending = &domain.PendingChange{
			SelectionData: pSelection,
			AppCount:      pAppCount,
			CategoryCount: pCategoryCount,
			IsActive:      pIsActive,
			AppliesAt:     *pAppliesAt,
		}
	}
	return &c, nil
}

// FindByUserRaw retrieves the record without folding pending changes, nil
// when absent.
func (r *BlockedAppsRepository) FindByUserRaw(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error) {
	const query = `SELECT ` + blockedAppsColumns + ` FROM blocked_apps WHERE user_id=$1`

	c, err := scanBlockedApps(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new config row.
func (r *BlockedAppsRepository) Create(ctx context.Context, cfg domain.BlockedAppsConfig) (*domain.BlockedAppsConfig, error) {
	const stmt = `INSERT INTO blocked_apps (id, user_id, selection_data, selection_id, app_count, category_count, is_active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
        RETURNING ` + blockedAppsColumns

	return scanBlockedApps(r.pool.QueryRow(ctx, stmt,
		cfg.ID, cfg.UserID, cfg.SelectionData, cfg.SelectionID, cfg.AppCount, cfg.CategoryCount, cfg.IsActive))
}

// UpdateSelection overwrites the active selection immediately.
func (r *BlockedAppsRepository) UpdateSelection(ctx context.Context, id string, sel domain.SelectionChange) (*domain.BlockedAppsConfig, error) {
	const stmt = `UPDATE blocked_apps SET
            selection_data=$2, selection_id=$3, app_count=$4, category_count=$5, updated_at=now()
        WHERE id=$1
        RETURNING ` + blockedAppsColumns

	c, err := scanBlockedApps(r.pool.QueryRow(ctx, stmt, id, sel.SelectionData, sel.SelectionID, sel.AppCount, sel.CategoryCount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetActive flips the enforcement flag immediately.
func (r *BlockedAppsRepository) SetActive(ctx context.Context, id string, active bool) (*domain.BlockedAppsConfig, error) {
	const stmt = `UPDATE blocked_apps SET is_active=$2, updated_at=now() WHERE id=$1 RETURNING ` + blockedAppsColumns

	c, err := scanBlockedApps(r.pool.QueryRow(ctx, stmt, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetPending stages a restriction-loosening change. The guard on
// pending_applies_at makes two racing submissions resolve to one winner.
func (r *BlockedAppsRepository) SetPending(ctx context.Context, userID string, pending domain.PendingChange) (*domain.BlockedAppsConfig, error) {
	const stmt = `UPDATE blocked_apps SET
            pending_selection_data=$2,
            pending_app_count=$3,
            pending_category_count=$4,
            pending_is_active=$5,
            pending_applies_at=$6,
            updated_at=now()
        WHERE user_id=$1 AND pending_applies_at IS NULL
        RETURNING ` + blockedAppsColumns

	c, err := scanBlockedApps(r.pool.QueryRow(ctx, stmt, userID,
		pending.SelectionData, pending.AppCount, pending.CategoryCount, pending.IsActive, pending.AppliesAt.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPendingChangeExists
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ClearPending discards a staged change.
func (r *BlockedAppsRepository) ClearPending(ctx context.Context, userID string) (*domain.BlockedAppsConfig, error) {
	const stmt = `UPDATE blocked_apps SET
            pending_selection_data=NULL,
            pending_app_count=NULL,
            pending_category_count=NULL,
            pending_is_active=NULL,
            pending_applies_at=NULL,
            updated_at=now()
        WHERE user_id=$1 AND pending_applies_at IS NOT NULL
        RETURNING ` + blockedAppsColumns

	c, err := scanBlockedApps(r.pool.QueryRow(ctx, stmt, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoPendingChange
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyPending atomically folds a due pending change into the active fields
// and clears it. Returns nil when another reader already applied it or
// nothing is due; concurrent readers therefore converge on the same state.
func (r *BlockedAppsRepository) ApplyPending(ctx context.Context, userID string, now time.Time) (*domain.BlockedAppsConfig, error) {
	const stmt = `UPDATE blocked_apps SET
            selection_data  = COALESCE(pending_selection_data, selection_data),
            app_count       = COALESCE(pending_app_count, app_count),
            category_count  = COALESCE(pending_category_count, category_count),
            is_active       = COALESCE(pending_is_active, is_active),
            pending_selection_data=NULL,
            pending_app_count=NULL,
            pending_category_count=NULL,
            pending_is_active=NULL,
            pending_applies_at=NULL,
            updated_at=now()
        WHERE user_id=$1 AND pending_applies_at IS NOT NULL AND pending_applies_at <= $2
        RETURNING ` + blockedAppsColumns

	c, err := scanBlockedApps(r.pool.QueryRow(ctx, stmt, userID, now.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the user's config.
func (r *BlockedAppsRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocked_apps WHERE user_id=$1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}

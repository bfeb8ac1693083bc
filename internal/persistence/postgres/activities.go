// Package postgres provides pgx-backed repositories for the screen-time
// service. State changes that downstream services care about insert outbox
// rows in the same transaction.
package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaseempk/dashtok-server/internal/domain"
	"github.com/Jaseempk/dashtok-server/internal/events"
	"github.com/Jaseempk/dashtok-server/internal/observability"
)

const activityColumns = `id, user_id, activity_type, distance_meters, duration_seconds, steps, calories,
        started_at, ended_at, source, is_verified, external_id, trust_score, trust_flags,
        source_bundle_id, source_device, route_point_count, created_at`

// ActivityRepository persists activities and their outbox events.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	var externalID, bundleID, device *string
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.DistanceMeters, &a.DurationSeconds, &a.Steps, &a.Calories,
		&a.StartedAt, &a.EndedAt, &a.Source, &a.IsVerified, &externalID, &a.TrustScore, &a.TrustFlags,
		&bundleID, &device, &a.RoutePointCount, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if externalID != nil {
		a.ExternalID = *externalID
	}
	if bundleID != nil {
		a.SourceBundleID = *bundleID
	}
	if device != nil {
		a.SourceDevice = *device
	}
	return &a, nil
}

// Create persists the activity and records activity.created inside a single
// transaction.
func (r *ActivityRepository) Create(ctx context.Context, a domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (id, user_id, activity_type, distance_meters, duration_seconds, steps, calories,
        started_at, ended_at, source, is_verified, external_id, trust_score, trust_flags,
        source_bundle_id, source_device, route_point_count, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	_, err = tx.Exec(ctx, insertActivity,
		a.ID,
		a.UserID,
		a.Type,
		a.DistanceMeters,
		a.DurationSeconds,
		a.Steps,
		a.Calories,
		a.StartedAt,
		a.EndedAt,
		a.Source,
		a.IsVerified,
		nullIfEmpty(a.ExternalID),
		a.TrustScore,
		a.TrustFlags,
		nullIfEmpty(a.SourceBundleID),
		nullIfEmpty(a.SourceDevice),
		a.RoutePointCount,
		a.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, "activity", a.ID, a.UserID, "activity.created", dedupe(a.ID, "activity.created"), events.ActivityCreated{
		ActivityID:     a.ID,
		UserID:         a.UserID,
		ActivityType:   string(a.Type),
		DistanceMeters: a.DistanceMeters,
		StartedAt:      a.StartedAt,
		Source:         string(a.Source),
		TrustScore:     a.TrustScore,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(a.CreatedAt)
	return nil
}

// FindByID retrieves an activity, nil when absent.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE id=$1`

	a, err := scanActivity(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByExternalID checks the device health-store dedup key, nil when absent.
func (r *ActivityRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Activity, error) {
	if externalID == "" {
		return nil, nil
	}
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE external_id=$1`

	a, err := scanActivity(r.pool.QueryRow(ctx, query, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByUser returns activities newest first with keyset pagination.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, filters domain.ActivityFilters, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id=$1`
	next := 3

	if filters.Type != "" {
		query += ` AND activity_type=$` + itoa(next)
		args = append(args, filters.Type)
		next++
	}
	if !filters.From.IsZero() {
		query += ` AND started_at >= $` + itoa(next)
		args = append(args, filters.From)
		next++
	}
	if !filters.To.IsZero() {
		query += ` AND started_at < $` + itoa(next)
		args = append(args, filters.To)
		next++
	}
	if cursor != nil {
		query += ` AND (started_at, id) < ($` + itoa(next) + `, $` + itoa(next+1) + `)`
		args = append(args, cursor.StartedAt, cursor.ID)
	}

	query += ` ORDER BY started_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0, limit)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartedAt: last.StartedAt, ID: last.ID}
	}
	return results, nextCursor, nil
}

// ListForRange returns activities whose start falls inside [from, to).
// Recompute buckets a day's activity by its start instant.
func (r *ActivityRepository) ListForRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities
        WHERE user_id=$1 AND started_at >= $2 AND started_at < $3
        ORDER BY started_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *a)
	}
	return results, rows.Err()
}

// SumForRange aggregates distance, duration and count for [from, to).
func (r *ActivityRepository) SumForRange(ctx context.Context, userID string, from, to time.Time) (domain.DayStats, error) {
	const query = `SELECT COALESCE(SUM(distance_meters), 0), COALESCE(SUM(duration_seconds), 0), COUNT(*)
        FROM activities WHERE user_id=$1 AND started_at >= $2 AND started_at < $3`

	var stats domain.DayStats
	err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&stats.TotalDistanceMeters, &stats.TotalDurationSecs, &stats.ActivityCount)
	return stats, err
}

// Delete removes the activity and records activity.deleted transactionally.
func (r *ActivityRepository) Delete(ctx context.Context, a domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE id=$1`, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrActivityNotFound
		return err
	}

	if err = insertOutbox(ctx, tx, "activity", a.ID, a.UserID, "activity.deleted", dedupe(a.ID, "activity.deleted"), events.ActivityDeleted{
		ActivityID: a.ID,
		UserID:     a.UserID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

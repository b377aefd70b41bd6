package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/store-dashboard/internal/domain"
)

// ActivityRepository stores the session audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, record *domain.ActivityRecord) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ActivityRecord, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, record *domain.ActivityRecord) error {
	const query = `
        INSERT INTO session_activity (id, event_type, user_id, email, token_fingerprint, browser, os, platform, ip, message, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Type,
		nullableID(record.UserID),
		record.Email,
		record.TokenFingerprint,
		record.Browser,
		record.OS,
		record.Platform,
		record.IP,
		record.Message,
		record.OccurredAt,
	)
	return err
}

func (r *activityRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ActivityRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT id, event_type, COALESCE(user_id, 0), email, token_fingerprint, browser, os, platform, ip, message, occurred_at
        FROM session_activity WHERE user_id=$1 ORDER BY occurred_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityRecord
	for rows.Next() {
		var record domain.ActivityRecord
		if err := rows.Scan(
			&record.ID,
			&record.Type,
			&record.UserID,
			&record.Email,
			&record.TokenFingerprint,
			&record.Browser,
			&record.OS,
			&record.Platform,
			&record.IP,
			&record.Message,
			&record.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

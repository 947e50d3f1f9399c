package repository

import (
	"context"
	"time"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles the device registry and persisted
// notification fanout records.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// RegisterDevice upserts a push token for a user. A token re-registered by
// a different user moves to that user (device handover).
func (r *NotificationRepository) RegisterDevice(ctx context.Context, d *model.Device) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO devices (user_id, token, platform)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		 RETURNING id, created_at`,
		d.UserID, d.Token, d.Platform,
	).Scan(&d.ID, &d.CreatedAt)
}

// RemoveDevice deletes a push token owned by the user.
func (r *NotificationRepository) RemoveDevice(ctx context.Context, userID int, token string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM devices WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}

// InsertBatch persists a batch of notification records using UNNEST so one
// round trip covers the whole flush.
func (r *NotificationRepository) InsertBatch(ctx context.Context, batch []*model.Notification) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	instituteIDs := make([]int, 0, n)
	kinds := make([]string, 0, n)
	titles := make([]string, 0, n)
	bodies := make([]string, 0, n)
	refIDs := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	now := time.Now()
	for _, item := range batch {
		instituteIDs = append(instituteIDs, item.InstituteID)
		kinds = append(kinds, string(item.Kind))
		titles = append(titles, item.Title)
		bodies = append(bodies, item.Body)
		refIDs = append(refIDs, item.RefID)
		createdAts = append(createdAts, now)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (institute_id, kind, title, body, ref_id, created_at)
		 SELECT * FROM UNNEST($1::int[], $2::text[], $3::text[], $4::text[], $5::text[], $6::timestamptz[])`,
		instituteIDs, kinds, titles, bodies, refIDs, createdAts)
	return err
}

// ListByInstitute retrieves recent notifications newest-first.
func (r *NotificationRepository) ListByInstitute(ctx context.Context, instituteID, limit int) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, institute_id, kind, title, body, ref_id, created_at
		 FROM notifications WHERE institute_id = $1
		 ORDER BY created_at DESC LIMIT $2`, instituteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		var item model.Notification
		if err := rows.Scan(&item.ID, &item.InstituteID, &item.Kind, &item.Title,
			&item.Body, &item.RefID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

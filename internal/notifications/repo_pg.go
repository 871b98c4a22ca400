package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. Channel deliveries live in a JSONB
// column; reads and writes go through the full document.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a notification.
func (r *PGRepo) Create(ctx context.Context, n Notification) error {
	deliveries, err := json.Marshal(n.Deliveries)
	if err != nil {
		return fmt.Errorf("marshal deliveries: %w", err)
	}

	const query = `
INSERT INTO notifications (
    id, user_id, category, group_key, title, body, deliveries, read, read_at, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.DB.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Category,
		n.GroupKey,
		n.Title,
		n.Body,
		deliveries,
		n.Read,
		n.ReadAt,
		n.CreatedAt,
	)
	return err
}

// GetByID returns a notification by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Notification, error) {
	const query = `
SELECT id, user_id, category, group_key, title, body, deliveries, read, read_at, created_at
FROM notifications
WHERE id = $1
LIMIT 1`
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Notification{}, ErrNotFound
		}
		return Notification{}, err
	}
	return n, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, category, group_key, title, body, deliveries, read, read_at, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread returns the number of unread notifications for a user.
func (r *PGRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flags a notification as read.
func (r *PGRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE notifications SET read = TRUE, read_at = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDelivery sets one channel's delivery status inside the JSONB
// document.
func (r *PGRepo) UpdateDelivery(ctx context.Context, id string, channel Channel, status DeliveryStatus, errMsg string, at time.Time) error {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	found := false
	for i := range n.Deliveries {
		if n.Deliveries[i].Channel != channel {
			continue
		}
		n.Deliveries[i].Status = status
		n.Deliveries[i].Error = errMsg
		if status == DeliverySent {
			sentAt := at
			n.Deliveries[i].SentAt = &sentAt
		}
		found = true
		break
	}
	if !found {
		return ErrNotFound
	}

	deliveries, err := json.Marshal(n.Deliveries)
	if err != nil {
		return fmt.Errorf("marshal deliveries: %w", err)
	}
	const query = `UPDATE notifications SET deliveries = $2 WHERE id = $1`
	_, err = r.DB.ExecContext(ctx, query, id, deliveries)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (Notification, error) {
	var n Notification
	var deliveries []byte
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Category,
		&n.GroupKey,
		&n.Title,
		&n.Body,
		&deliveries,
		&n.Read,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return Notification{}, err
	}
	if err := json.Unmarshal(deliveries, &n.Deliveries); err != nil {
		return Notification{}, fmt.Errorf("unmarshal deliveries: %w", err)
	}
	return n, nil
}

var _ Repo = (*PGRepo)(nil)

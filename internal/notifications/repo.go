package notifications

import (
	"context"
	"time"
)

// Repo defines persistence operations for notifications.
type Repo interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	UpdateDelivery(ctx context.Context, id string, channel Channel, status DeliveryStatus, errMsg string, at time.Time) error
}

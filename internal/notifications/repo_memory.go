package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores notifications in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Notification
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Notification)}
}

// Create stores the notification.
func (r *MemoryRepo) Create(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.byID[n.ID] = n
	r.mu.Unlock()
	return nil
}

// GetByID returns a notification by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	all := make([]Notification, 0)
	for _, n := range r.byID {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Notification{}, nil
	}
	end := len(all)
	if offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *MemoryRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.byID {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flags a notification as read.
func (r *MemoryRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	n.ReadAt = &at
	r.byID[id] = n
	return nil
}

// UpdateDelivery sets one channel's delivery status.
func (r *MemoryRepo) UpdateDelivery(ctx context.Context, id string, channel Channel, status DeliveryStatus, errMsg string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
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
		r.byID[id] = n
		return nil
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)

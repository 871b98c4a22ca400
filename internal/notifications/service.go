package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"diagnostics-backend/internal/queue"
	"diagnostics-backend/internal/shared/telemetry"
)

// Service contains business logic for notifications.
type Service struct {
	Repo  Repo
	Queue queue.Client
}

// NewService constructs a Service.
func NewService(repo Repo, q queue.Client) *Service {
	return &Service{Repo: repo, Queue: q}
}

// CreateInput describes a notification to record and dispatch.
type CreateInput struct {
	UserID   string
	Category Category
	GroupKey string
	Title    string
	Body     string
	Channels []Channel
}

// Create records the notification and enqueues one dispatch per channel.
// The in_app channel needs no transport, so it is marked sent immediately.
func (s *Service) Create(ctx context.Context, input CreateInput) (Notification, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return Notification{}, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Title) == "" {
		return Notification{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(input.Channels) == 0 {
		input.Channels = []Channel{ChannelInApp}
	}
	for _, ch := range input.Channels {
		if !KnownChannel(ch) {
			return Notification{}, fmt.Errorf("%w: unknown channel %q", ErrInvalidInput, ch)
		}
	}

	now := time.Now().UTC()
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Category:  input.Category,
		GroupKey:  input.GroupKey,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: now,
	}
	for _, ch := range input.Channels {
		delivery := ChannelDelivery{Channel: ch, Status: DeliveryPending}
		if ch == ChannelInApp {
			delivery.Status = DeliverySent
			sentAt := now
			delivery.SentAt = &sentAt
		}
		n.Deliveries = append(n.Deliveries, delivery)
	}

	if err := s.Repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}

	for _, delivery := range n.Deliveries {
		if delivery.Status != DeliveryPending {
			continue
		}
		msg := queue.Message{
			Kind:           queue.KindNotificationDispatch,
			NotificationID: n.ID,
			Channel:        string(delivery.Channel),
			EnqueuedAt:     now.Format(time.RFC3339),
			Version:        1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			// Delivery stays pending; the operator can re-drive it. The
			// notification itself is already recorded.
			telemetry.Error("notifications.enqueue", map[string]any{
				"notification_id": n.ID,
				"channel":         delivery.Channel,
				"error":           err.Error(),
			})
		}
	}

	return n, nil
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	return s.Repo.CountUnread(ctx, userID)
}

// MarkRead flags a user's notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	if n.Read {
		return nil
	}
	return s.Repo.MarkRead(ctx, id, time.Now().UTC())
}

// MarkDelivery records a channel delivery attempt's outcome.
func (s *Service) MarkDelivery(ctx context.Context, id string, channel Channel, status DeliveryStatus, errMsg string) error {
	return s.Repo.UpdateDelivery(ctx, id, channel, status, errMsg, time.Now().UTC())
}

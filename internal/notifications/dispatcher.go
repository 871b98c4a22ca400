package notifications

import (
	"context"
	"fmt"

	"diagnostics-backend/internal/queue"
	"diagnostics-backend/internal/shared/metrics"
	"diagnostics-backend/internal/shared/telemetry"
)

// Sender delivers a notification over one external channel. The email/SMS
// providers plug in here; LogSender stands in when none is configured.
type Sender interface {
	Deliver(ctx context.Context, n Notification, channel Channel) error
}

// LogSender records deliveries in the log instead of calling a provider.
type LogSender struct{}

// Deliver logs the delivery and succeeds.
func (LogSender) Deliver(ctx context.Context, n Notification, channel Channel) error {
	telemetry.Info("notifications.deliver", map[string]any{
		"notification_id": n.ID,
		"channel":         channel,
		"user_id":         n.UserID,
	})
	return nil
}

// Dispatcher consumes dispatch messages and drives channel deliveries.
type Dispatcher struct {
	Svc    *Service
	Sender Sender
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(svc *Service, sender Sender) *Dispatcher {
	if sender == nil {
		sender = LogSender{}
	}
	return &Dispatcher{Svc: svc, Sender: sender}
}

// Handle processes one queue message, updating the channel's delivery status
// to sent or failed.
func (d *Dispatcher) Handle(ctx context.Context, msg queue.Message) error {
	if msg.Kind != queue.KindNotificationDispatch {
		return fmt.Errorf("unexpected message kind %q", msg.Kind)
	}
	if msg.NotificationID == "" {
		return fmt.Errorf("dispatch message missing notification id")
	}
	channel := Channel(msg.Channel)
	if !KnownChannel(channel) {
		return fmt.Errorf("dispatch message has unknown channel %q", msg.Channel)
	}

	n, err := d.Svc.Repo.GetByID(ctx, msg.NotificationID)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", msg.NotificationID, err)
	}

	if err := d.Sender.Deliver(ctx, n, channel); err != nil {
		metrics.IncNotificationFailed()
		if markErr := d.Svc.MarkDelivery(ctx, n.ID, channel, DeliveryFailed, err.Error()); markErr != nil {
			return fmt.Errorf("mark failed delivery: %w", markErr)
		}
		return fmt.Errorf("deliver %s over %s: %w", n.ID, channel, err)
	}

	metrics.IncNotificationSent()
	return d.Svc.MarkDelivery(ctx, n.ID, channel, DeliverySent, "")
}

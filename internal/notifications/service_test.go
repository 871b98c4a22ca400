package notifications

import (
	"context"
	"errors"
	"testing"

	"diagnostics-backend/internal/queue"
)

func newTestService(t *testing.T) (*Service, *queue.MemoryClient) {
	t.Helper()
	q := queue.NewMemoryClient(16)
	return NewService(NewMemoryRepo(), q), q
}

func TestCreateMarksInAppSentAndEnqueuesRest(t *testing.T) {
	svc, q := newTestService(t)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		Category: CategoryDiagnostic,
		Title:    "Emergency issue detected",
		Body:     "A technician has been alerted.",
		Channels: []Channel{ChannelInApp, ChannelEmail},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(n.Deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(n.Deliveries))
	}
	for _, d := range n.Deliveries {
		switch d.Channel {
		case ChannelInApp:
			if d.Status != DeliverySent || d.SentAt == nil {
				t.Fatalf("expected in_app sent immediately, got %+v", d)
			}
		case ChannelEmail:
			if d.Status != DeliveryPending {
				t.Fatalf("expected email pending, got %+v", d)
			}
		}
	}

	msg, err := q.Receive(context.Background())
	if err != nil {
		t.Fatalf("receive queue message: %v", err)
	}
	if msg.Kind != queue.KindNotificationDispatch {
		t.Fatalf("unexpected message kind %s", msg.Kind)
	}
	if msg.NotificationID != n.ID || msg.Channel != string(ChannelEmail) {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestCreateDefaultsToInApp(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID: "user-1",
		Title:  "Welcome",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(n.Deliveries) != 1 || n.Deliveries[0].Channel != ChannelInApp {
		t.Fatalf("expected single in_app delivery, got %+v", n.Deliveries)
	}
}

func TestCreateRejectsUnknownChannel(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		Title:    "Hello",
		Channels: []Channel{"pigeon"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarkReadOwnershipAndIdempotence(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), CreateInput{UserID: "user-1", Title: "Hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.MarkRead(context.Background(), "user-2", n.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.MarkRead(context.Background(), "user-1", n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := svc.MarkRead(context.Background(), "user-1", n.ID); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestUnreadCountCountsOnlyUnread(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), CreateInput{UserID: "user-1", Title: "Hello"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), CreateInput{UserID: "user-2", Title: "Hello"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}
}

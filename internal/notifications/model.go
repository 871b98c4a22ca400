package notifications

import "time"

// Channel is a delivery transport.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// DeliveryStatus tracks one channel's delivery progress.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Category groups notifications for the dashboard's filter tabs.
type Category string

const (
	CategoryDiagnostic Category = "diagnostic"
	CategoryLead       Category = "lead"
	CategorySystem     Category = "system"
)

// ChannelDelivery is the per-channel delivery record of a notification.
type ChannelDelivery struct {
	Channel Channel        `json:"channel"`
	Status  DeliveryStatus `json:"status"`
	SentAt  *time.Time     `json:"sentAt,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Notification is a message addressed to one user, delivered over one or
// more channels. GroupKey collapses related notifications in the UI.
type Notification struct {
	ID         string
	UserID     string
	Category   Category
	GroupKey   string
	Title      string
	Body       string
	Deliveries []ChannelDelivery
	Read       bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}

// KnownChannel reports whether the channel is one the platform delivers on.
func KnownChannel(channel Channel) bool {
	switch channel {
	case ChannelInApp, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

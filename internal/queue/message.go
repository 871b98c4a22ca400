package queue

import "encoding/json"

// Kind labels the payload carried by a queue message.
type Kind string

const (
	// KindNotificationDispatch asks the worker to deliver one notification
	// over one channel.
	KindNotificationDispatch Kind = "notification.dispatch"
)

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Kind           Kind   `json:"kind"`
	NotificationID string `json:"notificationId,omitempty"`
	Channel        string `json:"channel,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
	EnqueuedAt     string `json:"enqueuedAt"`
	Version        int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

package queue

import "testing"

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Kind:           KindNotificationDispatch,
		NotificationID: "n-1",
		Channel:        "email",
		RequestID:      "req-1",
		EnqueuedAt:     "2026-08-30T12:00:00Z",
		Version:        1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	decoded, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if decoded != msg {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, msg)
	}
}

func TestDecodeMessageRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeMessage([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

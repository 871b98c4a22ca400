package queue

import "context"

// MemoryClient is an in-process queue used when SQS is not configured. The
// worker drains it via Receive; sends never block while capacity remains.
type MemoryClient struct {
	ch chan Message
}

// NewMemoryClient constructs a MemoryClient with the given buffer size.
func NewMemoryClient(capacity int) *MemoryClient {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryClient{ch: make(chan Message, capacity)}
}

// Send enqueues the message.
func (m *MemoryClient) Send(ctx context.Context, msg Message) error {
	select {
	case m.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available or the context ends.
func (m *MemoryClient) Receive(ctx context.Context) (Message, error) {
	select {
	case msg := <-m.ch:
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

var _ Client = (*MemoryClient)(nil)

package messaging

import (
	"context"
	"time"
)

// MemoryClient is an in-process Client backed by a buffered channel. Failed
// messages are redelivered once after the others.
type MemoryClient struct {
	topic string
	ch    chan Message
}

// NewMemoryClient returns a MemoryClient holding up to buffer messages.
func NewMemoryClient(topic string, buffer int) *MemoryClient {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryClient{topic: topic, ch: make(chan Message, buffer)}
}

// Publish enqueues msg, blocking while the buffer is full.
func (m *MemoryClient) Publish(ctx context.Context, msg Message) error {
	msg.Topic = m.topic
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}
	select {
	case m.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers messages to handler until ctx is done.
func (m *MemoryClient) Consume(ctx context.Context, handler Handler) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-m.ch:
			msg.Offset = offset
			offset++
			if err := handler(ctx, msg); err != nil && msg.Headers["redelivered"] == "" {
				retry := msg
				retry.Headers = make(map[string]string, len(msg.Headers)+1)
				for k, v := range msg.Headers {
					retry.Headers[k] = v
				}
				retry.Headers["redelivered"] = "true"
				select {
				case m.ch <- retry:
				default:
				}
			}
		}
	}
}

// Topic implements Client.
func (m *MemoryClient) Topic() string { return m.topic }

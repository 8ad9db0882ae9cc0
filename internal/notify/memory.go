package notify

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryPublisher records published messages. Used by tests and as the
// default backend when no broker is configured.
type InMemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

// Messages returns a snapshot of everything published so far.
func (p *InMemoryPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

// LogPublisher logs delivery requests instead of queueing them. Used when
// the broker is intentionally absent (local development).
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, msg Message) error {
	p.logger.InfoContext(ctx, "notification publish (no broker configured)",
		"channel", msg.Channel,
		"correlation_id", msg.CorrelationID,
	)
	return nil
}

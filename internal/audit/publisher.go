package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"bmmhub/pkg/requestcontext"
)

// Publisher captures audit events onto a buffered channel consumed by the
// Worker. Emitting never blocks the request path: if the buffer is full the
// event is dropped with an error log, since an audit backlog must not stall
// administrative operations.
type Publisher struct {
	ch     chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{ch: make(chan Event, buffer), logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx).UTC()
	}
	select {
	case p.ch <- event:
		return nil
	default:
		p.logger.ErrorContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"record_id", event.RecordID,
		)
		return nil
	}
}

// Inbox exposes the consumer side for the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.ch
}

// Worker consumes audit events from the publisher and persists them to the
// outbox store.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}

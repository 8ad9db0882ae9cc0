package audit

import (
	"context"

	"github.com/google/uuid"
)

// Store is the audit outbox. Append is called by the worker; the Kafka
// forwarder drains unpublished events and marks them off.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

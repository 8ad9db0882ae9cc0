package ticket

import (
	"context"

	"github.com/google/uuid"

	dErrors "bmmhub/pkg/domain-errors"
)

// Queue decouples the transactional stage change from ticket dispatch: the
// member service emits the confirmed record's ID here after its store write
// commits, and the Dispatcher consumes it asynchronously.
type Queue struct {
	ch chan uuid.UUID
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan uuid.UUID, size)}
}

// AttendanceConfirmed enqueues a record for dispatch. A full queue surfaces
// as an error rather than blocking the request path; the ticket is already
// committed, so operators can re-trigger dispatch.
func (q *Queue) AttendanceConfirmed(ctx context.Context, recordID uuid.UUID) error {
	select {
	case q.ch <- recordID:
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "dispatch enqueue cancelled")
	default:
		return dErrors.New(dErrors.CodeInternal, "dispatch queue full")
	}
}

// Inbox exposes the consumer side for the Dispatcher.
func (q *Queue) Inbox() <-chan uuid.UUID {
	return q.ch
}

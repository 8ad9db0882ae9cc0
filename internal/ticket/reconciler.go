package ticket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"bmmhub/internal/member"
	"bmmhub/internal/notify"
	"bmmhub/internal/ticket/metrics"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/platform/sentinel"
)

// Reconciler applies delivery outcomes reported by the external worker.
// Successful deliveries need no action (the dispatcher already marked the
// ticket sent); failures move the ticket to the channel's *_FAILED status.
type Reconciler struct {
	store   member.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewReconciler(store member.Store, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{store: store, logger: logger, metrics: m}
}

// HandleStatus processes one delivery-status report. Unknown correlation IDs
// are dropped with a warning so stale reports cannot wedge the queue.
func (r *Reconciler) HandleStatus(ctx context.Context, status notify.DeliveryStatus) error {
	token, err := uuid.Parse(status.CorrelationID)
	if err != nil {
		r.logger.WarnContext(ctx, "delivery status with bad correlation id",
			"correlation_id", status.CorrelationID)
		return nil
	}

	if status.Delivered {
		return nil
	}

	for attempt := 0; attempt < updateAttempts; attempt++ {
		record, err := r.store.FindByTicketToken(ctx, token)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				r.logger.WarnContext(ctx, "delivery status for unknown ticket", "ticket_token", token)
				return nil
			}
			return err
		}

		failed := status.Channel.FailedStatus()
		if record.Ticket.Status == failed {
			return nil
		}
		record.Ticket.Status = failed
		if err := r.store.Update(ctx, record); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return err
		}
		r.metrics.DeliveryFailures.WithLabelValues(string(status.Channel)).Inc()
		r.logger.InfoContext(ctx, "ticket delivery failure recorded",
			"record_id", record.ID,
			"channel", status.Channel,
			"detail", status.Detail,
		)
		return nil
	}
	return dErrors.New(dErrors.CodeConcurrentModification, "delivery status update kept losing version races")
}

package ticket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bmmhub/internal/member"
	"bmmhub/internal/notify"
	"bmmhub/internal/ticket/metrics"
	"bmmhub/pkg/domain"
	"bmmhub/pkg/platform/sentinel"
	"bmmhub/pkg/requestcontext"
)

// updateAttempts bounds the optimistic-retry loop when a dispatch status
// write races a concurrent record mutation.
const updateAttempts = 3

// Dispatcher consumes confirmed-attendance events and publishes ticket
// delivery requests. Failures are logged and skipped: dispatch is
// best-effort and must never affect the already-committed stage change.
type Dispatcher struct {
	store     member.Store
	publisher notify.Publisher
	inbox     <-chan uuid.UUID
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewDispatcher(store member.Store, publisher notify.Publisher, inbox <-chan uuid.UUID, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		inbox:     inbox,
		logger:    logger,
		metrics:   m,
	}
}

// Run processes the inbox until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case recordID := <-d.inbox:
			if err := d.Dispatch(ctx, recordID); err != nil {
				d.logger.ErrorContext(ctx, "ticket dispatch failed",
					"record_id", recordID,
					"error", err,
				)
			}
		}
	}
}

// Dispatch publishes the delivery request for one record and optimistically
// marks the ticket sent. Records whose ticket already left the PENDING
// status are skipped, so replayed events cannot double-send.
func (d *Dispatcher) Dispatch(ctx context.Context, recordID uuid.UUID) error {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		record, err := d.store.FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		if record.Ticket.Token == nil {
			d.logger.WarnContext(ctx, "dispatch requested for record without ticket", "record_id", recordID)
			return nil
		}
		if record.Ticket.Status != domain.TicketPending {
			// Already dispatched or resolved.
			return nil
		}

		channel, recipient, ok := ChooseChannel(record)
		if !ok {
			record.Ticket.Status = domain.TicketNoContactMethod
			if err := d.store.Update(ctx, record); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					continue
				}
				return err
			}
			d.metrics.NoContactMethod.Inc()
			d.logger.InfoContext(ctx, "no contact method for ticket", "record_id", recordID)
			return nil
		}

		msg := notify.Message{
			Recipient:     recipient,
			Channel:       channel,
			CorrelationID: record.Ticket.Token.String(),
			TemplateVariables: map[string]string{
				"membership_number": record.MembershipNumber,
				"ticket_token":      record.Ticket.Token.String(),
			},
		}
		if record.Assignment != nil {
			msg.TemplateVariables["venue"] = record.Assignment.VenueName
			msg.TemplateVariables["starts_at"] = record.Assignment.StartsAt.Format(time.RFC3339)
		}

		if err := d.publisher.Publish(ctx, msg); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		record.Ticket.Status = channel.SentStatus()
		record.Ticket.Channel = channel
		record.Ticket.SentAt = &now
		if err := d.store.Update(ctx, record); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return err
		}
		d.metrics.Dispatched.WithLabelValues(string(channel)).Inc()
		return nil
	}
	return errors.New("dispatch status update kept losing version races")
}

// Package ticket owns the check-in credential lifecycle: issuing the token
// when attendance is confirmed, dispatching it through the notification
// queue, and reconciling delivery outcomes reported by the external worker.
package ticket

import (
	"time"

	"github.com/google/uuid"

	"bmmhub/internal/member"
	"bmmhub/pkg/domain"
)

// Issue generates the record's ticket token. Idempotent: once a token
// exists it is returned unchanged, so a repeated attendance confirmation can
// never mint a second credential.
func Issue(record *member.Record, now time.Time) uuid.UUID {
	if record.Ticket.Token != nil {
		return *record.Ticket.Token
	}
	token := uuid.New()
	record.Ticket.Token = &token
	record.Ticket.Status = domain.TicketPending
	record.Ticket.IssuedAt = &now
	return token
}

// ChooseChannel picks the delivery channel for a record: email when the
// member has a real (non-placeholder) address, otherwise SMS when a mobile
// number exists. ok is false when no contact method is available.
func ChooseChannel(record *member.Record) (channel domain.Channel, recipient string, ok bool) {
	if record.HasRealEmail && record.Email != "" {
		return domain.ChannelEmail, record.Email, true
	}
	if record.Mobile != "" {
		return domain.ChannelSMS, record.Mobile, true
	}
	return "", "", false
}

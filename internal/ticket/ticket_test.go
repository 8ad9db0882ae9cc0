package ticket

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmmhub/internal/member"
	"bmmhub/internal/notify"
	"bmmhub/internal/ticket/metrics"
	"bmmhub/pkg/domain"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func confirmedRecord(t *testing.T, store *member.InMemoryStore) *member.Record {
	t.Helper()
	record := member.NewRecord("bmm-2026", uuid.NewString()[:8], domain.RegionSouthern, testNow)
	record.Email = "member@union.example"
	record.HasRealEmail = true
	record.Stage = domain.StageAttendanceConfirmed
	record.Assignment = &member.Assignment{
		VenueName: "Dunedin Town Hall",
		StartsAt:  testNow.AddDate(0, 1, 0),
		Region:    domain.RegionSouthern,
	}
	Issue(record, testNow)
	require.NoError(t, store.Create(context.Background(), record))
	return record
}

func TestIssueIsIdempotent(t *testing.T) {
	record := member.NewRecord("bmm-2026", "12345678", domain.RegionSouthern, testNow)

	first := Issue(record, testNow)
	assert.Equal(t, domain.TicketPending, record.Ticket.Status)
	require.NotNil(t, record.Ticket.IssuedAt)
	assert.Equal(t, testNow, *record.Ticket.IssuedAt)

	second := Issue(record, testNow.Add(time.Hour))
	assert.Equal(t, first, second)
	assert.Equal(t, testNow, *record.Ticket.IssuedAt, "reissuing must not move the issue time")
}

func TestChooseChannel(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		hasRealEmail bool
		mobile       string
		wantChannel  domain.Channel
		wantOK       bool
	}{
		{"real email wins", "m@union.example", true, "021555123", domain.ChannelEmail, true},
		{"placeholder email falls back to sms", "gen-1@placeholder.local", false, "021555123", domain.ChannelSMS, true},
		{"sms only", "", false, "021555123", domain.ChannelSMS, true},
		{"no contact method", "gen-1@placeholder.local", false, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := member.NewRecord("bmm-2026", "12345678", domain.RegionSouthern, testNow)
			record.Email = tt.email
			record.HasRealEmail = tt.hasRealEmail
			record.Mobile = tt.mobile

			channel, recipient, ok := ChooseChannel(record)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantChannel, channel)
			if tt.wantOK {
				assert.NotEmpty(t, recipient)
			}
		})
	}
}

func TestDispatchPublishesAndMarksSent(t *testing.T) {
	store := member.NewInMemoryStore()
	publisher := notify.NewInMemoryPublisher()
	d := NewDispatcher(store, publisher, nil, discardLogger(), metrics.New(prometheus.NewRegistry()))

	record := confirmedRecord(t, store)
	require.NoError(t, d.Dispatch(context.Background(), record.ID))

	msgs := publisher.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.ChannelEmail, msgs[0].Channel)
	assert.Equal(t, "member@union.example", msgs[0].Recipient)
	assert.Equal(t, record.Ticket.Token.String(), msgs[0].CorrelationID)
	assert.Equal(t, record.Ticket.Token.String(), msgs[0].TemplateVariables["ticket_token"])
	assert.Equal(t, "Dunedin Town Hall", msgs[0].TemplateVariables["venue"])

	got, err := store.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketEmailSent, got.Ticket.Status)
	assert.Equal(t, domain.ChannelEmail, got.Ticket.Channel)
	require.NotNil(t, got.Ticket.SentAt)

	// A replayed event finds the ticket already sent and publishes nothing.
	require.NoError(t, d.Dispatch(context.Background(), record.ID))
	assert.Len(t, publisher.Messages(), 1)
}

func TestDispatchNoContactMethod(t *testing.T) {
	store := member.NewInMemoryStore()
	publisher := notify.NewInMemoryPublisher()
	d := NewDispatcher(store, publisher, nil, discardLogger(), metrics.New(prometheus.NewRegistry()))

	record := confirmedRecord(t, store)
	record.Email = ""
	record.HasRealEmail = false
	record.Mobile = ""
	require.NoError(t, store.Update(context.Background(), record))

	require.NoError(t, d.Dispatch(context.Background(), record.ID))
	assert.Empty(t, publisher.Messages())

	got, err := store.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketNoContactMethod, got.Ticket.Status)
}

func TestDispatchSkipsRecordWithoutTicket(t *testing.T) {
	store := member.NewInMemoryStore()
	publisher := notify.NewInMemoryPublisher()
	d := NewDispatcher(store, publisher, nil, discardLogger(), metrics.New(prometheus.NewRegistry()))

	record := member.NewRecord("bmm-2026", "87654321", domain.RegionSouthern, testNow)
	require.NoError(t, store.Create(context.Background(), record))

	require.NoError(t, d.Dispatch(context.Background(), record.ID))
	assert.Empty(t, publisher.Messages())
}

func TestReconcilerRecordsDeliveryFailure(t *testing.T) {
	store := member.NewInMemoryStore()
	publisher := notify.NewInMemoryPublisher()
	d := NewDispatcher(store, publisher, nil, discardLogger(), metrics.New(prometheus.NewRegistry()))
	r := NewReconciler(store, discardLogger(), metrics.New(prometheus.NewRegistry()))

	record := confirmedRecord(t, store)
	require.NoError(t, d.Dispatch(context.Background(), record.ID))

	require.NoError(t, r.HandleStatus(context.Background(), notify.DeliveryStatus{
		CorrelationID: record.Ticket.Token.String(),
		Channel:       domain.ChannelEmail,
		Delivered:     false,
		Detail:        "mailbox unavailable",
	}))

	got, err := store.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketEmailFailed, got.Ticket.Status)
}

func TestReconcilerIgnoresSuccessAndUnknowns(t *testing.T) {
	store := member.NewInMemoryStore()
	r := NewReconciler(store, discardLogger(), metrics.New(prometheus.NewRegistry()))

	// Success needs no action.
	require.NoError(t, r.HandleStatus(context.Background(), notify.DeliveryStatus{
		CorrelationID: uuid.NewString(),
		Channel:       domain.ChannelEmail,
		Delivered:     true,
	}))

	// Unknown ticket tokens and malformed correlation IDs are dropped.
	require.NoError(t, r.HandleStatus(context.Background(), notify.DeliveryStatus{
		CorrelationID: uuid.NewString(),
		Channel:       domain.ChannelSMS,
		Delivered:     false,
	}))
	require.NoError(t, r.HandleStatus(context.Background(), notify.DeliveryStatus{
		CorrelationID: "not-a-uuid",
		Channel:       domain.ChannelSMS,
		Delivered:     false,
	}))
}

func TestQueueEnqueueAndFull(t *testing.T) {
	q := NewQueue(1)

	require.NoError(t, q.AttendanceConfirmed(context.Background(), uuid.New()))
	err := q.AttendanceConfirmed(context.Background(), uuid.New())
	require.Error(t, err, "full queue must fail fast, not block the request")

	select {
	case <-q.Inbox():
	default:
		t.Fatal("expected a queued record id")
	}
}

package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmmhub/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherFillsIdentityAndTimestamp(t *testing.T) {
	p := NewPublisher(4, discardLogger())

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	require.NoError(t, p.Emit(ctx, Event{
		Actor:  "ops@union",
		Action: ActionForceStage,
	}))

	select {
	case event := <-p.Inbox():
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, now, event.Timestamp)
		assert.Equal(t, "ops@union", event.Actor)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestPublisherDropsWhenBufferFull(t *testing.T) {
	p := NewPublisher(1, discardLogger())

	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionManualAssign}))
	// The second emit finds the buffer full; it must not block or error.
	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionManualAssign}))
	assert.Len(t, p.Inbox(), 1)
}

func TestWorkerPersistsToOutbox(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(4, discardLogger())
	worker := NewWorker(store, p.Inbox(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	require.NoError(t, p.Emit(ctx, Event{Action: ActionBulkAssign, EventID: "bmm-2026"}))

	require.Eventually(t, func() bool {
		return len(store.Events()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, ActionBulkAssign, store.Events()[0].Action)

	cancel()
	<-done
}

func TestOutboxPublishCursor(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first := Event{ID: uuid.New(), Timestamp: time.Now(), Action: ActionAutoAssign}
	second := Event{ID: uuid.New(), Timestamp: time.Now(), Action: ActionManualAssign}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	pending, err := store.ListUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, store.MarkPublished(ctx, []uuid.UUID{first.ID}))

	pending, err = store.ListUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	require.NoError(t, store.Append(ctx, Event{ID: uuid.New(), Timestamp: time.Now(), Action: ActionForceStage}))
	limited, err := store.ListUnpublished(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// forwardBatch bounds how many outbox rows one poll drains.
const forwardBatch = 100

// kafkaPayload is the JSON structure published to the audit topic.
type kafkaPayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	EventID   string `json:"event_id"`
	RecordID  string `json:"record_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Forwarder drains the outbox to Kafka. Events stay in the outbox until the
// produce succeeds, so a broker outage delays but never loses audit data.
type Forwarder struct {
	store    Store
	client   *kgo.Client
	interval time.Duration
	logger   *slog.Logger
}

// NewForwarder builds a forwarder over an existing franz-go client. The
// client should carry kgo.DefaultProduceTopic for the audit topic.
func NewForwarder(store Store, client *kgo.Client, interval time.Duration, logger *slog.Logger) *Forwarder {
	return &Forwarder{store: store, client: client, interval: interval, logger: logger}
}

// NewKafkaClient dials the brokers for the audit topic.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return client, nil
}

// Run polls the outbox until the context is cancelled.
func (f *Forwarder) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.flush(ctx); err != nil {
				f.logger.ErrorContext(ctx, "audit outbox flush failed", "error", err)
			}
		}
	}
}

func (f *Forwarder) flush(ctx context.Context) error {
	events, err := f.store.ListUnpublished(ctx, forwardBatch)
	if err != nil {
		return fmt.Errorf("list outbox: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(events))
	published := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		body, err := json.Marshal(kafkaPayload{
			ID:        e.ID.String(),
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Actor:     e.Actor,
			Action:    string(e.Action),
			EventID:   e.EventID,
			RecordID:  e.RecordID,
			Detail:    e.Detail,
		})
		if err != nil {
			return fmt.Errorf("marshal audit event %s: %w", e.ID, err)
		}
		records = append(records, &kgo.Record{Key: []byte(e.EventID), Value: body})
		published = append(published, e.ID)
	}

	if err := f.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit events: %w", err)
	}
	return f.store.MarkPublished(ctx, published)
}

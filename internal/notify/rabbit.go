package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitClient publishes delivery requests and consumes delivery statuses
// over RabbitMQ. Queues are declared durable and messages persistent so
// requests survive broker restarts.
type RabbitClient struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	notifyQueue string
	statusQueue string
	logger      *slog.Logger
}

// NewRabbitClient dials the broker and declares both queues.
func NewRabbitClient(url, notifyQueue, statusQueue string, logger *slog.Logger) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, queue := range []string{notifyQueue, statusQueue} {
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	logger.Info("rabbitmq initialized", "notify_queue", notifyQueue, "status_queue", statusQueue)

	return &RabbitClient{
		conn:        conn,
		channel:     ch,
		notifyQueue: notifyQueue,
		statusQueue: statusQueue,
		logger:      logger,
	}, nil
}

// Publish enqueues one delivery request on the notification queue.
func (c *RabbitClient) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		"",            // default exchange
		c.notifyQueue, // routing key = queue name
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// ConsumeStatuses feeds delivery-status reports to the handler. Messages the
// handler rejects are requeued; malformed payloads are dropped after logging
// so they cannot wedge the queue.
func (c *RabbitClient) ConsumeStatuses(ctx context.Context, handler func(context.Context, DeliveryStatus) error) error {
	deliveries, err := c.channel.Consume(
		c.statusQueue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.statusQueue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var status DeliveryStatus
				if err := json.Unmarshal(d.Body, &status); err != nil {
					c.logger.ErrorContext(ctx, "malformed delivery status", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				if err := handler(ctx, status); err != nil {
					c.logger.WarnContext(ctx, "delivery status handling failed",
						"correlation_id", status.CorrelationID,
						"error", err,
					)
					_ = d.Nack(false, true)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	c.logger.Info("consuming delivery statuses", "queue", c.statusQueue)
	return nil
}

// Close releases the channel and connection.
func (c *RabbitClient) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

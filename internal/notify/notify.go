// Package notify is the adapter to the external notification pipeline. The
// engine publishes delivery requests and optimistically marks tickets sent;
// a separate delivery worker reports outcomes on the status queue, which the
// reconciler consumes.
package notify

import (
	"context"

	"bmmhub/pkg/domain"
)

// Message is the delivery-request contract with the external worker.
type Message struct {
	Recipient         string            `json:"recipient"`
	Channel           domain.Channel    `json:"channel"`
	TemplateVariables map[string]string `json:"template_variables"`
	CorrelationID     string            `json:"correlation_id"`
}

// Publisher hands delivery requests to the outbound queue. Publishing is
// fire-and-forget from the engine's point of view: a failed publish is
// logged, never rolled back into a stage change.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// DeliveryStatus is what the delivery worker reports back out-of-band.
// CorrelationID carries the ticket token.
type DeliveryStatus struct {
	CorrelationID string         `json:"correlation_id"`
	Channel       domain.Channel `json:"channel"`
	Delivered     bool           `json:"delivered"`
	Detail        string         `json:"detail,omitempty"`
}

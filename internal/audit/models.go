// Package audit records administrative actions against participation
// records. Events flow publisher -> channel -> worker -> outbox store; a
// forwarder drains the outbox to Kafka, which is the long-term audit sink.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what an administrator did.
type Action string

const (
	ActionForceStage          Action = "stage.force"
	ActionManualAssign        Action = "assignment.manual"
	ActionBulkAssign          Action = "assignment.bulk"
	ActionAutoAssign          Action = "assignment.auto"
	ActionSpecialVoteDecision Action = "special_vote.decision"
)

// Event is emitted from domain logic to capture key administrative actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Actor     string
	Action    Action
	EventID   string
	RecordID  string
	Detail    string
}

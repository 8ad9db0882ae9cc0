package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bmmhub/internal/audit"
	"bmmhub/internal/member"
	"bmmhub/pkg/domain"
	"bmmhub/pkg/requestcontext"
)

// ForceStage sets a record's stage without consulting the transition table.
// Operator correction only: this is the single path that may regress a
// stage, and every use lands in the audit trail with the actor identity.
func (s *Service) ForceStage(ctx context.Context, recordID uuid.UUID, stage domain.Stage) (*member.Record, error) {
	record, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		return nil, s.translate(err)
	}

	previous := record.Stage
	now := requestcontext.Now(ctx)
	record.Stage = stage
	record.UpdatedAt = now

	if err := s.store.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.StageTransitions.WithLabelValues(string(stage)).Inc()

	actor := requestcontext.Actor(ctx)
	if err := s.auditor.Emit(ctx, audit.Event{
		Actor:    actor,
		Action:   audit.ActionForceStage,
		EventID:  record.EventID,
		RecordID: record.ID.String(),
		Detail:   fmt.Sprintf("from=%s to=%s", previous, stage),
	}); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "error", err)
	}

	s.logger.WarnContext(ctx, "stage forced",
		"record_id", record.ID,
		"from", previous,
		"to", stage,
		"actor", actor,
	)
	return record, nil
}

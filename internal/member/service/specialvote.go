package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bmmhub/internal/audit"
	"bmmhub/internal/member"
	"bmmhub/pkg/domain"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/requestcontext"
)

// SpecialVoteInput is the member's postal-vote application.
type SpecialVoteInput struct {
	Reason   string
	Evidence string
}

// ApplySpecialVote files a postal-vote application for a member who declined
// attendance. Only members in an eligible region may apply; the sub-flow
// continues after the main flow's terminal ATTENDANCE_DECLINED stage.
func (s *Service) ApplySpecialVote(ctx context.Context, token string, input SpecialVoteInput) (*member.Record, error) {
	record, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if record.Stage != domain.StageAttendanceDeclined {
		s.metrics.StageViolations.Inc()
		return nil, dErrors.Newf(dErrors.CodeStageViolation,
			"special vote requires a declined attendance, record is in stage %s", record.Stage)
	}
	if !member.SpecialVoteEligible(record.Region) {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"members in region %s are not eligible for a special vote", record.Region)
	}
	// Re-applying while an application is already open is a no-op.
	switch record.SpecialVote.Status {
	case domain.SpecialVotePending, domain.SpecialVoteApproved:
		return record, nil
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "special vote application reason is required")
	}

	now := requestcontext.Now(ctx)
	record.SpecialVote.Eligible = true
	record.SpecialVote.Requested = true
	record.SpecialVote.Status = domain.SpecialVotePending
	record.SpecialVote.Application = &member.SpecialVoteApplication{
		Reason:      strings.TrimSpace(input.Reason),
		Evidence:    strings.TrimSpace(input.Evidence),
		SubmittedAt: now,
	}
	record.Touch(now)
	record.UpdatedAt = now

	if err := s.store.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.SpecialVoteApplications.Inc()

	s.logger.InfoContext(ctx, "special vote application filed",
		"record_id", record.ID,
		"event_id", record.EventID,
	)
	return record, nil
}

// DecideSpecialVote resolves a pending application. Administrator-facing;
// the actor identity comes from the request context and lands in the audit
// trail.
func (s *Service) DecideSpecialVote(ctx context.Context, recordID uuid.UUID, approve bool) (*member.Record, error) {
	record, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		return nil, s.translate(err)
	}
	if record.SpecialVote.Status != domain.SpecialVotePending {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"no pending special vote application, status is %s", record.SpecialVote.Status)
	}

	now := requestcontext.Now(ctx)
	actor := requestcontext.Actor(ctx)
	if approve {
		record.SpecialVote.Status = domain.SpecialVoteApproved
	} else {
		record.SpecialVote.Status = domain.SpecialVoteDeclined
	}
	if record.SpecialVote.Application != nil {
		record.SpecialVote.Application.DecidedAt = &now
		record.SpecialVote.Application.DecidedBy = actor
	}
	record.UpdatedAt = now

	if err := s.store.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Actor:    actor,
		Action:   audit.ActionSpecialVoteDecision,
		EventID:  record.EventID,
		RecordID: record.ID.String(),
		Detail:   fmt.Sprintf("decision=%s", record.SpecialVote.Status),
	}); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "error", err)
	}

	return record, nil
}

package service

import (
	"context"
	"strings"

	"bmmhub/internal/member"
	"bmmhub/internal/ticket"
	"bmmhub/pkg/domain"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/requestcontext"
)

// ConfirmInput is the member's final attendance decision.
type ConfirmInput struct {
	IsAttending          bool
	AbsenceReason        string
	SpecialVoteRequested bool
}

// ConfirmAttendance records the member's decision from ATTENDANCE_PENDING.
//
// Confirming issues the ticket token in the same store write as the stage
// change, so both commit or neither does; the dispatch of the ticket is
// enqueued only after that commit and never rolls the stage back. Repeating
// the same decision after the record reached a terminal stage returns the
// current state unchanged (including the existing ticket token) without a
// second dispatch.
func (s *Service) ConfirmAttendance(ctx context.Context, token string, input ConfirmInput) (*member.Record, error) {
	record, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Member-facing idempotency for retried requests.
	if record.Stage == domain.StageAttendanceConfirmed && input.IsAttending {
		return record, nil
	}
	if record.Stage == domain.StageAttendanceDeclined && !input.IsAttending {
		return record, nil
	}

	if input.IsAttending {
		return s.confirm(ctx, record)
	}
	return s.decline(ctx, record, input)
}

func (s *Service) confirm(ctx context.Context, record *member.Record) (*member.Record, error) {
	if err := domain.EnsureTransition(record.Stage, domain.StageAttendanceConfirmed); err != nil {
		s.metrics.StageViolations.Inc()
		return nil, err
	}

	now := requestcontext.Now(ctx)
	attending := true
	record.IsAttending = &attending
	record.AbsenceReason = ""
	record.SpecialVote.Requested = false
	record.DecidedAt = &now
	record.Stage = domain.StageAttendanceConfirmed
	record.Touch(now)
	record.UpdatedAt = now

	freshToken := record.Ticket.Token == nil
	ticket.Issue(record, now)

	if err := s.store.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.StageTransitions.WithLabelValues(string(domain.StageAttendanceConfirmed)).Inc()
	if freshToken {
		s.metrics.TicketsIssued.Inc()
	}

	if err := s.events.AttendanceConfirmed(ctx, record.ID); err != nil {
		// The stage change and ticket are committed; dispatch can be
		// re-triggered, so only log.
		s.logger.ErrorContext(ctx, "failed to enqueue ticket dispatch",
			"record_id", record.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "attendance confirmed",
		"record_id", record.ID,
		"event_id", record.EventID,
		"ticket_token", record.Ticket.Token,
	)
	return record, nil
}

func (s *Service) decline(ctx context.Context, record *member.Record, input ConfirmInput) (*member.Record, error) {
	// Validate before any mutation so a failed decline leaves the record
	// untouched.
	if strings.TrimSpace(input.AbsenceReason) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "absence reason is required when declining")
	}
	if err := domain.EnsureTransition(record.Stage, domain.StageAttendanceDeclined); err != nil {
		s.metrics.StageViolations.Inc()
		return nil, err
	}

	now := requestcontext.Now(ctx)
	attending := false
	record.IsAttending = &attending
	record.AbsenceReason = strings.TrimSpace(input.AbsenceReason)
	record.DecidedAt = &now
	record.Stage = domain.StageAttendanceDeclined
	record.Touch(now)
	record.UpdatedAt = now

	// Eligibility is always recomputed here, never carried over.
	record.SpecialVote.Eligible = member.SpecialVoteEligible(record.Region)
	if record.SpecialVote.Eligible && input.SpecialVoteRequested {
		record.SpecialVote.Requested = true
		record.SpecialVote.Status = domain.SpecialVotePending
	} else {
		// A request from an ineligible region is ignored.
		record.SpecialVote.Requested = false
		record.SpecialVote.Status = domain.SpecialVoteNotApplicable
	}

	if err := s.store.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.StageTransitions.WithLabelValues(string(domain.StageAttendanceDeclined)).Inc()
	if record.SpecialVote.Status == domain.SpecialVotePending {
		s.metrics.SpecialVoteApplications.Inc()
	}

	s.logger.InfoContext(ctx, "attendance declined",
		"record_id", record.ID,
		"event_id", record.EventID,
		"special_vote_status", record.SpecialVote.Status,
	)
	return record, nil
}

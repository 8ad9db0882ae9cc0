// Package service orchestrates the registration stage machine. All record
// mutation goes through here: handlers stay thin and the assignment engine
// calls back in for stage transitions it owns.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"bmmhub/internal/audit"
	"bmmhub/internal/member"
	"bmmhub/internal/member/metrics"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/platform/sentinel"
)

// TicketEvents receives the confirmed-attendance signal after the stage
// change commits. Implemented by the ticket dispatch queue.
type TicketEvents interface {
	AttendanceConfirmed(ctx context.Context, recordID uuid.UUID) error
}

// AuditPublisher records administrative actions. Implemented by the audit
// publisher; nil-safe wrapper used in tests.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns participation-record mutation and the stage transition rules.
type Service struct {
	store   member.Store
	events  TicketEvents
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store member.Store, events TicketEvents, auditor AuditPublisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		events:  events,
		auditor: auditor,
		logger:  logger,
		metrics: m,
	}
}

// findByToken resolves the opaque member-facing token.
func (s *Service) findByToken(ctx context.Context, token string) (*member.Record, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "access token is required")
	}
	record, err := s.store.FindByAccessToken(ctx, token)
	if err != nil {
		return nil, s.translate(err)
	}
	return record, nil
}

// Get returns the record behind a member token, for status display.
func (s *Service) Get(ctx context.Context, token string) (*member.Record, error) {
	return s.findByToken(ctx, token)
}

// translate maps store sentinels onto the domain error taxonomy.
func (s *Service) translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "participation record not found")
	case errors.Is(err, sentinel.ErrConflict):
		s.metrics.ConcurrentModifications.Inc()
		return dErrors.Wrap(err, dErrors.CodeConcurrentModification,
			"record was modified concurrently, retry the operation")
	case errors.Is(err, sentinel.ErrDuplicate):
		return dErrors.Wrap(err, dErrors.CodeValidation, "record already exists for this member and event")
	default:
		return err
	}
}

func (s *Service) stageViolation(record *member.Record, target string) error {
	s.metrics.StageViolations.Inc()
	return dErrors.Newf(dErrors.CodeStageViolation,
		"cannot %s: record is in stage %s", target, record.Stage)
}

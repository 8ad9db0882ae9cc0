package service

import (
	"context"

	"bmmhub/internal/member"
	"bmmhub/pkg/domain"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/requestcontext"
)

// PreferencesInput is what the member submits before assignment.
type PreferencesInput struct {
	// Venues is ordered by preference.
	Venues      []string
	TimeBands   []string
	Workplace   string
	Comments    string
	Willingness domain.AttendanceWillingness
}

// SubmitPreferences records the member's venue and time preferences and
// moves the record from PENDING to PREFERENCE_SUBMITTED.
//
// The willingness value is a provisional attendance-likelihood signal only;
// the final IsAttending decision is made in ConfirmAttendance. A repeated
// submission after the stage already advanced returns the current record
// unchanged, since members double-submit from retried requests.
func (s *Service) SubmitPreferences(ctx context.Context, token string, input PreferencesInput) (*member.Record, error) {
	record, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if record.Stage == domain.StagePreferenceSubmitted {
		return record, nil
	}
	if err := domain.EnsureTransition(record.Stage, domain.StagePreferenceSubmitted); err != nil {
		s.metrics.StageViolations.Inc()
		return nil, err
	}

	willingness := input.Willingness
	if willingness == "" {
		willingness = domain.WillingnessUndecided
	}
	if !willingness.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown attendance willingness %q", string(willingness))
	}

	now := requestcontext.Now(ctx)
	record.Preferences = member.Preferences{
		Venues:      append([]string(nil), input.Venues...),
		TimeBands:   append([]string(nil), input.TimeBands...),
		Workplace:   input.Workplace,
		Comments:    input.Comments,
		Willingness: willingness,
		SubmittedAt: &now,
	}
	record.Stage = domain.StagePreferenceSubmitted
	record.Touch(now)
	record.UpdatedAt = now

	if err := s.store.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.StageTransitions.WithLabelValues(string(domain.StagePreferenceSubmitted)).Inc()

	s.logger.InfoContext(ctx, "preferences submitted",
		"record_id", record.ID,
		"event_id", record.EventID,
		"venues", len(record.Preferences.Venues),
		"willingness", willingness,
	)
	return record, nil
}

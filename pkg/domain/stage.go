package domain

import dErrors "bmmhub/pkg/domain-errors"

// Stage is the enumerated lifecycle position of a participation record.
//
// The lifecycle is:
//
//	PENDING -> PREFERENCE_SUBMITTED -> ATTENDANCE_PENDING
//	        -> ATTENDANCE_CONFIRMED | ATTENDANCE_DECLINED
//
// ATTENDANCE_PENDING means "venue assigned, awaiting the member's
// confirmation". The legacy data used VENUE_ASSIGNED and ATTENDANCE_PENDING
// interchangeably for that state; ParseStage accepts the legacy alias and
// folds it into ATTENDANCE_PENDING so only one value exists internally.
type Stage string

const (
	StagePending             Stage = "PENDING"
	StagePreferenceSubmitted Stage = "PREFERENCE_SUBMITTED"
	StageAttendancePending   Stage = "ATTENDANCE_PENDING"
	StageAttendanceConfirmed Stage = "ATTENDANCE_CONFIRMED"
	StageAttendanceDeclined  Stage = "ATTENDANCE_DECLINED"
)

// legacyStageVenueAssigned is accepted on input only and normalized away.
const legacyStageVenueAssigned = "VENUE_ASSIGNED"

// stageTransitions is the closed transition table. Forward movement only;
// regression requires the administrative ForceStage override.
var stageTransitions = map[Stage][]Stage{
	StagePending:             {StagePreferenceSubmitted},
	StagePreferenceSubmitted: {StageAttendancePending},
	StageAttendancePending:   {StageAttendanceConfirmed, StageAttendanceDeclined},
	StageAttendanceConfirmed: {},
	StageAttendanceDeclined:  {},
}

// Stages returns every stage in lifecycle order.
func Stages() []Stage {
	return []Stage{
		StagePending,
		StagePreferenceSubmitted,
		StageAttendancePending,
		StageAttendanceConfirmed,
		StageAttendanceDeclined,
	}
}

// ParseStage constructs a Stage from external input, normalizing the legacy
// VENUE_ASSIGNED alias.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseStage(s string) (Stage, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "stage cannot be empty")
	}
	if s == legacyStageVenueAssigned {
		return StageAttendancePending, nil
	}
	st := Stage(s)
	if _, ok := stageTransitions[st]; !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown stage %q", s)
	}
	return st, nil
}

// IsValid checks if the stage is one of the supported enum values.
func (s Stage) IsValid() bool {
	_, ok := stageTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving to next is a legal forward edge.
func (s Stage) CanTransitionTo(next Stage) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage ends the main registration flow.
// The special-vote sub-flow may still continue after ATTENDANCE_DECLINED.
func (s Stage) Terminal() bool {
	return len(stageTransitions[s]) == 0 && s.IsValid()
}

func (s Stage) String() string {
	return string(s)
}

// EnsureTransition validates a forward edge, returning a stage_violation error
// naming the required source stages and the actual stage when illegal.
func EnsureTransition(from, to Stage) error {
	if !from.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown stage %q", string(from))
	}
	if !from.CanTransitionTo(to) {
		return dErrors.Newf(dErrors.CodeStageViolation,
			"cannot move to %s from %s", to, from)
	}
	return nil
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bmmhub/pkg/domain-errors"
)

func TestStageTransitionTable(t *testing.T) {
	all := []Stage{
		StagePending,
		StagePreferenceSubmitted,
		StageAttendancePending,
		StageAttendanceConfirmed,
		StageAttendanceDeclined,
	}

	legal := map[Stage]map[Stage]bool{
		StagePending:             {StagePreferenceSubmitted: true},
		StagePreferenceSubmitted: {StageAttendancePending: true},
		StageAttendancePending: {
			StageAttendanceConfirmed: true,
			StageAttendanceDeclined:  true,
		},
		StageAttendanceConfirmed: {},
		StageAttendanceDeclined:  {},
	}

	// Exhaustive check: every pair either matches the table or is rejected.
	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, legal[from][to], got, "%s -> %s", from, to)
		}
	}
}

func TestStageNoShortcutToConfirmed(t *testing.T) {
	// ATTENDANCE_CONFIRMED is only reachable from ATTENDANCE_PENDING, which
	// itself is only reachable from PREFERENCE_SUBMITTED.
	for _, from := range []Stage{StagePending, StagePreferenceSubmitted, StageAttendanceDeclined} {
		assert.False(t, from.CanTransitionTo(StageAttendanceConfirmed), "from %s", from)
	}
	assert.False(t, StagePending.CanTransitionTo(StageAttendancePending))
}

func TestEnsureTransition(t *testing.T) {
	require.NoError(t, EnsureTransition(StageAttendancePending, StageAttendanceConfirmed))

	err := EnsureTransition(StagePending, StageAttendanceConfirmed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStageViolation))
	// The error names both the attempted target and the actual stage.
	assert.Contains(t, err.Error(), "ATTENDANCE_CONFIRMED")
	assert.Contains(t, err.Error(), "PENDING")
}

func TestParseStage(t *testing.T) {
	t.Run("legacy venue assigned alias folds into attendance pending", func(t *testing.T) {
		st, err := ParseStage("VENUE_ASSIGNED")
		require.NoError(t, err)
		assert.Equal(t, StageAttendancePending, st)
	})

	t.Run("unknown value rejected at the boundary", func(t *testing.T) {
		_, err := ParseStage("REGISTERED")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := ParseStage("")
		require.Error(t, err)
	})
}

func TestStageTerminal(t *testing.T) {
	assert.True(t, StageAttendanceConfirmed.Terminal())
	assert.True(t, StageAttendanceDeclined.Terminal())
	assert.False(t, StageAttendancePending.Terminal())
	assert.False(t, Stage("BOGUS").Terminal())
}

func TestParseRegion(t *testing.T) {
	for _, r := range []string{"NORTHERN", "CENTRAL", "SOUTHERN"} {
		got, err := ParseRegion(r)
		require.NoError(t, err)
		assert.Equal(t, Region(r), got)
	}

	_, err := ParseRegion("WESTERN")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseWillingness(t *testing.T) {
	w, err := ParseWillingness("")
	require.NoError(t, err)
	assert.Equal(t, WillingnessUndecided, w)

	_, err = ParseWillingness("maybe")
	require.Error(t, err)
}

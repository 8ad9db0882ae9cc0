package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("coded error returns its code", func(t *testing.T) {
		err := New(CodeStageViolation, "cannot confirm from PENDING")
		assert.Equal(t, CodeStageViolation, CodeOf(err))
	})

	t.Run("wrapped coded error survives fmt wrapping", func(t *testing.T) {
		inner := New(CodeCapacityExceeded, "venue full")
		err := fmt.Errorf("assign record: %w", inner)
		assert.Equal(t, CodeCapacityExceeded, CodeOf(err))
		assert.True(t, HasCode(err, CodeCapacityExceeded))
	})

	t.Run("plain error reports internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("row locked")
	err := Wrap(cause, CodeConcurrentModification, "record changed underneath us")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "concurrent_modification")
	assert.Contains(t, err.Error(), "row locked")
}

package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQuotaEnforcer_WithinLimit tests normal operation within quota.
func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		assert.NoError(t, q.Check(), "step %d should be allowed", i+1)
	}

	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.MaxSteps())
}

// TestQuotaEnforcer_ExceedsLimit tests quota exceeded error.
func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check())
	}

	err := q.Check()
	require.Error(t, err)

	var stepsErr *StepsExceededError
	require.ErrorAs(t, err, &stepsErr)
	assert.Equal(t, 6, stepsErr.Steps)
	assert.Equal(t, 5, stepsErr.Limit)
	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsCascadeLimit(err))
}

func TestCascadeLimitError_Wraps(t *testing.T) {
	cause := &StepsExceededError{Steps: 4, Limit: 3}
	err := fmt.Errorf("swap: %w", NewCascadeLimitError("s-1", cause))

	assert.True(t, IsCascadeLimit(err))
	assert.True(t, IsStepsExceededError(err))
	assert.Equal(t, "CASCADE_LIMIT", ErrorCode(err))
	assert.Contains(t, err.Error(), "session=s-1")
}

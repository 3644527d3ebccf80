package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer counts cascade iterations and enforces a maximum.
//
// A settle loop has no analytic bound: every refill may recreate a match.
// The quota turns a pathological configuration (for example a one-symbol
// pool whose triples spawn more of the same symbol) into an error instead
// of a hang. Each cascade gets its own enforcer; a reshuffle starts a new
// cascade.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
// Typical default: ir.DefaultMaxCascade (configurable via WithMaxCascade).
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
// Returns StepsExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check() error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a cascade exceeds its quota.
type StepsExceededError struct {
	Steps int // Number of steps taken
	Limit int // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("cascade exceeded max steps quota: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

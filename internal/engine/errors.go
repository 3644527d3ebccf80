package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
)

// RequestErrorCode categorizes rejected requests.
type RequestErrorCode string

const (
	// ErrCodeIllegal indicates a same-cell, non-adjacent or out-of-range swap.
	ErrCodeIllegal RequestErrorCode = "ILLEGAL"

	// ErrCodeBusy indicates a request issued while a cascade is running.
	ErrCodeBusy RequestErrorCode = "BUSY"
)

// RequestError is returned when a request is rejected. The board is
// unchanged whenever a RequestError is returned.
type RequestError struct {
	Code    RequestErrorCode
	Request ir.RequestKind
	Message string
	Err     error // underlying cause, e.g. *grid.IndexError
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Request, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func newIllegal(req ir.RequestKind, err error, format string, args ...any) *RequestError {
	return &RequestError{Code: ErrCodeIllegal, Request: req, Message: fmt.Sprintf(format, args...), Err: err}
}

func newBusy(req ir.RequestKind, phase Phase) *RequestError {
	return &RequestError{
		Code:    ErrCodeBusy,
		Request: req,
		Message: fmt.Sprintf("cascade in progress (phase %s)", phase),
	}
}

// IsIllegal returns true if err is an ILLEGAL RequestError.
// Uses errors.As to handle wrapped errors.
func IsIllegal(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Code == ErrCodeIllegal
}

// IsBusy returns true if err is a BUSY RequestError.
func IsBusy(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Code == ErrCodeBusy
}

// ReshuffleExhaustedError is returned, together with a complete report,
// when the board is still deadlocked after the configured number of
// reshuffles. It is not fatal: the board is settled and full, and the
// caller decides whether to present it or abort.
type ReshuffleExhaustedError struct {
	Attempts int
}

func (e *ReshuffleExhaustedError) Error() string {
	return fmt.Sprintf("RESHUFFLE_EXHAUSTED: board still deadlocked after %d reshuffles", e.Attempts)
}

// IsReshuffleExhausted returns true if err is a ReshuffleExhaustedError.
func IsReshuffleExhausted(err error) bool {
	var re *ReshuffleExhaustedError
	return errors.As(err, &re)
}

// RuntimeError represents a failure detected while running the engine.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Session identifies the affected session.
	Session string

	// Details contains additional context.
	Details map[string]string

	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCascadeLimit indicates a cascade exceeded its iteration quota.
	ErrCodeCascadeLimit RuntimeErrorCode = "CASCADE_LIMIT"

	// ErrCodeReplayMismatch indicates a replayed session diverged from its journal.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Session != "" {
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.Session)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsCascadeLimit returns true if the error is a cascade limit error.
// Matches both RuntimeError with ErrCodeCascadeLimit and StepsExceededError.
func IsCascadeLimit(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) && re.Code == ErrCodeCascadeLimit {
		return true
	}
	var se *StepsExceededError
	return errors.As(err, &se)
}

// IsReplayMismatch returns true if the error is a replay mismatch.
func IsReplayMismatch(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeReplayMismatch
}

// NewCascadeLimitError wraps a quota failure for a session.
func NewCascadeLimitError(session string, cause *StepsExceededError) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCascadeLimit,
		Message: fmt.Sprintf("cascade did not settle within %d iterations", cause.Limit),
		Session: session,
		Details: map[string]string{
			"steps": fmt.Sprintf("%d", cause.Steps),
			"limit": fmt.Sprintf("%d", cause.Limit),
		},
		Err: cause,
	}
}

// ErrorCode returns the stable code journaled for a request outcome:
// the RequestError, ConfigError or RuntimeError code, RESHUFFLE_EXHAUSTED,
// or "" for success.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return string(reqErr.Code)
	}
	if IsReshuffleExhausted(err) {
		return "RESHUFFLE_EXHAUSTED"
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return string(rtErr.Code)
	}
	var cfgErr *ir.ConfigError
	if errors.As(err, &cfgErr) {
		return string(cfgErr.Code)
	}
	return "ERROR"
}

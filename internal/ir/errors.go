package ir

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeEmptyPool indicates a refill was configured with no symbols.
	ErrCodeEmptyPool ConfigErrorCode = "EMPTY_POOL"

	// ErrCodeInvalidRecipe indicates an empty field, a negative score or the
	// degenerate A == B == Result cycle.
	ErrCodeInvalidRecipe ConfigErrorCode = "INVALID_RECIPE"

	// ErrCodeInvalidTriple indicates a malformed triple side-table entry.
	ErrCodeInvalidTriple ConfigErrorCode = "INVALID_TRIPLE"

	// ErrCodeInvalidTerminal indicates a declared terminal that is empty or
	// also used as a recipe material.
	ErrCodeInvalidTerminal ConfigErrorCode = "INVALID_TERMINAL"

	// ErrCodeInvalidBoard indicates non-positive or inconsistent dimensions.
	ErrCodeInvalidBoard ConfigErrorCode = "INVALID_BOARD"
)

// ConfigError is returned when a game definition cannot be used.
// Config errors are fatal at construction time; an engine never starts
// with an invalid configuration.
type ConfigError struct {
	Code    ConfigErrorCode
	Field   string // e.g. "recipes[2]", "pool"
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(code ConfigErrorCode, field, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a ConfigError with the given code.
// An empty code matches any ConfigError.
func IsConfigError(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return code == "" || ce.Code == code
	}
	return false
}

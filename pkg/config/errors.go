package config

import (
	"errors"
	"fmt"
)

// ValidationError reports an invalid hierarchy configuration. Field is a
// dotted path into the config (e.g. "teams[1].workers[0].temperature").
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns the human-readable reason. The field path is carried
// separately so the API layer can surface it in structured responses.
func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError creates a new validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidationError returns the first ValidationError in err's chain, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// fieldf formats an indexed field path.
func fieldf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

package internaltypes

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError carries user-facing messages keyed by form field name.
// Messages that belong to the form as a whole live under the empty key.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func NewValidationError(cause error, field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}, Err: cause}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NonField returns the message not bound to a single field, if any.
func (e *ValidationError) NonField() string { return e.Fields[""] }

package models

import (
	"errors"
	"strings"
)

// Message validation errors.
var (
	ErrInvalidHistory = errors.New("must be live or migrated")
	ErrInvalidKind    = errors.New("unknown message kind")
	ErrMissingAuthor  = errors.New("author is required")
)

// ValidationError is a single field failure.
type ValidationError struct {
	Field string `json:"field"`
	Cause error  `json:"-"`
}

func (v ValidationError) Error() string {
	return v.Field + ": " + v.Cause.Error()
}

// ValidationErrors collects field failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records err for field.
func (v *ValidationErrors) Add(field string, err error) {
	if err != nil {
		v.Errors = append(v.Errors, ValidationError{Field: field, Cause: err})
	}
}

// Err returns nil when nothing was recorded.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// Is matches any recorded cause.
func (v *ValidationErrors) Is(target error) bool {
	for _, err := range v.Errors {
		if errors.Is(err.Cause, target) {
			return true
		}
	}
	return false
}

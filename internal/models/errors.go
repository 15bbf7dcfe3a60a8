package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no caller identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when the referenced transaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the transaction belongs to another owner.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError collects field-level validation failures.
type ValidationError struct {
	Fields map[string]string
}

// Add records a failure for field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e when it holds failures and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

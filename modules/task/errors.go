package task

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no task exists with the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrForbidden is returned when the task exists but belongs to another user.
	ErrForbidden = errors.New("not authorized to access this task")
	// ErrEmptyUpdate is returned when an update request carries no recognized field.
	ErrEmptyUpdate = errors.New("no fields provided for update")
	// ErrInvalidID is returned when the task id does not have a valid shape.
	ErrInvalidID = errors.New("invalid task id format")
)

// ValidationError carries one message per invalid field. No write happens
// when a ValidationError is returned.
type ValidationError struct {
	Fields map[string]string
}

// Error returns the field messages joined in field-name order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+e.Fields[name])
	}
	return strings.Join(msgs, ", ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

package application

import (
	"errors"
	"fmt"

	"github.com/example/batch-scheduler/internal/persistence"
)

var (
	// ErrNotFound is returned when the requested batch or session does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when an identifier collides with a stored record.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSessionNotReschedulable is returned when a completed or cancelled
	// session is asked to move or change status.
	ErrSessionNotReschedulable = errors.New("application: session can no longer be changed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message recorded for
// a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func newValidationError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("batch", "stored record violates a data constraint")
	}
	return fmt.Errorf("application: repository: %w", err)
}

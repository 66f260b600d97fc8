package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors shared by all services.
var (
	ErrPlannerNotFound     = errors.New("planner not found")
	ErrSectionNotFound     = errors.New("section not found")
	ErrShareNotFound       = errors.New("share not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrExportNotFound      = errors.New("export not found")
	ErrHandwritingNotFound = errors.New("handwriting record not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbiddenAccess     = errors.New("user does not have permission for this action on the planner")
	ErrAlreadyShared       = errors.New("planner already shared with this user")
	ErrCannotShareWithSelf = errors.New("cannot share planner with yourself")
	ErrExportNotReady      = errors.New("export not ready yet")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid refresh token")
	ErrEmailInUse          = errors.New("email already in use")
	ErrWorkflowUnavailable = errors.New("service temporarily unavailable")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed input that passed request binding.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Field + ": " + d.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Message: "Validation failed",
		Details: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}},
	}
}

// UnavailableError reports a failed call to an outside workflow.
// It matches ErrWorkflowUnavailable under errors.Is.
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	return e.Service + " service temporarily unavailable"
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrWorkflowUnavailable }

func unavailable(service string, err error) error {
	return &UnavailableError{Service: service, Err: err}
}

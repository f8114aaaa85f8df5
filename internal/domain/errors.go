package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrMailerNotConfigured  = errors.New("mailer is not configured")
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrRemindersDisabled    = errors.New("reminder delivery is disabled")
)

// InvalidDateError is returned when a stored entry date cannot be parsed by
// any recognized format. It causes record exclusion, never a batch abort.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("unrecognized date %q", e.Value)
}

// EmailConflictError is returned when a user email is already registered.
type EmailConflictError struct {
	Email string
}

func (e *EmailConflictError) Error() string {
	return fmt.Sprintf("email %q is already registered", e.Email)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// ValidationError is returned when request input fails a domain check.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

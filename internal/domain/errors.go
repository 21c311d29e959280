// Package domain defines core types, interfaces, and errors for the reservation core.
package domain

import "fmt"

// NotFoundError indicates a resource was not found. Field names the input
// that referenced it, when known.
type NotFoundError struct {
	Message string
	Field   string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions. It is the Forbidden
// class of the error taxonomy.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates malformed or contradictory input. Field names the
// offending input when one can be identified.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// TableAlternative is a table suggested in place of a slot that is already taken.
type TableAlternative struct {
	TableID     int64  `json:"table_id"`
	TableNumber string `json:"table_number"`
	SeatCount   int    `json:"seat_count"`
}

// ConflictError indicates a violated uniqueness or capacity constraint.
// Booking conflicts may carry alternative tables.
type ConflictError struct {
	Message      string
	Field        string
	Alternatives []TableAlternative
}

func (e *ConflictError) Error() string { return e.Message }

// InternalError wraps an unexpected persistence failure. Its message is safe
// to surface; the wrapped error is for logs only.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFoundField creates a NotFoundError tied to an input field.
func ErrNotFoundField(field, format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...), Field: field}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidationField creates a ValidationError tied to an input field.
func ErrValidationField(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Field: field}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflictField creates a ConflictError tied to an input field.
func ErrConflictField(field, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...), Field: field}
}

// ErrInternal wraps err as an InternalError.
func ErrInternal(err error, format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...), Err: err}
}

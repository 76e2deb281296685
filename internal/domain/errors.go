// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrWebhookSignature is returned when a processor webhook fails
	// signature verification.
	ErrWebhookSignature = errors.New("invalid webhook signature")

	// ErrMalformedWebhook is returned when a verified webhook cannot be decoded.
	ErrMalformedWebhook = errors.New("malformed webhook event")

	ErrInvalidEmail         = errors.New("invalid email format")
	ErrEmailDomain          = errors.New("only gmail addresses are allowed")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong      = errors.New("password must be at most 72 characters long")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrInvalidFullName      = errors.New("full name must be at least 2 characters long")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidServiceType   = errors.New("invalid service type")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidQuantity      = errors.New("quantity is out of range")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidSchedule      = errors.New("scheduled delivery must not precede pickup")
)

// ValidationError describes a single invalid field. It matches both its
// specific cause and ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

// Unwrap exposes the cause and ErrValidation to errors.Is/errors.As.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{e.Err, ErrValidation}
}

package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. The API layer maps each one to
// an HTTP status with errors.Is.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email address not verified")
	ErrInvalidToken       = errors.New("invalid or unknown token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")

	// ErrNotFound hides both missing resources and resources owned by
	// someone else.
	ErrNotFound = errors.New("resource not found")

	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidServiceType = errors.New("invalid service type")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrUserHasOrders      = errors.New("user has existing orders")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMalformedWebhook   = errors.New("malformed webhook event")

	// ErrProcessorUnavailable means the payment processor rejected or failed
	// a request.
	ErrProcessorUnavailable = errors.New("payment processor unavailable")

	// ErrOperationFailed marks unexpected infrastructure failures. Callers
	// get a generic message; the cause is only logged.
	ErrOperationFailed = errors.New("operation failed")
)

// ServiceError wraps an unexpected failure with the operation that hit it.
// It matches ErrOperationFailed with errors.Is.
type ServiceError struct {
	// Operation is the failing use case, e.g. "create_order".
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports a match for ErrOperationFailed.
func (e *ServiceError) Is(target error) bool {
	return target == ErrOperationFailed
}

// NewServiceError wraps err as an operation failure. A nil err yields nil.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

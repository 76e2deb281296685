package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/magicspin/laundry-api/internal/api/shared"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service"
	"github.com/magicspin/laundry-api/internal/service/auth"
	"github.com/magicspin/laundry-api/internal/store"
)

// MapErrorToStatusCode maps service, domain and store errors to HTTP
// status codes. Unknown errors are 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrInvalidServiceType),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrOrderCancelled),
		errors.Is(err, service.ErrUserHasOrders),
		errors.Is(err, service.ErrCannotDeleteSelf),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrMalformedWebhook):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotVerified),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict

	case errors.Is(err, service.ErrProcessorUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err. Causes of
// unexpected failures are never included.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "Internal server error"
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return validationMessage(vErr)
	}

	switch {
	case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, store.ErrEmailExists):
		return "User already exists with this email"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, service.ErrNotVerified):
		return "Please verify your email before logging in"
	case errors.Is(err, service.ErrInvalidToken):
		return "Invalid or unknown token"
	case errors.Is(err, service.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, service.ErrForbidden):
		return "Insufficient permissions"
	case errors.Is(err, service.ErrInvalidServiceType):
		return "Invalid service type or pricing not available"
	case errors.Is(err, service.ErrInvalidStatus):
		return "Invalid status"
	case errors.Is(err, service.ErrInvalidTransition):
		return "Order status transition not allowed"
	case errors.Is(err, service.ErrOrderCancelled):
		return "Cannot pay for cancelled order"
	case errors.Is(err, service.ErrUserHasOrders):
		return "Cannot delete user with existing orders"
	case errors.Is(err, service.ErrCannotDeleteSelf):
		return "Cannot delete your own account"
	case errors.Is(err, service.ErrInvalidSignature):
		return "Invalid webhook signature"
	case errors.Is(err, service.ErrMalformedWebhook):
		return "Invalid webhook payload"
	case errors.Is(err, service.ErrProcessorUnavailable):
		return "Payment processor unavailable, please try again"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, service.ErrOperationFailed):
		return "Operation failed"
	default:
		return "Internal server error"
	}
}

// HandleAPIError writes the mapped status and safe message for err and
// logs the redacted cause. notFound, when set, replaces the generic
// message for ErrNotFound, e.g. "Order not found".
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if notFound != "" && errors.Is(err, service.ErrNotFound) {
		message = notFound
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// validationMessage prefers the specific cause ("Only gmail addresses are
// allowed") and falls back to "<field> <message>".
func validationMessage(vErr *domain.ValidationError) string {
	if vErr.Err != nil && vErr.Err != domain.ErrValidation &&
		vErr.Err != domain.ErrInvalidID && vErr.Err != domain.ErrInvalidEmail {
		return capitalize(vErr.Err.Error())
	}
	return capitalize(strings.TrimSpace(vErr.Field + " " + vErr.Message))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

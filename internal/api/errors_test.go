package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service"
	"github.com/magicspin/laundry-api/internal/service/auth"
	"github.com/magicspin/laundry-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("quantity", "must be positive", domain.ErrInvalidQuantity), http.StatusBadRequest},
		{store.ErrInvalidEntity, http.StatusBadRequest},
		{service.ErrTokenExpired, http.StatusBadRequest},
		{service.ErrUserHasOrders, http.StatusBadRequest},
		{fmt.Errorf("%w: bad amount", service.ErrMalformedWebhook), http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{service.ErrNotVerified, http.StatusForbidden},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{store.ErrOrderNotFound, http.StatusNotFound},
		{fmt.Errorf("create: %w", store.ErrEmailExists), http.StatusConflict},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrProcessorUnavailable, http.StatusBadGateway},
		{service.NewServiceError("op", "msg", assert.AnError), http.StatusInternalServerError},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err), "%v", tt.err)
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "specific validation cause",
			err:  domain.NewValidationError("email", "must be a gmail address", domain.ErrEmailDomain),
			want: capitalize(domain.ErrEmailDomain.Error()),
		},
		{
			name: "generic validation falls back to field",
			err:  domain.NewValidationError("pickup_address", "is required", domain.ErrValidation),
			want: "Pickup_address is required",
		},
		{name: "duplicate", err: service.ErrDuplicateEmail, want: "User already exists with this email"},
		{name: "wrapped not found", err: fmt.Errorf("get: %w", service.ErrNotFound), want: "Resource not found"},
		{name: "nil", err: nil, want: "Internal server error"},
		{
			name: "operation failure hides cause",
			err:  service.NewServiceError("create_order", "insert failed", fmt.Errorf("pq: password=hunter2")),
			want: "Operation failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/mocks"
	"github.com/magicspin/laundry-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlerGet(t *testing.T) {
	t.Parallel()

	admin := testUser(t, domain.RoleAdmin)
	target := testUser(t, domain.RoleCustomer)
	h := NewUserHandler(&mocks.MockUserService{
		GetUserFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			if id == target.ID {
				return target, nil
			}
			return nil, service.ErrUserNotFound
		},
	}, testLogger())

	w := serve(t, h.GetUser, http.MethodGet, "/api/users/x",
		requestOpts{user: admin, params: map[string]string{"id": target.ID.String()}})
	require.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	decodeEnvelope(t, w, &resp)
	assert.Equal(t, target.ID, resp.ID)

	w = serve(t, h.GetUser, http.MethodGet, "/api/users/x",
		requestOpts{user: admin, params: map[string]string{"id": uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeError(t, w).Error)
}

func TestUserHandlerUpdate(t *testing.T) {
	t.Parallel()

	admin := testUser(t, domain.RoleAdmin)
	target := testUser(t, domain.RoleCustomer)

	var got service.UserUpdate
	h := NewUserHandler(&mocks.MockUserService{
		UpdateUserFn: func(_ context.Context, _ uuid.UUID, upd service.UserUpdate) (*domain.User, error) {
			got = upd
			updated := *target
			if upd.Role != nil {
				updated.Role = *upd.Role
			}
			return &updated, nil
		},
	}, testLogger())

	w := serve(t, h.UpdateUser, http.MethodPut, "/api/users/x", requestOpts{
		user:   admin,
		params: map[string]string{"id": target.ID.String()},
		body:   map[string]interface{}{"role": "admin", "is_verified": false},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp UserResponse
	env := decodeEnvelope(t, w, &resp)
	assert.Equal(t, "User updated successfully", env.Message)
	assert.Equal(t, domain.RoleAdmin, resp.Role)
	require.NotNil(t, got.IsVerified)
	assert.False(t, *got.IsVerified)
	assert.Nil(t, got.FullName)

	w = serve(t, h.UpdateUser, http.MethodPut, "/api/users/x", requestOpts{
		user:   admin,
		params: map[string]string{"id": target.ID.String()},
		body:   map[string]interface{}{"role": "owner"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "role must be one of: customer admin", decodeError(t, w).Error)
}

func TestUserHandlerDelete(t *testing.T) {
	t.Parallel()

	admin := testUser(t, domain.RoleAdmin)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "deleted", wantStatus: http.StatusOK},
		{name: "has orders", err: service.ErrUserHasOrders, wantStatus: http.StatusBadRequest,
			wantError: "Cannot delete user with existing orders"},
		{name: "self", err: service.ErrCannotDeleteSelf, wantStatus: http.StatusBadRequest,
			wantError: "Cannot delete your own account"},
		{name: "missing", err: service.ErrUserNotFound, wantStatus: http.StatusNotFound, wantError: "User not found"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotCaller *domain.User
			h := NewUserHandler(&mocks.MockUserService{
				DeleteUserFn: func(_ context.Context, caller *domain.User, _ uuid.UUID) error {
					gotCaller = caller
					return tt.err
				},
			}, testLogger())

			w := serve(t, h.DeleteUser, http.MethodDelete, "/api/users/x",
				requestOpts{user: admin, params: map[string]string{"id": uuid.NewString()}})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Same(t, admin, gotCaller)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, w).Error)
			} else {
				assert.Equal(t, "User deleted successfully", decodeEnvelope(t, w, nil).Message)
			}
		})
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserServiceUpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("promotes and verifies a user", func(t *testing.T) {
		t.Parallel()
		db, dbMock := newTxDB(t)
		users, orders := &MockUserStore{}, &MockOrderStore{}
		svc, err := NewUserService(users, orders, db, discardLogger())
		require.NoError(t, err)

		user := testCustomer(t)
		user.IsVerified = false
		admin, verified := domain.RoleAdmin, true

		dbMock.ExpectBegin()
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleAdmin && u.IsVerified
		})).Return(nil)
		dbMock.ExpectCommit()

		got, err := svc.UpdateUser(context.Background(), user.ID, UserUpdate{Role: &admin, IsVerified: &verified})
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid role rolls back", func(t *testing.T) {
		t.Parallel()
		db, dbMock := newTxDB(t)
		users := &MockUserStore{}
		svc, err := NewUserService(users, &MockOrderStore{}, db, discardLogger())
		require.NoError(t, err)

		user := testCustomer(t)
		owner := domain.Role("owner")

		dbMock.ExpectBegin()
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.Anything).
			Return(domain.NewValidationError("role", "is not a known role", domain.ErrInvalidRole))
		dbMock.ExpectRollback()

		_, err = svc.UpdateUser(context.Background(), user.ID, UserUpdate{Role: &owner})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		db, dbMock := newTxDB(t)
		users := &MockUserStore{}
		svc, err := NewUserService(users, &MockOrderStore{}, db, discardLogger())
		require.NoError(t, err)

		dbMock.ExpectBegin()
		users.On("GetByID", mock.Anything, mock.Anything).Return(nil, store.ErrUserNotFound)
		dbMock.ExpectRollback()

		_, err = svc.UpdateUser(context.Background(), uuid.New(), UserUpdate{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserServiceDeleteUser(t *testing.T) {
	t.Parallel()

	admin := testAdmin(t)

	tests := []struct {
		name      string
		count     int
		countErr  error
		deleteErr error
		wantErr   error
		commit    bool
	}{
		{name: "deletes a user without orders", commit: true},
		{name: "refuses users with orders", count: 2, wantErr: ErrUserHasOrders},
		{name: "foreign key race", deleteErr: store.ErrReferenced, wantErr: ErrUserHasOrders},
		{name: "missing user", deleteErr: store.ErrUserNotFound, wantErr: ErrUserNotFound},
		{name: "store failure", countErr: errors.New("timeout"), wantErr: ErrOperationFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, dbMock := newTxDB(t)
			users, orders := &MockUserStore{}, &MockOrderStore{}
			svc, err := NewUserService(users, orders, db, discardLogger())
			require.NoError(t, err)

			target := uuid.New()
			dbMock.ExpectBegin()
			orders.On("CountByUser", mock.Anything, target).Return(tt.count, tt.countErr)
			users.On("Delete", mock.Anything, target).Return(tt.deleteErr).Maybe()
			if tt.commit {
				dbMock.ExpectCommit()
			} else {
				dbMock.ExpectRollback()
			}

			err = svc.DeleteUser(context.Background(), admin, target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.count > 0 || tt.countErr != nil {
				users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			}
			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		t.Parallel()
		db, _ := newTxDB(t)
		svc, err := NewUserService(&MockUserStore{}, &MockOrderStore{}, db, discardLogger())
		require.NoError(t, err)

		assert.ErrorIs(t, svc.DeleteUser(context.Background(), admin, admin.ID), ErrCannotDeleteSelf)
	})
}

func TestUserServiceGetUser(t *testing.T) {
	t.Parallel()

	db, _ := newTxDB(t)
	users := &MockUserStore{}
	svc, err := NewUserService(users, &MockOrderStore{}, db, discardLogger())
	require.NoError(t, err)

	user := testCustomer(t)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("GetByID", mock.Anything, mock.Anything).Return(nil, store.ErrUserNotFound)

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/redact"
	"github.com/magicspin/laundry-api/internal/store"
)

// UserUpdate holds optional admin changes to a user; nil fields are left alone.
type UserUpdate struct {
	FullName   *string
	Phone      *string
	Address    *string
	Role       *domain.Role
	IsVerified *bool
}

// UserService provides admin operations on user accounts.
type UserService struct {
	users  store.UserStore
	orders store.OrderStore
	db     *sql.DB
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, orders store.OrderStore, db *sql.DB, logger *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if orders == nil {
		return nil, errors.New("order store cannot be nil")
	}
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		orders: orders,
		db:     db,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// GetUser retrieves a user by their ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, NewServiceError("get_user", "failed to load user", err)
	}
	return user, nil
}

// UpdateUser applies upd to the user, re-validating the result.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if upd.FullName != nil {
			user.FullName = strings.TrimSpace(*upd.FullName)
		}
		if upd.Phone != nil {
			user.Phone = strings.TrimSpace(*upd.Phone)
		}
		if upd.Address != nil {
			user.Address = strings.TrimSpace(*upd.Address)
		}
		if upd.Role != nil {
			user.Role = *upd.Role
		}
		if upd.IsVerified != nil {
			user.IsVerified = *upd.IsVerified
		}

		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return nil, err
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		log.Error("failed to update user",
			slog.String("user_id", id.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("update_user", "failed to update user", err)
	}

	log.Info("user updated by admin", slog.String("user_id", id.String()))
	return updated, nil
}

// DeleteUser removes a user that has no orders. Admins cannot delete
// themselves.
func (s *UserService) DeleteUser(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if caller.ID == id {
		return ErrCannotDeleteSelf
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		count, err := s.orders.WithTx(tx).CountByUser(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasOrders
		}
		return s.users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserHasOrders), errors.Is(err, store.ErrReferenced):
			return ErrUserHasOrders
		case errors.Is(err, store.ErrUserNotFound):
			return ErrUserNotFound
		}
		log.Error("failed to delete user",
			slog.String("user_id", id.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("delete_user", "failed to delete user", err)
	}

	log.Info("user deleted", slog.String("user_id", id.String()), slog.String("admin_id", caller.ID.String()))
	return nil
}

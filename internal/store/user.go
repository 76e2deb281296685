package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByVerificationToken finds the user holding an outstanding email
	// verification token. Expiry is not checked here.
	// Returns ErrUserNotFound if no user holds the token.
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)

	// GetByResetToken finds the user holding an outstanding password reset
	// token. Expiry is not checked here.
	// Returns ErrUserNotFound if no user holds the token.
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)

	// Update persists every mutable field of the user, including tokens,
	// role and verification state.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrReferenced if orders still reference the user.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) UserStore
}

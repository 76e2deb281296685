package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
)

// OrderStore defines the interface for order persistence.
type OrderStore interface {
	// Create saves a new order. The order must pass domain validation.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its ID.
	// Returns ErrOrderNotFound if the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// GetDetails retrieves an order together with its payments and the
	// owning customer's contact details.
	// Returns ErrOrderNotFound if the order does not exist.
	GetDetails(ctx context.Context, id uuid.UUID) (*domain.OrderDetails, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)

	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus sets the status of an order and bumps updated_at.
	// Returns ErrOrderNotFound if the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error

	// CountByUser returns how many orders a user has placed.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new OrderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) OrderStore
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
)

// PaymentStore defines the interface for payment persistence.
type PaymentStore interface {
	// Create saves a provisional payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its ID.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByIntentID retrieves the payment created for a processor intent.
	// Returns ErrPaymentNotFound if no payment carries the intent.
	GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)

	// AttachIntent records the processor intent ID on a payment.
	// Returns ErrPaymentNotFound if the payment does not exist and
	// ErrIntentExists if the intent is already attached elsewhere.
	AttachIntent(ctx context.Context, id uuid.UUID, intentID string) error

	// UpdateStatus sets the status and transaction ID of a payment.
	// Returns ErrPaymentNotFound if the payment does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, transactionID string) error

	// ListByUser returns payments for orders owned by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error)

	// ListAll returns every payment, newest first.
	ListAll(ctx context.Context) ([]domain.Payment, error)

	// WithTx returns a new PaymentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PaymentStore
}

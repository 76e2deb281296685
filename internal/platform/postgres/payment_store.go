package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/store"
)

const paymentColumns = `p.id, p.order_id, p.amount, p.status, p.payment_method,
	p.processor_intent_id, p.transaction_id, p.created_at, p.updated_at`

// PostgresPaymentStore implements store.PaymentStore on PostgreSQL.
type PostgresPaymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaymentStore creates a PostgresPaymentStore. It panics on a nil db.
func NewPostgresPaymentStore(db store.DBTX, logger *slog.Logger) *PostgresPaymentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPaymentStore{
		db:     db,
		logger: logger.With(slog.String("component", "payment_store")),
	}
}

var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

// WithTx implements store.PaymentStore.WithTx
func (s *PostgresPaymentStore) WithTx(tx *sql.Tx) store.PaymentStore {
	return &PostgresPaymentStore{db: tx, logger: s.logger}
}

// Create implements store.PaymentStore.Create
func (s *PostgresPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payment.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO payments (id, order_id, amount, status, payment_method,
			processor_intent_id, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount.MinorUnits(),
		string(payment.Status),
		string(payment.Method),
		nullString(payment.ProcessorIntentID),
		payment.TransactionID,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", payment.ID.String()),
			slog.String("order_id", payment.OrderID.String()))
		return store.NewStoreError("payment", "create", "insert failed", MapError(err))
	}

	log.Info("payment created",
		slog.String("payment_id", payment.ID.String()),
		slog.String("order_id", payment.OrderID.String()))
	return nil
}

// GetByID implements store.PaymentStore.GetByID
func (s *PostgresPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.getOne(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1`, id)
}

// GetByIntentID implements store.PaymentStore.GetByIntentID
func (s *PostgresPaymentStore) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	return s.getOne(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE p.processor_intent_id = $1`, intentID)
}

func (s *PostgresPaymentStore) getOne(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	payment, err := scanPayment(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPaymentNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get payment",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("payment", "get", "query failed", MapError(err))
	}
	return payment, nil
}

// AttachIntent implements store.PaymentStore.AttachIntent
func (s *PostgresPaymentStore) AttachIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE payments SET processor_intent_id = $1, updated_at = $2 WHERE id = $3`,
		intentID, time.Now().UTC(), id)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrIntentExists)
		}
		log.Error("failed to attach payment intent",
			slog.String("error", err.Error()),
			slog.String("payment_id", id.String()))
		return store.NewStoreError("payment", "attach_intent", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrPaymentNotFound)
}

// UpdateStatus implements store.PaymentStore.UpdateStatus
func (s *PostgresPaymentStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.PaymentStatus,
	transactionID string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return domain.NewValidationError("status", "is not a known status", domain.ErrInvalidPaymentStatus)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE payments SET status = $1, transaction_id = $2, updated_at = $3 WHERE id = $4`,
		string(status), transactionID, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update payment status",
			slog.String("error", err.Error()),
			slog.String("payment_id", id.String()),
			slog.String("status", string(status)))
		return store.NewStoreError("payment", "update_status", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrPaymentNotFound); err != nil {
		return err
	}

	log.Info("payment status updated",
		slog.String("payment_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// ListByUser implements store.PaymentStore.ListByUser
func (s *PostgresPaymentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	payments, err := queryPayments(ctx, s.db, `
		SELECT `+paymentColumns+`
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.user_id = $1
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list payments",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("payment", "list", "query failed", MapError(err))
	}
	return payments, nil
}

// ListAll implements store.PaymentStore.ListAll
func (s *PostgresPaymentStore) ListAll(ctx context.Context) ([]domain.Payment, error) {
	payments, err := queryPayments(ctx, s.db,
		`SELECT `+paymentColumns+` FROM payments p ORDER BY p.created_at DESC`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list payments",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("payment", "list", "query failed", MapError(err))
	}
	return payments, nil
}

func queryPayments(ctx context.Context, db store.DBTX, query string, args ...any) ([]domain.Payment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var amount int64
	var status, method string
	var intentID sql.NullString

	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&amount,
		&status,
		&method,
		&intentID,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Amount = domain.Money(amount)
	p.Status = domain.PaymentStatus(status)
	p.Method = domain.PaymentMethod(method)
	p.ProcessorIntentID = intentID.String
	return &p, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/store"
)

const orderColumns = `o.id, o.user_id, o.service_type, o.quantity, o.total_amount, o.status,
	o.pickup_address, o.delivery_address, o.scheduled_pickup, o.scheduled_delivery,
	o.special_instructions, o.created_at, o.updated_at`

// PostgresOrderStore implements store.OrderStore on PostgreSQL.
type PostgresOrderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOrderStore creates a PostgresOrderStore. It panics on a nil db.
func NewPostgresOrderStore(db store.DBTX, logger *slog.Logger) *PostgresOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOrderStore{
		db:     db,
		logger: logger.With(slog.String("component", "order_store")),
	}
}

var _ store.OrderStore = (*PostgresOrderStore)(nil)

// WithTx implements store.OrderStore.WithTx
func (s *PostgresOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &PostgresOrderStore{db: tx, logger: s.logger}
}

// Create implements store.OrderStore.Create
func (s *PostgresOrderStore) Create(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := order.Validate(); err != nil {
		log.Warn("order validation failed during create",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return err
	}

	query := `
		INSERT INTO orders (id, user_id, service_type, quantity, total_amount, status,
			pickup_address, delivery_address, scheduled_pickup, scheduled_delivery,
			special_instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		string(order.ServiceType),
		order.Quantity,
		order.TotalAmount.MinorUnits(),
		string(order.Status),
		order.PickupAddress,
		order.DeliveryAddress,
		order.ScheduledPickup,
		order.ScheduledDelivery,
		order.SpecialInstructions,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during order creation",
				slog.String("order_id", order.ID.String()),
				slog.String("user_id", order.UserID.String()))
			return fmt.Errorf("%w: user %s or service %s not found",
				store.ErrInvalidEntity, order.UserID, order.ServiceType)
		}
		log.Error("failed to create order",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return store.NewStoreError("order", "create", "insert failed", MapError(err))
	}

	log.Info("order created successfully",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", order.UserID.String()),
		slog.String("service_type", string(order.ServiceType)))
	return nil
}

// GetByID implements store.OrderStore.GetByID
func (s *PostgresOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	order, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("order not found", slog.String("order_id", id.String()))
			return nil, store.ErrOrderNotFound
		}
		log.Error("failed to get order",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, store.NewStoreError("order", "get", "query failed", MapError(err))
	}
	return order, nil
}

// GetDetails implements store.OrderStore.GetDetails
func (s *PostgresOrderStore) GetDetails(ctx context.Context, id uuid.UUID) (*domain.OrderDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + orderColumns + `, u.email, u.full_name, u.phone
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`
	var details domain.OrderDetails
	var serviceType, status string
	var total int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&details.Order.ID,
		&details.Order.UserID,
		&serviceType,
		&details.Order.Quantity,
		&total,
		&status,
		&details.Order.PickupAddress,
		&details.Order.DeliveryAddress,
		&details.Order.ScheduledPickup,
		&details.Order.ScheduledDelivery,
		&details.Order.SpecialInstructions,
		&details.Order.CreatedAt,
		&details.Order.UpdatedAt,
		&details.Customer.Email,
		&details.Customer.FullName,
		&details.Customer.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOrderNotFound
		}
		log.Error("failed to get order details",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, store.NewStoreError("order", "get_details", "query failed", MapError(err))
	}
	details.Order.ServiceType = domain.ServiceType(serviceType)
	details.Order.Status = domain.OrderStatus(status)
	details.Order.TotalAmount = domain.Money(total)

	payments, err := queryPayments(ctx, s.db,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.order_id = $1 ORDER BY p.created_at DESC`, id)
	if err != nil {
		log.Error("failed to load order payments",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, store.NewStoreError("order", "get_details", "payments query failed", MapError(err))
	}
	details.Payments = payments

	return &details, nil
}

// ListByUser implements store.OrderStore.ListByUser
func (s *PostgresOrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return s.list(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

// ListAll implements store.OrderStore.ListAll
func (s *PostgresOrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, `SELECT `+orderColumns+` FROM orders o ORDER BY o.created_at DESC`)
}

func (s *PostgresOrderStore) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", slog.String("error", err.Error()))
		return nil, store.NewStoreError("order", "list", "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("order", "list", "scan failed", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("order", "list", "iteration failed", err)
	}

	log.Debug("listed orders", slog.Int("count", len(orders)))
	return orders, nil
}

// UpdateStatus implements store.OrderStore.UpdateStatus
func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return domain.NewValidationError("status", "is not a known status", domain.ErrInvalidOrderStatus)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update order status",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()),
			slog.String("status", string(status)))
		return store.NewStoreError("order", "update_status", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrOrderNotFound); err != nil {
		return err
	}

	log.Info("order status updated",
		slog.String("order_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// CountByUser implements store.OrderStore.CountByUser
func (s *PostgresOrderStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count orders",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("order", "count", "query failed", MapError(err))
	}
	return count, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var serviceType, status string
	var total int64

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&serviceType,
		&order.Quantity,
		&total,
		&status,
		&order.PickupAddress,
		&order.DeliveryAddress,
		&order.ScheduledPickup,
		&order.ScheduledDelivery,
		&order.SpecialInstructions,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.ServiceType = domain.ServiceType(serviceType)
	order.Status = domain.OrderStatus(status)
	order.TotalAmount = domain.Money(total)
	return &order, nil
}

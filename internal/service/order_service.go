package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/redact"
	"github.com/magicspin/laundry-api/internal/store"
)

// OrderService manages the order lifecycle.
type OrderService struct {
	orders store.OrderStore
	prices store.PriceStore
	strict bool
	logger *slog.Logger
}

// NewOrderService creates an OrderService. With strictTransitions set,
// admin status updates must follow the forward state machine.
func NewOrderService(
	orders store.OrderStore,
	prices store.PriceStore,
	strictTransitions bool,
	logger *slog.Logger,
) (*OrderService, error) {
	if orders == nil {
		return nil, errors.New("order store cannot be nil")
	}
	if prices == nil {
		return nil, errors.New("price store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		orders: orders,
		prices: prices,
		strict: strictTransitions,
		logger: logger.With(slog.String("component", "order_service")),
	}, nil
}

// CreateOrder prices and stores a new pending order for customer.
func (s *OrderService) CreateOrder(ctx context.Context, customer *domain.User, req domain.OrderRequest) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !req.ServiceType.Valid() {
		return nil, ErrInvalidServiceType
	}

	price, err := s.prices.GetActive(ctx, req.ServiceType)
	if err != nil {
		if errors.Is(err, store.ErrPriceNotFound) {
			return nil, ErrInvalidServiceType
		}
		log.Error("failed to load service price",
			slog.String("service_type", string(req.ServiceType)),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("create_order", "failed to load price", err)
	}

	order, err := domain.NewOrder(customer.ID, req, price.PricePerUnit)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		log.Error("failed to create order", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("create_order", "failed to save order", err)
	}

	log.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("total", order.TotalAmount.String()))
	return order, nil
}

// ListOrders returns the caller's orders, or every order for admins.
func (s *OrderService) ListOrders(ctx context.Context, caller *domain.User) ([]domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)
	if caller.IsAdmin() {
		orders, err = s.orders.ListAll(ctx)
	} else {
		orders, err = s.orders.ListByUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, NewServiceError("list_orders", "failed to list orders", err)
	}
	return orders, nil
}

// GetOrder returns an order with its payments and customer. Orders owned by
// someone else are reported as ErrNotFound unless the caller is an admin.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.OrderDetails, error) {
	details, err := s.orders.GetDetails(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewServiceError("get_order", "failed to load order", err)
	}
	if !caller.IsAdmin() && !details.Order.BelongsTo(caller.ID) {
		return nil, ErrNotFound
	}
	return details, nil
}

// UpdateOrderStatus sets an order's status. Admin only.
func (s *OrderService) UpdateOrderStatus(
	ctx context.Context,
	caller *domain.User,
	id uuid.UUID,
	status domain.OrderStatus,
) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewServiceError("update_order_status", "failed to load order", err)
	}

	if s.strict && !order.Status.CanTransitionTo(status) {
		log.Debug("rejected status transition",
			slog.String("order_id", id.String()),
			slog.String("from", string(order.Status)),
			slog.String("to", string(status)))
		return nil, ErrInvalidTransition
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewServiceError("update_order_status", "failed to update order", err)
	}

	log.Info("order status changed",
		slog.String("order_id", id.String()),
		slog.String("from", string(order.Status)),
		slog.String("to", string(status)),
		slog.String("admin_id", caller.ID.String()))

	order.Status = status
	return order, nil
}

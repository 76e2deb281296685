package api

import (
	"log/slog"
	"net/http"

	"github.com/magicspin/laundry-api/internal/api/shared"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
)

const orderNotFound = "Order not found"

// OrderHandler handles order placement, listing and status changes.
type OrderHandler struct {
	orders OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderService, logger *slog.Logger) *OrderHandler {
	if orders == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("order service cannot be nil for OrderHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OrderHandler")
	}
	return &OrderHandler{
		orders: orders,
		logger: logger.With(slog.String("component", "order_handler")),
	}
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), caller, domain.OrderRequest{
		ServiceType:         domain.ServiceType(req.ServiceType),
		Quantity:            req.Quantity,
		PickupAddress:       req.PickupAddress,
		DeliveryAddress:     req.DeliveryAddress,
		ScheduledPickup:     req.ScheduledPickup,
		ScheduledDelivery:   req.ScheduledDelivery,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("service_type", string(order.ServiceType)),
		slog.String("total_amount", order.TotalAmount.String()))
	shared.RespondWithData(w, r, http.StatusCreated, "Order created successfully", orderToResponse(order))
}

// ListOrders handles GET /orders. Admins see every order.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), caller)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", ordersToResponse(orders))
}

// GetOrder handles GET /orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.orders.GetOrder(r.Context(), caller, id)
	if err != nil {
		HandleAPIError(w, r, err, orderNotFound)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", detailsToResponse(details))
}

// UpdateOrderStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), caller, id, domain.OrderStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, orderNotFound)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("order status updated",
		slog.String("order_id", order.ID.String()),
		slog.String("status", string(order.Status)))
	shared.RespondWithData(w, r, http.StatusOK, "Order status updated successfully", orderToResponse(order))
}

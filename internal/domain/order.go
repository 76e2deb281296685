package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceType identifies a priced laundry service.
type ServiceType string

const (
	ServiceWashAndFold ServiceType = "wash_and_fold"
	ServiceDryClean    ServiceType = "dry_clean"
	ServiceIroning     ServiceType = "ironing"
	ServicePremiumCare ServiceType = "premium_care"
)

// ServiceTypes lists every offered service.
var ServiceTypes = []ServiceType{
	ServiceWashAndFold,
	ServiceDryClean,
	ServiceIroning,
	ServicePremiumCare,
}

// Valid reports whether s is an offered service.
func (s ServiceType) Valid() bool {
	for _, t := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPickedUp  OrderStatus = "picked_up"
	OrderWashing   OrderStatus = "washing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions is the forward state machine. Every non-terminal state
// may also move to cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderPickedUp, OrderCancelled},
	OrderPickedUp:  {OrderWashing, OrderCancelled},
	OrderWashing:   {OrderReady, OrderCancelled},
	OrderReady:     {OrderDelivered, OrderCancelled},
	OrderDelivered: nil,
	OrderCancelled: nil,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions leave s.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next is a forward transition from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a customer's laundry request.
type Order struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	ServiceType         ServiceType
	Quantity            int
	TotalAmount         Money
	Status              OrderStatus
	PickupAddress       string
	DeliveryAddress     string
	ScheduledPickup     time.Time
	ScheduledDelivery   time.Time
	SpecialInstructions string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// MaxQuantity caps the number of units in a single order.
const MaxQuantity = 1000

// OrderRequest carries the customer-supplied fields of a new order.
type OrderRequest struct {
	ServiceType         ServiceType
	Quantity            int
	PickupAddress       string
	DeliveryAddress     string
	ScheduledPickup     time.Time
	ScheduledDelivery   time.Time
	SpecialInstructions string
}

// NewOrder creates a pending order priced at quantity × unitPrice.
func NewOrder(userID uuid.UUID, req OrderRequest, unitPrice Money) (*Order, error) {
	if req.Quantity <= 0 || req.Quantity > MaxQuantity {
		return nil, NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", MaxQuantity), ErrInvalidQuantity)
	}
	total, ok := unitPrice.Times(req.Quantity)
	if !ok {
		return nil, NewValidationError("total_amount", "is too large", ErrInvalidAmount)
	}

	now := time.Now().UTC()
	order := &Order{
		ID:                  uuid.New(),
		UserID:              userID,
		ServiceType:         req.ServiceType,
		Quantity:            req.Quantity,
		TotalAmount:         total,
		Status:              OrderPending,
		PickupAddress:       strings.TrimSpace(req.PickupAddress),
		DeliveryAddress:     strings.TrimSpace(req.DeliveryAddress),
		ScheduledPickup:     req.ScheduledPickup.UTC(),
		ScheduledDelivery:   req.ScheduledDelivery.UTC(),
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate checks if the Order has valid data.
func (o *Order) Validate() error {
	if o.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if o.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if !o.ServiceType.Valid() {
		return NewValidationError("service_type", "is not offered", ErrInvalidServiceType)
	}
	if o.Quantity <= 0 || o.Quantity > MaxQuantity {
		return NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", MaxQuantity), ErrInvalidQuantity)
	}
	if o.TotalAmount <= 0 {
		return NewValidationError("total_amount", "must be positive", ErrInvalidAmount)
	}
	if !o.Status.Valid() {
		return NewValidationError("status", "is not a known status", ErrInvalidOrderStatus)
	}
	if o.PickupAddress == "" {
		return NewValidationError("pickup_address", "is required", ErrValidation)
	}
	if o.DeliveryAddress == "" {
		return NewValidationError("delivery_address", "is required", ErrValidation)
	}
	if o.ScheduledPickup.IsZero() || o.ScheduledDelivery.IsZero() {
		return NewValidationError("schedule", "pickup and delivery times are required", ErrValidation)
	}
	if o.ScheduledDelivery.Before(o.ScheduledPickup) {
		return NewValidationError("scheduled_delivery", "precedes pickup", ErrInvalidSchedule)
	}
	return nil
}

// BelongsTo reports whether userID owns the order.
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}

// CustomerSummary is the contact information shown with an order.
type CustomerSummary struct {
	Email    string
	FullName string
	Phone    string
}

// OrderDetails is an order joined with its payments and customer.
type OrderDetails struct {
	Order    Order
	Customer CustomerSummary
	Payments []Payment
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the local state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodUPI  PaymentMethod = "upi"
	MethodCash PaymentMethod = "cash"
)

// Valid reports whether m is an accepted method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodCash:
		return true
	}
	return false
}

// Payment records one attempt to pay for an order. ProcessorIntentID is
// empty until the processor has accepted the intent.
type Payment struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	Amount            Money
	Status            PaymentStatus
	Method            PaymentMethod
	ProcessorIntentID string
	TransactionID     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPayment creates a provisional pending payment for an order.
func NewPayment(orderID uuid.UUID, amount Money, method PaymentMethod) (*Payment, error) {
	now := time.Now().UTC()
	p := &Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		Amount:    amount,
		Status:    PaymentPending,
		Method:    method,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Payment has valid data.
func (p *Payment) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if p.OrderID == uuid.Nil {
		return NewValidationError("order_id", "cannot be empty", ErrInvalidID)
	}
	if p.Amount <= 0 {
		return NewValidationError("amount", "must be positive", ErrInvalidAmount)
	}
	if !p.Status.Valid() {
		return NewValidationError("status", "is not a known status", ErrInvalidPaymentStatus)
	}
	if !p.Method.Valid() {
		return NewValidationError("payment_method", "must be card, upi or cash", ErrInvalidPaymentMethod)
	}
	return nil
}

// Complete marks the payment as settled by the processor.
func (p *Payment) Complete(transactionID string) {
	p.Status = PaymentCompleted
	p.TransactionID = transactionID
	p.UpdatedAt = time.Now().UTC()
}

// Fail marks the payment as failed.
func (p *Payment) Fail() {
	p.Status = PaymentFailed
	p.UpdatedAt = time.Now().UTC()
}

// ServicePrice is the active per-unit price of a service.
type ServicePrice struct {
	ServiceType  ServiceType
	PricePerUnit Money
	IsActive     bool
}

// IntentSucceeded is the processor status of a settled payment intent.
const IntentSucceeded = "succeeded"

// Processor webhook event types handled by the payment flow.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// PaymentIntent is the processor's view of a payment attempt. Status is the
// raw processor status, e.g. "requires_payment_method" or "succeeded".
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       Money
	Currency     string
	Metadata     map[string]string
}

// Succeeded reports whether the processor has settled the intent.
func (i *PaymentIntent) Succeeded() bool {
	return i.Status == IntentSucceeded
}

// PaymentEvent is a verified processor webhook. Intent is nil for events
// that do not carry a payment intent.
type PaymentEvent struct {
	ID     string
	Type   string
	Intent *PaymentIntent
}

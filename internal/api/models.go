package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone"     validate:"required,max=20"`
	Address  string `json:"address"   validate:"omitempty,max=500"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest carries a one-shot token from an email link.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UpdateProfileRequest holds optional profile changes.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone"     validate:"omitempty,max=20"`
	Address  *string `json:"address"   validate:"omitempty,max=500"`
}

// UserResponse is the public view of a user. Password hashes and tokens
// never leave the service.
type UserResponse struct {
	ID         uuid.UUID   `json:"id"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address,omitempty"`
	Role       domain.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// CreateOrderRequest defines the payload for placing an order.
type CreateOrderRequest struct {
	ServiceType         string    `json:"service_type"         validate:"required"`
	Quantity            int       `json:"quantity"             validate:"required,gt=0,lte=1000"`
	PickupAddress       string    `json:"pickup_address"       validate:"required,max=500"`
	DeliveryAddress     string    `json:"delivery_address"     validate:"required,max=500"`
	ScheduledPickup     time.Time `json:"scheduled_pickup"     validate:"required"`
	ScheduledDelivery   time.Time `json:"scheduled_delivery"   validate:"required"`
	SpecialInstructions string    `json:"special_instructions" validate:"omitempty,max=1000"`
}

// UpdateOrderStatusRequest defines the payload for admin status changes.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse is the JSON view of an order.
type OrderResponse struct {
	ID                  uuid.UUID          `json:"id"`
	UserID              uuid.UUID          `json:"user_id"`
	ServiceType         domain.ServiceType `json:"service_type"`
	Quantity            int                `json:"quantity"`
	TotalAmount         domain.Money       `json:"total_amount"`
	Status              domain.OrderStatus `json:"status"`
	PickupAddress       string             `json:"pickup_address"`
	DeliveryAddress     string             `json:"delivery_address"`
	ScheduledPickup     time.Time          `json:"scheduled_pickup"`
	ScheduledDelivery   time.Time          `json:"scheduled_delivery"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// CustomerResponse is the contact block shown with an order.
type CustomerResponse struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// OrderDetailsResponse is an order with its payments and customer.
type OrderDetailsResponse struct {
	OrderResponse
	Payments []PaymentResponse `json:"payments"`
	Customer CustomerResponse  `json:"customer"`
}

// PaymentResponse is the JSON view of a payment.
type PaymentResponse struct {
	ID                    uuid.UUID            `json:"id"`
	OrderID               uuid.UUID            `json:"order_id"`
	Amount                domain.Money         `json:"amount"`
	Status                domain.PaymentStatus `json:"status"`
	PaymentMethod         domain.PaymentMethod `json:"payment_method"`
	StripePaymentIntentID string               `json:"stripe_payment_intent_id,omitempty"`
	TransactionID         string               `json:"transaction_id,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// CreatePaymentIntentRequest starts a payment for an order.
type CreatePaymentIntentRequest struct {
	OrderID       string `json:"order_id"       validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card upi cash"`
}

// CreatePaymentIntentResponse carries what the client needs to pay.
type CreatePaymentIntentResponse struct {
	ClientSecret    string       `json:"client_secret"`
	PaymentID       uuid.UUID    `json:"payment_id"`
	PaymentIntentID string       `json:"payment_intent_id"`
	Amount          domain.Money `json:"amount"`
	Currency        string       `json:"currency"`
}

// ConfirmPaymentRequest asks the API to check an intent with the processor.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

// ConfirmPaymentResponse reports the processor status of the intent.
type ConfirmPaymentResponse struct {
	Status  string           `json:"status"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// UpdateUserRequest holds optional admin changes to a user.
type UpdateUserRequest struct {
	FullName   *string `json:"full_name"   validate:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone"       validate:"omitempty,max=20"`
	Address    *string `json:"address"     validate:"omitempty,max=500"`
	Role       *string `json:"role"        validate:"omitempty,oneof=customer admin"`
	IsVerified *bool   `json:"is_verified"`
}

// ServicePriceResponse is one entry of the service catalog.
type ServicePriceResponse struct {
	ServiceType  domain.ServiceType `json:"service_type"`
	PricePerUnit domain.Money       `json:"price_per_unit"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Address:    u.Address,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func authToResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:      userToResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	}
}

func orderToResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                  o.ID,
		UserID:              o.UserID,
		ServiceType:         o.ServiceType,
		Quantity:            o.Quantity,
		TotalAmount:         o.TotalAmount,
		Status:              o.Status,
		PickupAddress:       o.PickupAddress,
		DeliveryAddress:     o.DeliveryAddress,
		ScheduledPickup:     o.ScheduledPickup,
		ScheduledDelivery:   o.ScheduledDelivery,
		SpecialInstructions: o.SpecialInstructions,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func ordersToResponse(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orderToResponse(&orders[i]))
	}
	return out
}

func detailsToResponse(d *domain.OrderDetails) OrderDetailsResponse {
	return OrderDetailsResponse{
		OrderResponse: orderToResponse(&d.Order),
		Payments:      paymentsToResponse(d.Payments),
		Customer: CustomerResponse{
			Email:    d.Customer.Email,
			FullName: d.Customer.FullName,
			Phone:    d.Customer.Phone,
		},
	}
}

func paymentToResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                    p.ID,
		OrderID:               p.OrderID,
		Amount:                p.Amount,
		Status:                p.Status,
		PaymentMethod:         p.Method,
		StripePaymentIntentID: p.ProcessorIntentID,
		TransactionID:         p.TransactionID,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func paymentsToResponse(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, paymentToResponse(&payments[i]))
	}
	return out
}

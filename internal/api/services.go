package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service"
)

// The handler dependencies below are satisfied by the concrete services in
// internal/service and by the function-field mocks in internal/mocks.

// AuthService is the account use cases behind /auth.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd service.ProfileUpdate) (*domain.User, error)
}

// OrderService is the order use cases behind /orders.
type OrderService interface {
	CreateOrder(ctx context.Context, customer *domain.User, req domain.OrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, caller *domain.User) ([]domain.Order, error)
	GetOrder(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.OrderDetails, error)
	UpdateOrderStatus(
		ctx context.Context,
		caller *domain.User,
		id uuid.UUID,
		status domain.OrderStatus,
	) (*domain.Order, error)
}

// PaymentService is the payment use cases behind /payments.
type PaymentService interface {
	CreatePaymentIntent(
		ctx context.Context,
		customer *domain.User,
		orderID uuid.UUID,
		method domain.PaymentMethod,
	) (*service.IntentResult, error)
	ConfirmPayment(ctx context.Context, caller *domain.User, intentID string) (*service.ConfirmResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ListPayments(ctx context.Context, caller *domain.User) ([]domain.Payment, error)
}

// UserService is the admin use cases behind /users.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd service.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, caller *domain.User, id uuid.UUID) error
}

// CatalogService lists orderable services.
type CatalogService interface {
	ListServices(ctx context.Context) ([]domain.ServicePrice, error)
}

var (
	_ AuthService    = (*service.AuthService)(nil)
	_ OrderService   = (*service.OrderService)(nil)
	_ PaymentService = (*service.PaymentService)(nil)
	_ UserService    = (*service.UserService)(nil)
	_ CatalogService = (*service.CatalogService)(nil)
)

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service"
)

// MockAuthService mocks the auth use cases served by the API.
type MockAuthService struct {
	RegisterFn       func(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	LoginFn          func(ctx context.Context, email, password string) (*service.AuthResult, error)
	VerifyEmailFn    func(ctx context.Context, token string) error
	ForgotPasswordFn func(ctx context.Context, email string) error
	ResetPasswordFn  func(ctx context.Context, token, newPassword string) error
	GetProfileFn     func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfileFn  func(ctx context.Context, userID uuid.UUID, upd service.ProfileUpdate) (*domain.User, error)

	// Result and Err are returned by Register and Login when their
	// function fields are nil. Err is also the default for the other calls.
	Result *service.AuthResult
	Err    error
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, in)
	}
	return m.Result, m.Err
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return m.Result, m.Err
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, token)
	}
	return m.Err
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFn != nil {
		return m.ForgotPasswordFn(ctx, email)
	}
	return m.Err
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFn != nil {
		return m.ResetPasswordFn(ctx, token, newPassword)
	}
	return m.Err
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, userID)
	}
	if m.Result != nil {
		return m.Result.User, m.Err
	}
	return nil, m.Err
}

func (m *MockAuthService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	upd service.ProfileUpdate,
) (*domain.User, error) {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, userID, upd)
	}
	return m.GetProfile(ctx, userID)
}

// MockOrderService mocks the order use cases.
type MockOrderService struct {
	CreateOrderFn       func(ctx context.Context, customer *domain.User, req domain.OrderRequest) (*domain.Order, error)
	ListOrdersFn        func(ctx context.Context, caller *domain.User) ([]domain.Order, error)
	GetOrderFn          func(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.OrderDetails, error)
	UpdateOrderStatusFn func(
		ctx context.Context,
		caller *domain.User,
		id uuid.UUID,
		status domain.OrderStatus,
	) (*domain.Order, error)

	Err error
}

func (m *MockOrderService) CreateOrder(
	ctx context.Context,
	customer *domain.User,
	req domain.OrderRequest,
) (*domain.Order, error) {
	if m.CreateOrderFn != nil {
		return m.CreateOrderFn(ctx, customer, req)
	}
	return nil, m.Err
}

func (m *MockOrderService) ListOrders(ctx context.Context, caller *domain.User) ([]domain.Order, error) {
	if m.ListOrdersFn != nil {
		return m.ListOrdersFn(ctx, caller)
	}
	return nil, m.Err
}

func (m *MockOrderService) GetOrder(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.OrderDetails, error) {
	if m.GetOrderFn != nil {
		return m.GetOrderFn(ctx, caller, id)
	}
	return nil, m.Err
}

func (m *MockOrderService) UpdateOrderStatus(
	ctx context.Context,
	caller *domain.User,
	id uuid.UUID,
	status domain.OrderStatus,
) (*domain.Order, error) {
	if m.UpdateOrderStatusFn != nil {
		return m.UpdateOrderStatusFn(ctx, caller, id, status)
	}
	return nil, m.Err
}

// MockPaymentService mocks the payment use cases.
type MockPaymentService struct {
	CreatePaymentIntentFn func(
		ctx context.Context,
		customer *domain.User,
		orderID uuid.UUID,
		method domain.PaymentMethod,
	) (*service.IntentResult, error)
	ConfirmPaymentFn func(ctx context.Context, caller *domain.User, intentID string) (*service.ConfirmResult, error)
	HandleWebhookFn  func(ctx context.Context, payload []byte, signature string) error
	ListPaymentsFn   func(ctx context.Context, caller *domain.User) ([]domain.Payment, error)

	Err error
}

func (m *MockPaymentService) CreatePaymentIntent(
	ctx context.Context,
	customer *domain.User,
	orderID uuid.UUID,
	method domain.PaymentMethod,
) (*service.IntentResult, error) {
	if m.CreatePaymentIntentFn != nil {
		return m.CreatePaymentIntentFn(ctx, customer, orderID, method)
	}
	return nil, m.Err
}

func (m *MockPaymentService) ConfirmPayment(
	ctx context.Context,
	caller *domain.User,
	intentID string,
) (*service.ConfirmResult, error) {
	if m.ConfirmPaymentFn != nil {
		return m.ConfirmPaymentFn(ctx, caller, intentID)
	}
	return nil, m.Err
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if m.HandleWebhookFn != nil {
		return m.HandleWebhookFn(ctx, payload, signature)
	}
	return m.Err
}

func (m *MockPaymentService) ListPayments(ctx context.Context, caller *domain.User) ([]domain.Payment, error) {
	if m.ListPaymentsFn != nil {
		return m.ListPaymentsFn(ctx, caller)
	}
	return nil, m.Err
}

// MockUserService mocks the admin user use cases.
type MockUserService struct {
	GetUserFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateUserFn func(ctx context.Context, id uuid.UUID, upd service.UserUpdate) (*domain.User, error)
	DeleteUserFn func(ctx context.Context, caller *domain.User, id uuid.UUID) error

	Err error
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, m.Err
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, upd service.UserUpdate) (*domain.User, error) {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, id, upd)
	}
	return nil, m.Err
}

func (m *MockUserService) DeleteUser(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, caller, id)
	}
	return m.Err
}

// MockCatalogService mocks the service price catalog.
type MockCatalogService struct {
	Prices []domain.ServicePrice
	Err    error
}

func (m *MockCatalogService) ListServices(ctx context.Context) ([]domain.ServicePrice, error) {
	return m.Prices, m.Err
}

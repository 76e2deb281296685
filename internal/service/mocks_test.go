package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/events"
	"github.com/magicspin/laundry-api/internal/service/auth"
	"github.com/magicspin/laundry-api/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTxDB returns a sqlmock-backed *sql.DB for services that open
// transactions around mocked stores.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// MockUserStore mocks store.UserStore
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// MockOrderStore mocks store.OrderStore
type MockOrderStore struct {
	mock.Mock
}

var _ store.OrderStore = (*MockOrderStore)(nil)

func (m *MockOrderStore) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderStore) GetDetails(ctx context.Context, id uuid.UUID) (*domain.OrderDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetails), args.Error(1)
}

func (m *MockOrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *MockOrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOrderStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderStore) WithTx(tx *sql.Tx) store.OrderStore { return m }

// MockPaymentStore mocks store.PaymentStore
type MockPaymentStore struct {
	mock.Mock
}

var _ store.PaymentStore = (*MockPaymentStore)(nil)

func (m *MockPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) AttachIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	return m.Called(ctx, id, intentID).Error(0)
}

func (m *MockPaymentStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.PaymentStatus,
	transactionID string,
) error {
	return m.Called(ctx, id, status, transactionID).Error(0)
}

func (m *MockPaymentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, userID)
	payments, _ := args.Get(0).([]domain.Payment)
	return payments, args.Error(1)
}

func (m *MockPaymentStore) ListAll(ctx context.Context) ([]domain.Payment, error) {
	args := m.Called(ctx)
	payments, _ := args.Get(0).([]domain.Payment)
	return payments, args.Error(1)
}

func (m *MockPaymentStore) WithTx(tx *sql.Tx) store.PaymentStore { return m }

// MockPriceStore mocks store.PriceStore
type MockPriceStore struct {
	mock.Mock
}

func (m *MockPriceStore) GetActive(ctx context.Context, serviceType domain.ServiceType) (*domain.ServicePrice, error) {
	args := m.Called(ctx, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServicePrice), args.Error(1)
}

func (m *MockPriceStore) ListActive(ctx context.Context) ([]domain.ServicePrice, error) {
	args := m.Called(ctx)
	prices, _ := args.Get(0).([]domain.ServicePrice)
	return prices, args.Error(1)
}

// MockJWTService mocks auth.JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, email string, role domain.Role) (string, error) {
	args := m.Called(ctx, userID, email, role)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

// fakePasswords hashes by prefixing, so tests can assert the plaintext is
// never stored.
type fakePasswords struct{}

func (fakePasswords) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakePasswords) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return auth.ErrInvalidToken
	}
	return nil
}

// MockEmitter mocks events.EventEmitter
type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	return m.Called(ctx, event).Error(0)
}

// MockProcessor mocks PaymentProcessor
type MockProcessor struct {
	mock.Mock
}

var _ PaymentProcessor = (*MockProcessor)(nil)

func (m *MockProcessor) CreateIntent(
	ctx context.Context,
	amount domain.Money,
	currency string,
	metadata map[string]string,
	idempotencyKey string,
) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, amount, currency, metadata, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockProcessor) RetrieveIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockProcessor) ParseWebhook(payload []byte, signature string) (*domain.PaymentEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentEvent), args.Error(1)
}

func testCustomer(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("alice@gmail.com", "hashed:secret1", "Alice", "9876543210", "1 Main St")
	require.NoError(t, err)
	u.IsVerified = true
	return u
}

func testAdmin(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("admin@gmail.com", "hashed:secret1", "Admin", "9876543210", "")
	require.NoError(t, err)
	u.Role = domain.RoleAdmin
	u.IsVerified = true
	return u
}

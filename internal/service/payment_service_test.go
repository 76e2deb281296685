package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	payments  *MockPaymentStore
	orders    *MockOrderStore
	processor *MockProcessor
	db        sqlmock.Sqlmock
	svc       *PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	return newPaymentFixtureWithLogger(t, discardLogger())
}

func newPaymentFixtureWithLogger(t *testing.T, log *slog.Logger) *paymentFixture {
	t.Helper()
	db, dbMock := newTxDB(t)
	f := &paymentFixture{
		payments:  &MockPaymentStore{},
		orders:    &MockOrderStore{},
		processor: &MockProcessor{},
		db:        dbMock,
	}
	svc, err := NewPaymentService(f.payments, f.orders, f.processor, db, "INR", log)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *paymentFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.payments.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.processor.AssertExpectations(t)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func pendingPayment(t *testing.T, order *domain.Order, intentID string) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(order.ID, order.TotalAmount, domain.MethodCard)
	require.NoError(t, err)
	p.ProcessorIntentID = intentID
	return p
}

func TestPaymentServiceCreatePaymentIntent(t *testing.T) {
	t.Parallel()

	t.Run("creates a pending payment and an idempotent intent", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderPending)

		var created *domain.Payment
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			created = p
			return p.OrderID == order.ID && p.Amount == domain.Rupees(150) && p.Status == domain.PaymentPending
		})).Return(nil)
		f.processor.On("CreateIntent", mock.Anything, domain.Rupees(150), "inr",
			mock.MatchedBy(func(md map[string]string) bool {
				return md[MetadataOrderID] == order.ID.String() &&
					md[MetadataUserID] == customer.ID.String() &&
					md[MetadataPaymentID] == created.ID.String()
			}),
			mock.MatchedBy(func(key string) bool { return key == IdempotencyKey(created.ID) }),
		).Return(&domain.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method"}, nil)
		f.payments.On("AttachIntent", mock.Anything, mock.Anything, "pi_123").Return(nil)

		res, err := f.svc.CreatePaymentIntent(context.Background(), customer, order.ID, domain.MethodCard)
		require.NoError(t, err)
		assert.Equal(t, "pi_123", res.IntentID)
		assert.Equal(t, "pi_123_secret", res.ClientSecret)
		assert.Equal(t, created.ID, res.PaymentID)
		assert.Equal(t, "inr", res.Currency)
		assert.Equal(t, domain.Rupees(150), res.Amount)
		f.assertExpectations(t)
	})

	t.Run("processor failure marks the payment failed", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderPending)

		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.processor.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("card network down"))
		f.payments.On("UpdateStatus", mock.Anything, mock.Anything, domain.PaymentFailed, "").Return(nil)

		_, err := f.svc.CreatePaymentIntent(context.Background(), customer, order.ID, domain.MethodCard)
		assert.ErrorIs(t, err, ErrProcessorUnavailable)
		f.payments.AssertNotCalled(t, "AttachIntent", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("attach failure still returns the intent", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderPending)

		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.processor.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PaymentIntent{ID: "pi_9", ClientSecret: "s"}, nil)
		f.payments.On("AttachIntent", mock.Anything, mock.Anything, "pi_9").Return(errors.New("conn reset"))

		res, err := f.svc.CreatePaymentIntent(context.Background(), customer, order.ID, domain.MethodCard)
		require.NoError(t, err)
		assert.Equal(t, "pi_9", res.IntentID)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		customer := testCustomer(t)
		foreign := orderFor(t, testAdmin(t), domain.OrderPending)
		cancelled := orderFor(t, customer, domain.OrderCancelled)

		f := newPaymentFixture(t)
		f.orders.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil)
		f.orders.On("GetByID", mock.Anything, cancelled.ID).Return(cancelled, nil)

		_, err := f.svc.CreatePaymentIntent(context.Background(), customer, foreign.ID, domain.MethodCard)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.svc.CreatePaymentIntent(context.Background(), customer, cancelled.ID, domain.MethodCard)
		assert.ErrorIs(t, err, ErrOrderCancelled)

		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.processor.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentServiceConfirmPayment(t *testing.T) {
	t.Parallel()

	t.Run("succeeded intent completes payment and confirms order", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderPending)
		payment := pendingPayment(t, order, "pi_1")

		f.payments.On("GetByIntentID", mock.Anything, "pi_1").Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_1").
			Return(&domain.PaymentIntent{ID: "pi_1", Status: domain.IntentSucceeded}, nil)
		f.db.ExpectBegin()
		f.payments.On("UpdateStatus", mock.Anything, payment.ID, domain.PaymentCompleted, "pi_1").Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, order.ID, domain.OrderConfirmed).Return(nil)
		f.db.ExpectCommit()

		res, err := f.svc.ConfirmPayment(context.Background(), customer, "pi_1")
		require.NoError(t, err)
		assert.Equal(t, domain.IntentSucceeded, res.Status)
		assert.Equal(t, domain.PaymentCompleted, res.Payment.Status)
		assert.Equal(t, "pi_1", res.Payment.TransactionID)
		f.assertExpectations(t)
	})

	t.Run("repeat confirm changes nothing", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderConfirmed)
		payment := pendingPayment(t, order, "pi_1")
		payment.Complete("pi_1")

		f.payments.On("GetByIntentID", mock.Anything, "pi_1").Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_1").
			Return(&domain.PaymentIntent{ID: "pi_1", Status: domain.IntentSucceeded}, nil)
		f.db.ExpectBegin()
		f.db.ExpectCommit()

		_, err := f.svc.ConfirmPayment(context.Background(), customer, "pi_1")
		require.NoError(t, err)
		f.payments.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("unsettled intent leaves state alone", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderPending)
		payment := pendingPayment(t, order, "pi_2")

		f.payments.On("GetByIntentID", mock.Anything, "pi_2").Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_2").
			Return(&domain.PaymentIntent{ID: "pi_2", Status: "requires_action"}, nil)

		res, err := f.svc.ConfirmPayment(context.Background(), customer, "pi_2")
		require.NoError(t, err)
		assert.Equal(t, "requires_action", res.Status)
		assert.Equal(t, domain.PaymentPending, res.Payment.Status)
		f.assertExpectations(t)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, testAdmin(t), domain.OrderPending)
		payment := pendingPayment(t, order, "pi_foreign")

		_, err := f.svc.ConfirmPayment(context.Background(), customer, " ")
		assert.ErrorIs(t, err, domain.ErrValidation)

		f.payments.On("GetByIntentID", mock.Anything, "pi_missing").Return(nil, store.ErrPaymentNotFound)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_missing").Return(nil, errors.New("no such payment_intent"))
		_, err = f.svc.ConfirmPayment(context.Background(), customer, "pi_missing")
		assert.ErrorIs(t, err, ErrNotFound)

		f.payments.On("GetByIntentID", mock.Anything, "pi_foreign").Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		_, err = f.svc.ConfirmPayment(context.Background(), customer, "pi_foreign")
		assert.ErrorIs(t, err, ErrNotFound)
		f.processor.AssertNotCalled(t, "RetrieveIntent", mock.Anything, "pi_foreign")
	})

	t.Run("unattached intent is found via metadata", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderPending)
		payment := pendingPayment(t, order, "")

		f.payments.On("GetByIntentID", mock.Anything, "pi_late").Return(nil, store.ErrPaymentNotFound)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_late").Return(&domain.PaymentIntent{
			ID:       "pi_late",
			Status:   domain.IntentSucceeded,
			Metadata: map[string]string{MetadataPaymentID: payment.ID.String()},
		}, nil).Once()
		f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.payments.On("AttachIntent", mock.Anything, payment.ID, "pi_late").Return(nil)
		f.db.ExpectBegin()
		f.payments.On("UpdateStatus", mock.Anything, payment.ID, domain.PaymentCompleted, "pi_late").Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, order.ID, domain.OrderConfirmed).Return(nil)
		f.db.ExpectCommit()

		res, err := f.svc.ConfirmPayment(context.Background(), customer, "pi_late")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, res.Payment.Status)
		assert.Equal(t, "pi_late", res.Payment.ProcessorIntentID)
		f.assertExpectations(t)
	})

	t.Run("metadata fallback keeps the owner check", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		order := orderFor(t, testAdmin(t), domain.OrderPending)
		payment := pendingPayment(t, order, "")

		f.payments.On("GetByIntentID", mock.Anything, "pi_other").Return(nil, store.ErrPaymentNotFound)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_other").Return(&domain.PaymentIntent{
			ID:       "pi_other",
			Status:   domain.IntentSucceeded,
			Metadata: map[string]string{MetadataPaymentID: payment.ID.String()},
		}, nil)
		f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.svc.ConfirmPayment(context.Background(), testCustomer(t), "pi_other")
		assert.ErrorIs(t, err, ErrNotFound)
		f.payments.AssertNotCalled(t, "AttachIntent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("metadata pointing at a payment bound to another intent", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		customer := testCustomer(t)
		payment := pendingPayment(t, orderFor(t, customer, domain.OrderPending), "pi_original")

		f.payments.On("GetByIntentID", mock.Anything, "pi_dup").Return(nil, store.ErrPaymentNotFound)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_dup").Return(&domain.PaymentIntent{
			ID:       "pi_dup",
			Metadata: map[string]string{MetadataPaymentID: payment.ID.String()},
		}, nil)
		f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)

		_, err := f.svc.ConfirmPayment(context.Background(), customer, "pi_dup")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("payment on a cancelled order is completed and flagged", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		f := newPaymentFixtureWithLogger(t, slog.New(slog.NewTextHandler(&logs, nil)))
		customer := testCustomer(t)
		order := orderFor(t, customer, domain.OrderCancelled)
		payment := pendingPayment(t, order, "pi_5")

		f.payments.On("GetByIntentID", mock.Anything, "pi_5").Return(payment, nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.processor.On("RetrieveIntent", mock.Anything, "pi_5").
			Return(&domain.PaymentIntent{ID: "pi_5", Status: domain.IntentSucceeded}, nil)
		f.db.ExpectBegin()
		f.payments.On("UpdateStatus", mock.Anything, payment.ID, domain.PaymentCompleted, "pi_5").Return(nil)
		f.db.ExpectCommit()

		_, err := f.svc.ConfirmPayment(context.Background(), customer, "pi_5")
		require.NoError(t, err)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "payment completed on a cancelled order")
		assert.Contains(t, logs.String(), order.ID.String())
		f.assertExpectations(t)
	})
}

func TestPaymentServiceHandleWebhook(t *testing.T) {
	t.Parallel()

	payload, sig := []byte(`{"id":"evt_1"}`), "t=1,v1=abc"

	t.Run("invalid signature", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		f.processor.On("ParseWebhook", payload, sig).Return(nil, fmt.Errorf("%w: no match", domain.ErrWebhookSignature))

		assert.ErrorIs(t, f.svc.HandleWebhook(context.Background(), payload, sig), ErrInvalidSignature)
	})

	t.Run("signed event that cannot be decoded", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		f.processor.On("ParseWebhook", payload, sig).Return(nil, fmt.Errorf("%w: bad amount", domain.ErrMalformedWebhook))

		err := f.svc.HandleWebhook(context.Background(), payload, sig)
		assert.ErrorIs(t, err, ErrMalformedWebhook)
		assert.NotErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("unexpected parse failure", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		f.processor.On("ParseWebhook", payload, sig).Return(nil, errors.New("boom"))

		err := f.svc.HandleWebhook(context.Background(), payload, sig)
		assert.ErrorIs(t, err, ErrOperationFailed)
		assert.NotErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("ignores unrelated events", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		f.processor.On("ParseWebhook", payload, sig).Return(&domain.PaymentEvent{ID: "evt_1", Type: "charge.refunded"}, nil)

		assert.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
		f.payments.AssertNotCalled(t, "GetByIntentID", mock.Anything, mock.Anything)
	})

	t.Run("succeeded event completes the payment", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		order := orderFor(t, testCustomer(t), domain.OrderPending)
		payment := pendingPayment(t, order, "pi_1")

		f.processor.On("ParseWebhook", payload, sig).Return(&domain.PaymentEvent{
			ID:     "evt_1",
			Type:   domain.EventIntentSucceeded,
			Intent: &domain.PaymentIntent{ID: "pi_1", Status: domain.IntentSucceeded},
		}, nil)
		f.payments.On("GetByIntentID", mock.Anything, "pi_1").Return(payment, nil)
		f.db.ExpectBegin()
		f.payments.On("UpdateStatus", mock.Anything, payment.ID, domain.PaymentCompleted, "pi_1").Return(nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("UpdateStatus", mock.Anything, order.ID, domain.OrderConfirmed).Return(nil)
		f.db.ExpectCommit()

		require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
		f.assertExpectations(t)
	})

	t.Run("falls back to payment id metadata", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		order := orderFor(t, testCustomer(t), domain.OrderWashing)
		payment := pendingPayment(t, order, "")

		f.processor.On("ParseWebhook", payload, sig).Return(&domain.PaymentEvent{
			ID:   "evt_2",
			Type: domain.EventIntentSucceeded,
			Intent: &domain.PaymentIntent{
				ID:       "pi_late",
				Status:   domain.IntentSucceeded,
				Metadata: map[string]string{MetadataPaymentID: payment.ID.String()},
			},
		}, nil)
		f.payments.On("GetByIntentID", mock.Anything, "pi_late").Return(nil, store.ErrPaymentNotFound)
		f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
		f.payments.On("AttachIntent", mock.Anything, payment.ID, "pi_late").Return(nil)
		f.db.ExpectBegin()
		f.payments.On("UpdateStatus", mock.Anything, payment.ID, domain.PaymentCompleted, "pi_late").Return(nil)
		f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.db.ExpectCommit()

		require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("unknown payment is acknowledged", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		f.processor.On("ParseWebhook", payload, sig).Return(&domain.PaymentEvent{
			Type:   domain.EventIntentSucceeded,
			Intent: &domain.PaymentIntent{ID: "pi_ghost"},
		}, nil)
		f.payments.On("GetByIntentID", mock.Anything, "pi_ghost").Return(nil, store.ErrPaymentNotFound)

		assert.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	})

	t.Run("failed event marks a pending payment failed", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		order := orderFor(t, testCustomer(t), domain.OrderPending)
		payment := pendingPayment(t, order, "pi_3")

		f.processor.On("ParseWebhook", payload, sig).Return(&domain.PaymentEvent{
			Type:   domain.EventIntentFailed,
			Intent: &domain.PaymentIntent{ID: "pi_3", Status: "requires_payment_method"},
		}, nil)
		f.payments.On("GetByIntentID", mock.Anything, "pi_3").Return(payment, nil)
		f.payments.On("UpdateStatus", mock.Anything, payment.ID, domain.PaymentFailed, "").Return(nil)

		require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
		assert.Equal(t, domain.PaymentFailed, payment.Status)
		f.assertExpectations(t)
	})

	t.Run("failed event never downgrades a completed payment", func(t *testing.T) {
		t.Parallel()
		f := newPaymentFixture(t)
		order := orderFor(t, testCustomer(t), domain.OrderConfirmed)
		payment := pendingPayment(t, order, "pi_4")
		payment.Complete("pi_4")

		f.processor.On("ParseWebhook", payload, sig).Return(&domain.PaymentEvent{
			Type:   domain.EventIntentFailed,
			Intent: &domain.PaymentIntent{ID: "pi_4"},
		}, nil)
		f.payments.On("GetByIntentID", mock.Anything, "pi_4").Return(payment, nil)

		require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
		assert.Equal(t, domain.PaymentCompleted, payment.Status)
		f.payments.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentServiceListPayments(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t)
	customer, admin := testCustomer(t), testAdmin(t)
	f.payments.On("ListByUser", mock.Anything, customer.ID).Return([]domain.Payment{{}}, nil)
	f.payments.On("ListAll", mock.Anything).Return([]domain.Payment{{}, {}}, nil)

	own, err := f.svc.ListPayments(context.Background(), customer)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := f.svc.ListPayments(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIdempotencyKeyIsStable(t *testing.T) {
	t.Parallel()

	p := pendingPayment(t, orderFor(t, testCustomer(t), domain.OrderPending), "")
	assert.Equal(t, IdempotencyKey(p.ID), IdempotencyKey(p.ID))
	assert.Equal(t, "payment-"+p.ID.String(), IdempotencyKey(p.ID))
}

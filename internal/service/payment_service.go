package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/redact"
	"github.com/magicspin/laundry-api/internal/store"
)

// PaymentProcessor is the external payment provider.
type PaymentProcessor interface {
	// CreateIntent creates a payment intent. Calls repeated with the same
	// idempotencyKey return the original intent.
	CreateIntent(
		ctx context.Context,
		amount domain.Money,
		currency string,
		metadata map[string]string,
		idempotencyKey string,
	) (*domain.PaymentIntent, error)

	// RetrieveIntent fetches the current state of an intent.
	RetrieveIntent(ctx context.Context, id string) (*domain.PaymentIntent, error)

	// ParseWebhook verifies a webhook signature and decodes the event.
	ParseWebhook(payload []byte, signature string) (*domain.PaymentEvent, error)
}

// Metadata keys attached to every intent so it can be traced back to the
// local payment.
const (
	MetadataOrderID   = "order_id"
	MetadataUserID    = "user_id"
	MetadataPaymentID = "payment_id"
)

// IntentResult is what a client needs to complete a payment.
type IntentResult struct {
	PaymentID    uuid.UUID
	IntentID     string
	ClientSecret string
	Amount       domain.Money
	Currency     string
}

// ConfirmResult reports the processor status of an intent after a confirm
// call. Payment reflects the local row after reconciliation.
type ConfirmResult struct {
	Status  string
	Payment *domain.Payment
}

// PaymentService creates payment intents and reconciles their outcome with
// local payments and orders.
type PaymentService struct {
	payments  store.PaymentStore
	orders    store.OrderStore
	processor PaymentProcessor
	db        *sql.DB
	currency  string
	logger    *slog.Logger
}

// NewPaymentService creates a PaymentService charging in currency.
func NewPaymentService(
	payments store.PaymentStore,
	orders store.OrderStore,
	processor PaymentProcessor,
	db *sql.DB,
	currency string,
	logger *slog.Logger,
) (*PaymentService, error) {
	if payments == nil {
		return nil, errors.New("payment store cannot be nil")
	}
	if orders == nil {
		return nil, errors.New("order store cannot be nil")
	}
	if processor == nil {
		return nil, errors.New("payment processor cannot be nil")
	}
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if currency == "" {
		currency = "inr"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		payments:  payments,
		orders:    orders,
		processor: processor,
		db:        db,
		currency:  strings.ToLower(currency),
		logger:    logger.With(slog.String("component", "payment_service")),
	}, nil
}

// IdempotencyKey is the processor idempotency key for a local payment.
func IdempotencyKey(paymentID uuid.UUID) string {
	return "payment-" + paymentID.String()
}

// CreatePaymentIntent starts a payment for one of the customer's orders.
//
// A pending payment row is written first, then the intent is created with
// the payment id in its metadata and as its idempotency key, and finally the
// intent id is attached to the row. A failed intent marks the row failed. A
// failed attach is logged only: confirm and the webhook find the row via
// the payment_id metadata and attach it then.
func (s *PaymentService) CreatePaymentIntent(
	ctx context.Context,
	customer *domain.User,
	orderID uuid.UUID,
	method domain.PaymentMethod,
) (*IntentResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("order_id", orderID.String()))

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewServiceError("create_payment_intent", "failed to load order", err)
	}
	if !order.BelongsTo(customer.ID) {
		return nil, ErrNotFound
	}
	if order.Status == domain.OrderCancelled {
		return nil, ErrOrderCancelled
	}

	payment, err := domain.NewPayment(order.ID, order.TotalAmount, method)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		log.Error("failed to create provisional payment", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("create_payment_intent", "failed to save payment", err)
	}

	metadata := map[string]string{
		MetadataOrderID:   order.ID.String(),
		MetadataUserID:    customer.ID.String(),
		MetadataPaymentID: payment.ID.String(),
	}
	intent, err := s.processor.CreateIntent(ctx, payment.Amount, s.currency, metadata, IdempotencyKey(payment.ID))
	if err != nil {
		log.Error("payment processor rejected intent",
			slog.String("payment_id", payment.ID.String()),
			slog.String("error", redact.Error(err)))
		if markErr := s.payments.UpdateStatus(ctx, payment.ID, domain.PaymentFailed, ""); markErr != nil {
			log.Error("failed to mark payment failed",
				slog.String("payment_id", payment.ID.String()),
				slog.String("error", redact.Error(markErr)))
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}

	if err := s.payments.AttachIntent(ctx, payment.ID, intent.ID); err != nil {
		log.Warn("failed to attach intent to payment; webhook will reconcile via metadata",
			slog.String("payment_id", payment.ID.String()),
			slog.String("intent_id", intent.ID),
			slog.String("error", redact.Error(err)))
	}

	log.Info("payment intent created",
		slog.String("payment_id", payment.ID.String()),
		slog.String("intent_id", intent.ID))

	return &IntentResult{
		PaymentID:    payment.ID,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       payment.Amount,
		Currency:     s.currency,
	}, nil
}

// ConfirmPayment checks an intent with the processor and, when it has
// succeeded, completes the payment and confirms the order. Calling it again
// after success changes nothing.
func (s *PaymentService) ConfirmPayment(ctx context.Context, caller *domain.User, intentID string) (*ConfirmResult, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, domain.NewValidationError("payment_intent_id", "is required", domain.ErrValidation)
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("intent_id", intentID))

	var intent *domain.PaymentIntent
	payment, err := s.payments.GetByIntentID(ctx, intentID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrPaymentNotFound):
		// The intent id may never have been attached; its metadata still
		// names the payment.
		intent, err = s.processor.RetrieveIntent(ctx, intentID)
		if err != nil {
			log.Warn("confirm for unknown intent", slog.String("error", redact.Error(err)))
			return nil, ErrNotFound
		}
		payment, err = s.paymentFromMetadata(ctx, "confirm_payment", intent)
		if err != nil {
			return nil, err
		}
	default:
		return nil, NewServiceError("confirm_payment", "failed to load payment", err)
	}

	order, err := s.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewServiceError("confirm_payment", "failed to load order", err)
	}
	if !caller.IsAdmin() && !order.BelongsTo(caller.ID) {
		return nil, ErrNotFound
	}

	if intent == nil {
		intent, err = s.processor.RetrieveIntent(ctx, intentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
		}
	}
	if payment.ProcessorIntentID == "" {
		if err := s.attachIntent(ctx, "confirm_payment", payment, intent.ID); err != nil {
			return nil, err
		}
	}

	if intent.Succeeded() {
		if err := s.complete(ctx, payment, intent.ID); err != nil {
			return nil, err
		}
	}

	return &ConfirmResult{Status: intent.Status, Payment: payment}, nil
}

// HandleWebhook processes a signed processor event. Events for unknown
// payments and unhandled event types are acknowledged without changes.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := s.processor.ParseWebhook(payload, signature)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrWebhookSignature):
		log.Warn("rejected webhook", slog.String("error", redact.Error(err)))
		return ErrInvalidSignature
	case errors.Is(err, domain.ErrMalformedWebhook):
		log.Error("signed webhook could not be decoded", slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	default:
		return NewServiceError("handle_webhook", "failed to parse webhook", err)
	}
	log = log.With(slog.String("event_id", event.ID), slog.String("event_type", event.Type))

	if event.Intent == nil {
		log.Debug("ignoring webhook event")
		return nil
	}

	switch event.Type {
	case domain.EventIntentSucceeded, domain.EventIntentFailed:
	default:
		log.Debug("ignoring webhook event")
		return nil
	}

	payment, err := s.paymentForIntent(ctx, event.Intent)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("webhook for unknown payment", slog.String("intent_id", event.Intent.ID))
			return nil
		}
		return err
	}

	if event.Type == domain.EventIntentSucceeded {
		return s.complete(ctx, payment, event.Intent.ID)
	}

	if payment.Status != domain.PaymentPending {
		return nil
	}
	if err := s.payments.UpdateStatus(ctx, payment.ID, domain.PaymentFailed, ""); err != nil {
		return NewServiceError("handle_webhook", "failed to mark payment failed", err)
	}
	payment.Fail()
	log.Info("payment failed", slog.String("payment_id", payment.ID.String()))
	return nil
}

// ListPayments returns payments on the caller's orders, or all for admins.
func (s *PaymentService) ListPayments(ctx context.Context, caller *domain.User) ([]domain.Payment, error) {
	var (
		payments []domain.Payment
		err      error
	)
	if caller.IsAdmin() {
		payments, err = s.payments.ListAll(ctx)
	} else {
		payments, err = s.payments.ListByUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, NewServiceError("list_payments", "failed to list payments", err)
	}
	return payments, nil
}

// paymentForIntent finds the local payment for an intent, falling back to
// the payment_id metadata when the intent id was never attached.
func (s *PaymentService) paymentForIntent(ctx context.Context, intent *domain.PaymentIntent) (*domain.Payment, error) {
	payment, err := s.payments.GetByIntentID(ctx, intent.ID)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, store.ErrPaymentNotFound) {
		return nil, NewServiceError("handle_webhook", "failed to load payment", err)
	}

	payment, err = s.paymentFromMetadata(ctx, "handle_webhook", intent)
	if err != nil {
		return nil, err
	}
	if err := s.attachIntent(ctx, "handle_webhook", payment, intent.ID); err != nil {
		return nil, err
	}
	return payment, nil
}

// paymentFromMetadata loads the payment named by the intent's payment_id
// metadata. A payment already bound to a different intent does not match.
func (s *PaymentService) paymentFromMetadata(
	ctx context.Context,
	op string,
	intent *domain.PaymentIntent,
) (*domain.Payment, error) {
	paymentID, err := uuid.Parse(intent.Metadata[MetadataPaymentID])
	if err != nil {
		return nil, ErrNotFound
	}
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrPaymentNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewServiceError(op, "failed to load payment", err)
	}
	if payment.ProcessorIntentID != "" && payment.ProcessorIntentID != intent.ID {
		return nil, ErrNotFound
	}
	return payment, nil
}

func (s *PaymentService) attachIntent(ctx context.Context, op string, payment *domain.Payment, intentID string) error {
	if err := s.payments.AttachIntent(ctx, payment.ID, intentID); err != nil {
		return NewServiceError(op, "failed to attach intent", err)
	}
	payment.ProcessorIntentID = intentID
	return nil
}

// complete marks the payment completed and moves a pending order to
// confirmed in one transaction. Orders past pending keep their status.
func (s *PaymentService) complete(ctx context.Context, payment *domain.Payment, intentID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	var orderStatus domain.OrderStatus

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		orders := s.orders.WithTx(tx)

		if payment.Status != domain.PaymentCompleted {
			if err := s.payments.WithTx(tx).UpdateStatus(ctx, payment.ID, domain.PaymentCompleted, intentID); err != nil {
				return err
			}
		}

		order, err := orders.GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		orderStatus = order.Status
		if order.Status == domain.OrderPending {
			return orders.UpdateStatus(ctx, order.ID, domain.OrderConfirmed)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to reconcile payment",
			slog.String("payment_id", payment.ID.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("complete_payment", "failed to record payment", err)
	}

	if payment.Status != domain.PaymentCompleted {
		payment.Complete(intentID)
		log.Info("payment completed",
			slog.String("payment_id", payment.ID.String()),
			slog.String("order_id", payment.OrderID.String()))
		if orderStatus == domain.OrderCancelled {
			log.Warn("payment completed on a cancelled order; refund needed",
				slog.String("payment_id", payment.ID.String()),
				slog.String("order_id", payment.OrderID.String()))
		}
	}
	return nil
}

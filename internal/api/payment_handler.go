package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/api/shared"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/redact"
	"github.com/magicspin/laundry-api/internal/service"
)

// MaxWebhookBytes caps the size of a processor webhook payload.
const MaxWebhookBytes = 64 << 10

// SignatureHeader carries the processor's webhook signature.
const SignatureHeader = "Stripe-Signature"

// PaymentHandler handles payment intents, confirmation and processor
// webhooks.
type PaymentHandler struct {
	payments PaymentService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments PaymentService, logger *slog.Logger) *PaymentHandler {
	if payments == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("payment service cannot be nil for PaymentHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PaymentHandler")
	}
	return &PaymentHandler{
		payments: payments,
		logger:   logger.With(slog.String("component", "payment_handler")),
	}
}

// CreatePaymentIntent handles POST /payments/create-intent.
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreatePaymentIntentRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "order_id must be a valid id")
		return
	}

	res, err := h.payments.CreatePaymentIntent(r.Context(), caller, orderID, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		HandleAPIError(w, r, err, orderNotFound)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "", CreatePaymentIntentResponse{
		ClientSecret:    res.ClientSecret,
		PaymentID:       res.PaymentID,
		PaymentIntentID: res.IntentID,
		Amount:          res.Amount,
		Currency:        res.Currency,
	})
}

// ConfirmPayment handles POST /payments/confirm.
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.payments.ConfirmPayment(r.Context(), caller, req.PaymentIntentID)
	if err != nil {
		HandleAPIError(w, r, err, "Payment not found")
		return
	}

	body := ConfirmPaymentResponse{Status: res.Status}
	if res.Payment != nil {
		p := paymentToResponse(res.Payment)
		body.Payment = &p
	}

	message := "Payment not completed"
	if res.Status == domain.IntentSucceeded {
		message = "Payment confirmed successfully"
	}
	shared.RespondWithData(w, r, http.StatusOK, message, body)
}

// ListPayments handles GET /payments.
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	payments, err := h.payments.ListPayments(r.Context(), caller)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", paymentsToResponse(payments))
}

// Webhook handles POST /payments/webhook. It is unauthenticated; the
// signature header is the only credential.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Webhook payload too large")
			return
		}
		log.Warn("failed to read webhook body", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid webhook signature",
			service.ErrInvalidSignature, shared.WithElevatedLogLevel())
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), payload, signature); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid webhook signature",
				err, shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"received": true})
}

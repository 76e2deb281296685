// Package stripe adapts the Stripe API to the payment flow. It creates and
// retrieves PaymentIntents and verifies webhook signatures.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magicspin/laundry-api/internal/config"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
)

var (
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = domain.ErrWebhookSignature

	// ErrMalformedEvent is returned when a correctly signed event carries a
	// payment intent that cannot be decoded.
	ErrMalformedEvent = domain.ErrMalformedWebhook

	// ErrMissingKey is returned when the client is built without an API key.
	ErrMissingKey = errors.New("stripe secret key is required")
)

// Client talks to the Stripe API.
type Client struct {
	intents       *paymentintent.Client
	webhookSecret string
	logger        *slog.Logger
}

// NewClient builds a Client for the configured account.
func NewClient(cfg config.PaymentConfig, log *slog.Logger) (*Client, error) {
	return newClient(cfg, stripeapi.GetBackend(stripeapi.APIBackend), log)
}

// NewClientWithBackend builds a Client that sends API calls through backend.
func NewClientWithBackend(cfg config.PaymentConfig, backend stripeapi.Backend, log *slog.Logger) (*Client, error) {
	return newClient(cfg, backend, log)
}

func newClient(cfg config.PaymentConfig, backend stripeapi.Backend, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.StripeSecretKey) == "" {
		return nil, ErrMissingKey
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		intents:       &paymentintent.Client{B: backend, Key: cfg.StripeSecretKey},
		webhookSecret: cfg.StripeWebhookSecret,
		logger:        log.With(slog.String("component", "stripe_client")),
	}, nil
}

// CreateIntent creates a PaymentIntent for amount in currency. Retrying with
// the same idempotencyKey returns the original intent.
func (c *Client) CreateIntent(
	ctx context.Context,
	amount domain.Money,
	currency string,
	metadata map[string]string,
	idempotencyKey string,
) (*domain.PaymentIntent, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(amount.MinorUnits()),
		Currency: stripeapi.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := c.intents.New(params)
	if err != nil {
		log.Error("failed to create payment intent",
			slog.String("idempotency_key", idempotencyKey),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	log.Info("payment intent created",
		slog.String("intent_id", pi.ID),
		slog.String("status", string(pi.Status)))
	return toIntent(pi), nil
}

// RetrieveIntent fetches the current state of an intent.
func (c *Client) RetrieveIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.intents.Get(id, params)
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to retrieve payment intent",
			slog.String("intent_id", id),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return toIntent(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// API version mismatches between the account and the library are tolerated.
func (c *Client) ParseWebhook(payload []byte, signature string) (*domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &domain.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: payment intent in event %s: %v", ErrMalformedEvent, event.ID, err)
	}
	out.Intent = toIntent(&pi)
	return out, nil
}

func toIntent(pi *stripeapi.PaymentIntent) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       domain.Money(pi.Amount),
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

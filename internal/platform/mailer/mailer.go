// Package mailer sends transactional email. SMTPMailer delivers through an
// SMTP relay; LogMailer writes messages to the log when delivery is disabled.
// Notifier renders domain notifications into messages.
package mailer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magicspin/laundry-api/internal/config"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("message has no recipient")

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTPMailer when email is enabled, otherwise a LogMailer.
func New(cfg config.EmailConfig, logger *slog.Logger) (Mailer, error) {
	if !cfg.Enabled {
		return NewLogMailer(logger), nil
	}
	return NewSMTPMailer(cfg, logger)
}

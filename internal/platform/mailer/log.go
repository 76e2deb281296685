package mailer

import (
	"context"
	"log/slog"

	"github.com/magicspin/laundry-api/internal/platform/logger"
)

// LogMailer logs messages instead of sending them. It is used when email
// delivery is disabled, typically in development.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{logger: log.With(slog.String("component", "log_mailer"))}
}

// Send logs the message body at info level.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	logger.FromContextOrDefault(ctx, m.logger).Info("email delivery disabled, logging message",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text))
	return nil
}

package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magicspin/laundry-api/internal/config"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/wneessen/go-mail"
)

const smtpTimeout = 15 * time.Second

// SMTPMailer sends messages through an SMTP relay. A new connection is
// dialed per message.
type SMTPMailer struct {
	client   *mail.Client
	fromName string
	fromAddr string
	logger   *slog.Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer configures a go-mail client from cfg. Port 465 uses implicit
// TLS; other ports upgrade with STARTTLS when the server offers it.
func NewSMTPMailer(cfg config.EmailConfig, log *slog.Logger) (*SMTPMailer, error) {
	if log == nil {
		log = slog.Default()
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{
		client:   client,
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
		logger:   log.With(slog.String("component", "smtp_mailer")),
	}, nil
}

// Send delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	envelope, err := m.build(msg)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, envelope); err != nil {
		log.Error("failed to send email",
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("email sent", slog.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}

	envelope := mail.NewMsg()
	if err := envelope.FromFormat(m.fromName, m.fromAddr); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := envelope.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	envelope.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		envelope.SetBodyString(mail.TypeTextPlain, msg.Text)
		envelope.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		envelope.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		envelope.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return envelope, nil
}

package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/magicspin/laundry-api/internal/domain"
)

var htmlTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hi {{.Name}},</p>
<p>{{.Intro}}</p>
<p><a href="{{.Link}}">{{.Action}}</a></p>
<p>This link expires in {{.Expiry}}. If you did not request it you can ignore this email.</p>
</body>
</html>
`))

type notificationContent struct {
	subject string
	path    string
	intro   string
	action  string
	expiry  string
}

var contents = map[domain.NotificationKind]notificationContent{
	domain.NotificationVerifyEmail: {
		subject: "Verify your email address",
		path:    "/verify-email",
		intro:   "Thanks for signing up. Confirm your email address to start booking pickups.",
		action:  "Verify email",
		expiry:  "24 hours",
	},
	domain.NotificationPasswordReset: {
		subject: "Reset your password",
		path:    "/reset-password",
		intro:   "We received a request to reset your password.",
		action:  "Reset password",
		expiry:  "1 hour",
	},
}

// Notifier renders notifications and hands them to a Mailer.
type Notifier struct {
	mailer      Mailer
	frontendURL string
}

// NewNotifier creates a Notifier whose links point at frontendURL.
func NewNotifier(mailer Mailer, frontendURL string) *Notifier {
	return &Notifier{
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Notify renders n and sends it.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	msg, err := n.Render(note)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

// Render builds the message for a notification without sending it.
func (n *Notifier) Render(note domain.Notification) (Message, error) {
	if err := note.Validate(); err != nil {
		return Message{}, err
	}
	content, ok := contents[note.Kind]
	if !ok {
		return Message{}, fmt.Errorf("no template for notification kind %q", note.Kind)
	}

	link := n.frontendURL + content.path + "?token=" + url.QueryEscape(note.Token)
	name := note.Name
	if name == "" {
		name = "there"
	}

	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, map[string]string{
		"Name":   name,
		"Intro":  content.intro,
		"Link":   link,
		"Action": content.action,
		"Expiry": content.expiry,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render %s email: %w", note.Kind, err)
	}

	text := fmt.Sprintf("Hi %s,\n\n%s\n\n%s: %s\n\nThis link expires in %s.\n",
		name, content.intro, content.action, link, content.expiry)

	return Message{
		To:      note.To,
		Subject: content.subject,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

package domain

import "strings"

// NotificationKind selects the email sent to a user.
type NotificationKind string

const (
	NotificationVerifyEmail   NotificationKind = "verify_email"
	NotificationPasswordReset NotificationKind = "password_reset"
)

// Notification is a transactional email addressed to one user. Token is the
// one-shot token embedded in the link.
type Notification struct {
	Kind  NotificationKind `json:"kind"`
	To    string           `json:"to"`
	Name  string           `json:"name"`
	Token string           `json:"token"`
}

// Validate checks the notification can be delivered.
func (n Notification) Validate() error {
	switch n.Kind {
	case NotificationVerifyEmail, NotificationPasswordReset:
	default:
		return NewValidationError("kind", "is not a known notification", ErrValidation)
	}
	if err := ValidateEmail(n.To); err != nil {
		return err
	}
	if strings.TrimSpace(n.Token) == "" {
		return NewValidationError("token", "is required", ErrValidation)
	}
	return nil
}

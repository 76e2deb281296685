package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
)

// Notifier delivers a rendered notification to its recipient.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// EmailTask delivers one transactional email.
type EmailTask struct {
	id           uuid.UUID
	notification domain.Notification
	payload      []byte
	status       TaskStatus
	notifier     Notifier
	logger       *slog.Logger
}

var _ Task = (*EmailTask)(nil)

// ID returns the task's unique identifier
func (t *EmailTask) ID() uuid.UUID { return t.id }

// Type returns TaskTypeEmailDelivery
func (t *EmailTask) Type() string { return TaskTypeEmailDelivery }

// Payload returns the JSON-encoded notification
func (t *EmailTask) Payload() []byte { return t.payload }

// Status returns the status the task was created or recovered with
func (t *EmailTask) Status() TaskStatus { return t.status }

// Notification returns the email the task will send.
func (t *EmailTask) Notification() domain.Notification { return t.notification }

// Execute sends the email.
func (t *EmailTask) Execute(ctx context.Context) error {
	t.logger.Debug("sending notification",
		"task_id", t.id,
		"kind", t.notification.Kind)

	if err := t.notifier.Notify(ctx, t.notification); err != nil {
		return fmt.Errorf("failed to deliver %s email: %w", t.notification.Kind, err)
	}
	return nil
}

// EmailTaskFactory creates EmailTask instances bound to a notifier.
type EmailTaskFactory struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewEmailTaskFactory creates a factory for email delivery tasks.
func NewEmailTaskFactory(notifier Notifier, logger *slog.Logger) (*EmailTaskFactory, error) {
	if notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailTaskFactory{
		notifier: notifier,
		logger:   logger.With("component", "email_task"),
	}, nil
}

// CreateTask builds a new pending email task.
func (f *EmailTaskFactory) CreateTask(n domain.Notification) (*EmailTask, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return &EmailTask{
		id:           uuid.New(),
		notification: n,
		payload:      payload,
		status:       TaskStatusPending,
		notifier:     f.notifier,
		logger:       f.logger,
	}, nil
}

// Decode rebuilds an email task from its persisted record. It satisfies Decoder.
func (f *EmailTaskFactory) Decode(rec Record) (Task, error) {
	var n domain.Notification
	if err := json.Unmarshal(rec.Payload, &n); err != nil {
		return nil, fmt.Errorf("failed to decode email payload: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &EmailTask{
		id:           rec.ID,
		notification: n,
		payload:      rec.Payload,
		status:       rec.Status,
		notifier:     f.notifier,
		logger:       f.logger,
	}, nil
}

package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/events"
)

// Submitter accepts tasks for background execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// NotificationEventHandler turns notification events into email tasks.
type NotificationEventHandler struct {
	factory *EmailTaskFactory
	runner  Submitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*NotificationEventHandler)(nil)

// NewNotificationEventHandler creates a handler that submits email tasks
// built by factory to runner.
func NewNotificationEventHandler(
	factory *EmailTaskFactory,
	runner Submitter,
	logger *slog.Logger,
) *NotificationEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "notification_event_handler"),
	}
}

// HandleEvent processes user.registered and user.password_reset_requested
// events; other types are ignored.
func (h *NotificationEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	switch event.Type {
	case events.TypeUserRegistered, events.TypePasswordResetRequested:
	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var n domain.Notification
	if err := event.UnmarshalPayload(&n); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.factory.CreateTask(n)
	if err != nil {
		h.logger.Error("failed to create email task",
			"error", err,
			"event_id", event.ID,
			"kind", n.Kind)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("email task submitted",
		"task_id", task.ID(),
		"event_id", event.ID,
		"kind", n.Kind)
	return nil
}

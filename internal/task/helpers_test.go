package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTask is a Task whose Execute behavior is set per test.
type stubTask struct {
	id      uuid.UUID
	typ     string
	execute func(ctx context.Context) error

	mu       sync.Mutex
	executed int
}

func newStubTask(execute func(ctx context.Context) error) *stubTask {
	return &stubTask{id: uuid.New(), typ: "stub", execute: execute}
}

func (t *stubTask) ID() uuid.UUID      { return t.id }
func (t *stubTask) Type() string       { return t.typ }
func (t *stubTask) Payload() []byte    { return []byte(`{}`) }
func (t *stubTask) Status() TaskStatus { return TaskStatusPending }

func (t *stubTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.executed++
	t.mu.Unlock()
	if t.execute == nil {
		return nil
	}
	return t.execute(ctx)
}

func (t *stubTask) Executions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.executed
}

type statusUpdate struct {
	ID     uuid.UUID
	Status TaskStatus
	ErrMsg string
}

// memoryTaskStore records writes and serves canned records.
type memoryTaskStore struct {
	mu         sync.Mutex
	saved      []uuid.UUID
	updates    []statusUpdate
	pending    []Record
	processing []Record

	saveErr    error
	pendingErr error
}

func (s *memoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, task.ID())
	return nil
}

func (s *memoryTaskStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status TaskStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, statusUpdate{ID: id, Status: status, ErrMsg: errMsg})
	return nil
}

func (s *memoryTaskStore) GetPendingTasks(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	out := s.pending
	s.pending = nil
	return out, nil
}

func (s *memoryTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.processing
	s.processing = nil
	return out, nil
}

func (s *memoryTaskStore) WithTx(tx *sql.Tx) TaskStore { return s }

func (s *memoryTaskStore) addProcessing(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = append(s.processing, rec)
}

func (s *memoryTaskStore) Updates() []statusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusUpdate(nil), s.updates...)
}

// LastStatus returns the most recent status written for id.
func (s *memoryTaskStore) LastStatus(id uuid.UUID) (TaskStatus, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.updates) - 1; i >= 0; i-- {
		if s.updates[i].ID == id {
			return s.updates[i].Status, s.updates[i].ErrMsg, true
		}
	}
	return "", "", false
}

// recordingNotifier captures notifications and optionally fails.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) Sent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

func verifyNotification() domain.Notification {
	return domain.Notification{
		Kind:  domain.NotificationVerifyEmail,
		To:    "hana@gmail.com",
		Name:  "Hana",
		Token: "0123456789abcdef",
	}
}

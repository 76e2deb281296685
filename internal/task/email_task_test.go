package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailTaskFactory(t *testing.T) {
	t.Parallel()

	_, err := NewEmailTaskFactory(nil, discardLogger())
	assert.EqualError(t, err, "notifier cannot be nil")

	factory, err := NewEmailTaskFactory(&recordingNotifier{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, factory.logger)
}

func TestEmailTaskCreateAndExecute(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	factory, err := NewEmailTaskFactory(notifier, discardLogger())
	require.NoError(t, err)

	n := verifyNotification()
	task, err := factory.CreateTask(n)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID())
	assert.Equal(t, TaskTypeEmailDelivery, task.Type())
	assert.Equal(t, TaskStatusPending, task.Status())
	assert.Equal(t, n, task.Notification())

	var decoded domain.Notification
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, n, decoded)

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, []domain.Notification{n}, notifier.Sent())
}

func TestEmailTaskExecuteError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("connection refused")
	factory, err := NewEmailTaskFactory(&recordingNotifier{err: sendErr}, discardLogger())
	require.NoError(t, err)

	task, err := factory.CreateTask(verifyNotification())
	require.NoError(t, err)

	err = task.Execute(context.Background())
	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "failed to deliver verify_email email")
}

func TestEmailTaskFactoryRejectsInvalidNotifications(t *testing.T) {
	t.Parallel()

	factory, err := NewEmailTaskFactory(&recordingNotifier{}, discardLogger())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(n *domain.Notification)
	}{
		{name: "unknown kind", mutate: func(n *domain.Notification) { n.Kind = "newsletter" }},
		{name: "bad address", mutate: func(n *domain.Notification) { n.To = "hana" }},
		{name: "missing token", mutate: func(n *domain.Notification) { n.Token = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := verifyNotification()
			tt.mutate(&n)
			_, err := factory.CreateTask(n)
			assert.Error(t, err)
		})
	}
}

func TestEmailTaskFactoryDecode(t *testing.T) {
	t.Parallel()

	factory, err := NewEmailTaskFactory(&recordingNotifier{}, discardLogger())
	require.NoError(t, err)

	payload, err := json.Marshal(verifyNotification())
	require.NoError(t, err)

	id := uuid.New()
	task, err := factory.Decode(Record{ID: id, Type: TaskTypeEmailDelivery, Payload: payload, Status: TaskStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, id, task.ID())
	assert.Equal(t, TaskStatusProcessing, task.Status())

	_, err = factory.Decode(Record{ID: id, Payload: []byte(`not json`)})
	assert.Error(t, err)

	_, err = factory.Decode(Record{ID: id, Payload: []byte(`{"kind":"verify_email"}`)})
	assert.Error(t, err)
}

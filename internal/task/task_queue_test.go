package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue and consume", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(2, discardLogger())
		task := newStubTask(nil)

		require.NoError(t, q.Enqueue(task))
		got := <-q.GetChannel()
		assert.Equal(t, task.ID(), got.ID())
	})

	t.Run("full queue rejects without blocking", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(1, discardLogger())

		require.NoError(t, q.Enqueue(newStubTask(nil)))
		err := q.Enqueue(newStubTask(nil))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue rejects and close is idempotent", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(1, discardLogger())
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newStubTask(nil)), ErrQueueClosed)
		_, ok := <-q.GetChannel()
		assert.False(t, ok)
	})

	t.Run("non-positive size is clamped", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(0, discardLogger())
		assert.NoError(t, q.Enqueue(newStubTask(nil)))
	})
}

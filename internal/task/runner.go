package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magicspin/laundry-api/internal/config"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration

	// TaskTimeout bounds a single Execute call. If zero, defaults to 1 minute.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
		TaskTimeout:            time.Minute,
	}
}

// RunnerConfigFrom builds a TaskRunnerConfig from application configuration.
func RunnerConfigFrom(cfg config.TaskConfig) TaskRunnerConfig {
	rc := DefaultTaskRunnerConfig()
	rc.WorkerCount = cfg.WorkerCount
	rc.QueueSize = cfg.QueueSize
	rc.StuckTaskAge = time.Duration(cfg.StuckTaskAgeMinutes) * time.Minute
	return rc
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store  TaskStore
	queue  *TaskQueue
	pool   *WorkerPool
	config TaskRunnerConfig
	logger *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once

	decodersMu sync.RWMutex
	decoders   map[string]Decoder

	errHandler func(task Task, err error)
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, cfg TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if cfg.StuckTaskCheckInterval == 0 {
		cfg.StuckTaskCheckInterval = 5 * time.Minute
	}
	if cfg.TaskTimeout == 0 {
		cfg.TaskTimeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())
	queue := NewTaskQueue(cfg.QueueSize, logger)

	r := &TaskRunner{
		store:      store,
		queue:      queue,
		pool:       NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, logger),
		config:     cfg,
		logger:     logger,
		ctx:        ctx,
		cancelFunc: cancel,
		decoders:   make(map[string]Decoder),
	}
	r.errHandler = func(task Task, err error) {
		logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	}
	r.pool.SetErrorHandler(r.handlePanic)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// RegisterDecoder makes tasks of taskType recoverable after a restart.
func (r *TaskRunner) RegisterDecoder(taskType string, decoder Decoder) {
	r.decodersMu.Lock()
	defer r.decodersMu.Unlock()
	r.decoders[taskType] = decoder
}

// Submit persists the task and adds it to the queue.
// A task that is saved but cannot be queued stays pending and is picked up
// on the next recovery.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to queue task %s: %w", task.ID(), err)
	}
	return nil
}

// Start recovers unfinished tasks, then starts the workers and the stuck
// task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start(r.processTask)

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner, waiting for in-flight tasks.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.pool.Stop()
		r.queue.Close()
	})
}

// Recover loads unfinished tasks from the store and requeues them.
// Tasks left in processing state by a crash are reset to pending first.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(ctx, rec, false)
	}
	for _, rec := range processing {
		r.requeue(ctx, rec, true)
	}
	return nil
}

// requeue decodes a persisted task and queues it. Records without a decoder
// are marked failed so they are not retried forever.
func (r *TaskRunner) requeue(ctx context.Context, rec Record, reset bool) {
	log := r.logger.With("task_id", rec.ID, "task_type", rec.Type)

	task, err := r.decode(rec)
	if err != nil {
		log.Error("failed to decode persisted task", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark undecodable task failed", "error", updateErr)
		}
		return
	}

	if reset {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "reset after recovery"); err != nil {
			log.Error("failed to reset task status", "error", err)
			return
		}
	}

	if err := r.queue.Enqueue(task); err != nil {
		log.Error("failed to requeue task", "error", err)
		return
	}
	log.Debug("requeued task")
}

func (r *TaskRunner) decode(rec Record) (Task, error) {
	r.decodersMu.RLock()
	decoder, ok := r.decoders[rec.Type]
	r.decodersMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no decoder registered for task type %q", rec.Type)
	}
	return decoder(rec)
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	// In-flight tasks finish even when the pool is stopping.
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.TaskTimeout)
	defer cancel()

	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(taskCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	if err := task.Execute(taskCtx); err != nil {
		if updateErr := r.store.UpdateTaskStatus(taskCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed successfully")
	if err := r.store.UpdateTaskStatus(taskCtx, task.ID(), TaskStatusCompleted, ""); err != nil {
		logger.Error("failed to update task status to completed", "error", err)
	}
}

func (r *TaskRunner) handlePanic(task Task, err error) {
	if updateErr := r.store.UpdateTaskStatus(context.Background(), task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
		r.logger.Error("failed to mark panicked task failed",
			"task_id", task.ID(),
			"error", updateErr)
	}
	r.errHandler(task, err)
}

// stuckTaskMonitor periodically resets tasks that have been in "processing"
// state for too long and requeues them.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			stuck, err := r.store.GetProcessingTasks(r.ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", "count", len(stuck))
			for _, rec := range stuck {
				r.requeue(r.ctx, rec, true)
			}
		}
	}
}

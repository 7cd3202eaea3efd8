package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a persisted task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

const (
	// TaskTypeAnswerGeneration is the type recorded for tasks that
	// produce an answer for a student question.
	TaskTypeAnswerGeneration = "answer_generation"
)

// Task is a unit of background work. Implementations carry their own
// parameters; Payload is the serialized form used for persistence and
// crash recovery.
type Task interface {
	ID() uuid.UUID
	Type() string
	Payload() []byte
	Status() TaskStatus

	// Execute runs the work. The runner records the returned error as
	// the task's failure reason.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consumer side of the queue, held by workers.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producer side of the queue, held by whatever
// submits work.
type TaskQueueWriter interface {
	// Enqueue adds a task without blocking. Returns ErrQueueFull when
	// the buffer is at capacity and ErrQueueClosed after Close.
	Enqueue(task Task) error

	Close()
}

// TaskStore persists task state so in-flight work survives a restart.
type TaskStore interface {
	SaveTask(ctx context.Context, task Task) error

	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks returns every task still waiting to run.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks returns tasks marked processing. A non-zero
	// olderThan restricts the result to tasks stuck in that state for
	// at least that long.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}

package task

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// MockTask is a configurable Task for tests. Fields are exported so a
// test can shape the task it needs; ExecuteFn defaults to a no-op.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error
}

var _ Task = (*MockTask)(nil)

// NewMockTask builds a pending MockTask with a no-op Execute.
func NewMockTask(id uuid.UUID, taskType string, payload []byte) *MockTask {
	return &MockTask{
		TaskID:      id,
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(ctx context.Context) error { return nil },
	}
}

// NewMockAnswerTask creates a MockTask shaped like a persisted answer
// generation task for the given question.
func NewMockAnswerTask(questionID int64) *MockTask {
	payload := []byte(`{"id": ` + strconv.FormatInt(questionID, 10) + `}`)
	return NewMockTask(uuid.New(), TaskTypeAnswerGeneration, payload)
}

func (t *MockTask) ID() uuid.UUID { return t.TaskID }

func (t *MockTask) Type() string { return t.TaskType }

func (t *MockTask) Payload() []byte { return t.TaskPayload }

func (t *MockTask) Status() TaskStatus { return t.TaskStatus }

func (t *MockTask) Execute(ctx context.Context) error { return t.ExecuteFn(ctx) }

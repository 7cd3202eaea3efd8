package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTaskStore is an in-memory TaskStore for tests. The default SaveFn
// and UpdateStatusFn keep tasks in a map so GetTaskStatus can assert on
// the recorded state; either can be replaced to inject failures.
type MockTaskStore struct {
	mu             sync.RWMutex
	tasks          map[uuid.UUID]*MockTask
	statusChangeAt map[uuid.UUID]time.Time
	SaveFn         func(ctx context.Context, task Task) error
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

var _ TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a mock store with working defaults.
func NewMockTaskStore() *MockTaskStore {
	store := &MockTaskStore{
		tasks:          make(map[uuid.UUID]*MockTask),
		statusChangeAt: make(map[uuid.UUID]time.Time),
	}

	store.SaveFn = func(ctx context.Context, task Task) error {
		store.mu.Lock()
		defer store.mu.Unlock()

		// Non-mock tasks are stored as a MockTask snapshot so status
		// updates can mutate them.
		mt, ok := task.(*MockTask)
		if !ok {
			mt = NewMockTask(task.ID(), task.Type(), task.Payload())
			mt.TaskStatus = task.Status()
		}

		store.tasks[task.ID()] = mt
		store.statusChangeAt[task.ID()] = time.Now()
		return nil
	}

	store.UpdateStatusFn = func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
		store.mu.Lock()
		defer store.mu.Unlock()

		mt, ok := store.tasks[taskID]
		if !ok {
			return nil
		}
		mt.TaskStatus = status
		store.statusChangeAt[taskID] = time.Now()
		return nil
	}

	return store
}

func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	return s.SaveFn(ctx, task)
}

func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
}

// GetTaskStatus returns the recorded status of a task, for assertions.
func (s *MockTaskStore) GetTaskStatus(taskID uuid.UUID) (TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mt, ok := s.tasks[taskID]
	if !ok {
		return "", false
	}
	return mt.TaskStatus, true
}

func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []Task
	for _, mt := range s.tasks {
		if mt.TaskStatus == TaskStatusPending {
			pending = append(pending, mt)
		}
	}
	return pending, nil
}

func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var processing []Task
	for _, mt := range s.tasks {
		if mt.TaskStatus != TaskStatusProcessing {
			continue
		}
		changedAt, tracked := s.statusChangeAt[mt.TaskID]
		if olderThan == 0 || (tracked && now.Sub(changedAt) > olderThan) {
			processing = append(processing, mt)
		}
	}
	return processing, nil
}

// WithTx returns the store itself; the mock has no transactions.
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRehydrator struct {
	rehydrateFn func(taskID uuid.UUID, payload []byte) (Task, error)
}

func (m *mockRehydrator) RehydrateTask(taskID uuid.UUID, payload []byte) (Task, error) {
	return m.rehydrateFn(taskID, payload)
}

func waitForStatus(t *testing.T, store *MockTaskStore, taskID uuid.UUID, want TaskStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		status, ok := store.GetTaskStatus(taskID)
		return ok && status == want
	}, 2*time.Second, 10*time.Millisecond, "task %s never reached status %s", taskID, want)
}

func TestTaskRunnerSubmit(t *testing.T) {
	t.Parallel()

	t.Run("persists then enqueues", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

		task := NewMockAnswerTask(42)
		require.NoError(t, runner.Submit(context.Background(), task))

		pending, err := store.GetPendingTasks(context.Background())
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, task.ID(), pending[0].ID())
	})

	t.Run("store failure prevents enqueue", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		store.SaveFn = func(ctx context.Context, task Task) error {
			return errors.New("database down")
		}
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

		err := runner.Submit(context.Background(), NewMockAnswerTask(42))
		assert.ErrorContains(t, err, "failed to save task")
	})

	t.Run("full queue rejects submission", func(t *testing.T) {
		t.Parallel()

		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, config, testLogger())

		require.NoError(t, runner.Submit(context.Background(), NewMockAnswerTask(1)))

		err := runner.Submit(context.Background(), NewMockAnswerTask(2))
		assert.ErrorIs(t, err, ErrQueueFull)
	})
}

func TestTaskRunnerProcessing(t *testing.T) {
	t.Parallel()

	t.Run("executes submitted tasks and records completion", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

		executed := make(chan uuid.UUID, 3)
		tasks := make([]*MockTask, 0, 3)
		for i := int64(1); i <= 3; i++ {
			task := NewMockAnswerTask(i)
			id := task.ID()
			task.ExecuteFn = func(ctx context.Context) error {
				executed <- id
				return nil
			}
			tasks = append(tasks, task)
		}

		require.NoError(t, runner.Start())
		defer runner.Stop()

		for _, task := range tasks {
			require.NoError(t, runner.Submit(context.Background(), task))
		}

		for range tasks {
			select {
			case <-executed:
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for task execution")
			}
		}

		for _, task := range tasks {
			waitForStatus(t, store, task.ID(), TaskStatusCompleted)
		}
	})

	t.Run("failed task is marked failed and not redelivered", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

		executions := make(chan struct{}, 8)
		task := NewMockAnswerTask(42)
		task.ExecuteFn = func(ctx context.Context) error {
			executions <- struct{}{}
			return errors.New("permanent failure")
		}

		handled := make(chan error, 1)
		runner.SetErrorHandler(func(task Task, err error) {
			handled <- err
		})

		require.NoError(t, runner.Start())
		defer runner.Stop()

		require.NoError(t, runner.Submit(context.Background(), task))

		select {
		case err := <-handled:
			assert.ErrorContains(t, err, "permanent failure")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for error handler")
		}

		waitForStatus(t, store, task.ID(), TaskStatusFailed)

		// One execution only; retries happen inside the task, not here.
		assert.Len(t, executions, 1)
	})
}

func TestTaskRunnerRecovery(t *testing.T) {
	t.Parallel()

	t.Run("rehydrates and runs pending tasks from previous run", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		persisted := NewMockAnswerTask(42)
		require.NoError(t, store.SaveTask(context.Background(), persisted))

		executed := make(chan int64, 1)
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
		runner.RegisterRehydrator(TaskTypeAnswerGeneration, &mockRehydrator{
			rehydrateFn: func(taskID uuid.UUID, payload []byte) (Task, error) {
				questionID, err := ParseQuestionIDPayload(payload)
				if err != nil {
					return nil, err
				}
				restored := NewMockTask(taskID, TaskTypeAnswerGeneration, payload)
				restored.ExecuteFn = func(ctx context.Context) error {
					executed <- questionID
					return nil
				}
				return restored, nil
			},
		})

		require.NoError(t, runner.Start())
		defer runner.Stop()

		select {
		case questionID := <-executed:
			assert.Equal(t, int64(42), questionID)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for recovered task execution")
		}

		waitForStatus(t, store, persisted.ID(), TaskStatusCompleted)
	})

	t.Run("resets interrupted processing tasks to pending", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		interrupted := NewMockAnswerTask(42)
		interrupted.TaskStatus = TaskStatusProcessing
		require.NoError(t, store.SaveTask(context.Background(), interrupted))

		executed := make(chan struct{}, 1)
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
		runner.RegisterRehydrator(TaskTypeAnswerGeneration, &mockRehydrator{
			rehydrateFn: func(taskID uuid.UUID, payload []byte) (Task, error) {
				restored := NewMockTask(taskID, TaskTypeAnswerGeneration, payload)
				restored.ExecuteFn = func(ctx context.Context) error {
					executed <- struct{}{}
					return nil
				}
				return restored, nil
			},
		})

		require.NoError(t, runner.Start())
		defer runner.Stop()

		select {
		case <-executed:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for recovered task execution")
		}
	})

	t.Run("marks tasks without a rehydrator as failed", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		orphan := NewMockTask(uuid.New(), "unknown_type", []byte(`{}`))
		require.NoError(t, store.SaveTask(context.Background(), orphan))

		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
		require.NoError(t, runner.Recover())

		status, ok := store.GetTaskStatus(orphan.ID())
		require.True(t, ok)
		assert.Equal(t, TaskStatusFailed, status)
	})

	t.Run("marks tasks with unparseable payloads as failed", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		broken := NewMockTask(uuid.New(), TaskTypeAnswerGeneration, []byte(`garbage`))
		require.NoError(t, store.SaveTask(context.Background(), broken))

		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
		runner.RegisterRehydrator(TaskTypeAnswerGeneration, &mockRehydrator{
			rehydrateFn: func(taskID uuid.UUID, payload []byte) (Task, error) {
				if _, err := ParseQuestionIDPayload(payload); err != nil {
					return nil, err
				}
				return NewMockTask(taskID, TaskTypeAnswerGeneration, payload), nil
			},
		})
		require.NoError(t, runner.Recover())

		status, ok := store.GetTaskStatus(broken.ID())
		require.True(t, ok)
		assert.Equal(t, TaskStatusFailed, status)
	})
}

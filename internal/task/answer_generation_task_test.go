package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhall/studyhall-api/internal/store"
)

// mockAnswerService implements AnswerService with function fields
type mockAnswerService struct {
	generateFn    func(ctx context.Context, questionID int64) error
	fallbackFn    func(ctx context.Context, questionID int64) error
	generateCalls int
	fallbackCalls int
}

func (m *mockAnswerService) GenerateAndStoreOnce(ctx context.Context, questionID int64) error {
	m.generateCalls++
	if m.generateFn != nil {
		return m.generateFn(ctx, questionID)
	}
	return nil
}

func (m *mockAnswerService) StoreFallback(ctx context.Context, questionID int64) error {
	m.fallbackCalls++
	if m.fallbackFn != nil {
		return m.fallbackFn(ctx, questionID)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTask(t *testing.T, svc *mockAnswerService, retry RetryConfig) (*AnswerGenerationTask, *[]time.Duration) {
	t.Helper()

	task, err := NewAnswerGenerationTask(42, svc, retry, testLogger())
	require.NoError(t, err)

	// Record backoff waits instead of sleeping.
	var delays []time.Duration
	task.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return task, &delays
}

func TestNewAnswerGenerationTask(t *testing.T) {
	t.Parallel()

	t.Run("requires answer service", func(t *testing.T) {
		t.Parallel()
		_, err := NewAnswerGenerationTask(42, nil, DefaultRetryConfig(), testLogger())
		assert.ErrorIs(t, err, ErrNilAnswerService)
	})

	t.Run("requires logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewAnswerGenerationTask(42, &mockAnswerService{}, DefaultRetryConfig(), nil)
		assert.ErrorIs(t, err, ErrNilLogger)
	})

	t.Run("requires positive question ID", func(t *testing.T) {
		t.Parallel()
		_, err := NewAnswerGenerationTask(0, &mockAnswerService{}, DefaultRetryConfig(), testLogger())
		assert.ErrorIs(t, err, ErrInvalidQuestionID)
	})

	t.Run("payload carries question ID", func(t *testing.T) {
		t.Parallel()

		task, err := NewAnswerGenerationTask(42, &mockAnswerService{}, DefaultRetryConfig(), testLogger())
		require.NoError(t, err)

		assert.JSONEq(t, `{"id": 42}`, string(task.Payload()))
		assert.Equal(t, TaskTypeAnswerGeneration, task.Type())
		assert.Equal(t, TaskStatusPending, task.Status())
	})
}

func TestAnswerGenerationTaskExecute(t *testing.T) {
	t.Parallel()

	t.Run("completes on first successful attempt", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{}
		task, delays := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(context.Background())
		require.NoError(t, err)

		assert.Equal(t, TaskStatusCompleted, task.Status())
		assert.Equal(t, 1, svc.generateCalls)
		assert.Equal(t, 0, svc.fallbackCalls)
		assert.Empty(t, *delays)
	})

	t.Run("retries with doubling backoff then succeeds", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{}
		svc.generateFn = func(ctx context.Context, questionID int64) error {
			if svc.generateCalls < 3 {
				return errors.New("transient failure")
			}
			return nil
		}
		task, delays := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(context.Background())
		require.NoError(t, err)

		assert.Equal(t, TaskStatusCompleted, task.Status())
		assert.Equal(t, 3, svc.generateCalls)
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *delays)
	})

	t.Run("writes fallback after exhausting attempts", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{
			generateFn: func(ctx context.Context, questionID int64) error {
				return errors.New("persistent failure")
			},
		}
		task, _ := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(context.Background())
		assert.ErrorIs(t, err, ErrAttemptsExhausted)

		assert.Equal(t, TaskStatusFailed, task.Status())
		assert.Equal(t, 3, svc.generateCalls)
		assert.Equal(t, 1, svc.fallbackCalls)
	})

	t.Run("skips fallback when question does not exist", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{
			generateFn: func(ctx context.Context, questionID int64) error {
				return store.ErrQuestionNotFound
			},
		}
		task, _ := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(context.Background())
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
		assert.ErrorIs(t, err, store.ErrQuestionNotFound)

		assert.Equal(t, 3, svc.generateCalls)
		assert.Equal(t, 0, svc.fallbackCalls, "no fallback without a question to attach it to")
	})

	t.Run("tolerates question vanishing before fallback write", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{
			generateFn: func(ctx context.Context, questionID int64) error {
				return errors.New("persistent failure")
			},
			fallbackFn: func(ctx context.Context, questionID int64) error {
				return store.ErrInvalidEntity
			},
		}
		task, _ := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(context.Background())
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
		assert.Equal(t, 1, svc.fallbackCalls)
	})

	t.Run("reports fallback write failure", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{
			generateFn: func(ctx context.Context, questionID int64) error {
				return errors.New("persistent failure")
			},
			fallbackFn: func(ctx context.Context, questionID int64) error {
				return errors.New("disk on fire")
			},
		}
		task, _ := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(context.Background())
		assert.ErrorIs(t, err, ErrFallbackNotWritten)
	})

	t.Run("single attempt config never sleeps", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{
			generateFn: func(ctx context.Context, questionID int64) error {
				return errors.New("failure")
			},
		}
		task, delays := newTestTask(t, svc, RetryConfig{MaxAttempts: 1, BackoffBase: time.Second, BackoffCap: 10 * time.Second})

		err := task.Execute(context.Background())
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
		assert.Equal(t, 1, svc.generateCalls)
		assert.Empty(t, *delays)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := &mockAnswerService{}
		task, _ := newTestTask(t, svc, DefaultRetryConfig())

		err := task.Execute(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, TaskStatusFailed, task.Status())
		assert.Equal(t, 0, svc.generateCalls)
	})

	t.Run("stops when cancelled during backoff", func(t *testing.T) {
		t.Parallel()

		svc := &mockAnswerService{
			generateFn: func(ctx context.Context, questionID int64) error {
				return errors.New("failure")
			},
		}
		task, _ := newTestTask(t, svc, DefaultRetryConfig())
		task.sleep = func(ctx context.Context, d time.Duration) error {
			return context.Canceled
		}

		err := task.Execute(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, svc.generateCalls)
		assert.Equal(t, 0, svc.fallbackCalls)
	})
}

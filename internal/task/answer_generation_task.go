package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyhall/studyhall-api/internal/metrics"
	"github.com/studyhall/studyhall-api/internal/store"
)

// Status constants for AnswerGenerationTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilAnswerService   = errors.New("answer service cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrInvalidQuestionID  = errors.New("question ID must be positive")
	ErrAttemptsExhausted  = errors.New("all generation attempts exhausted")
	ErrFallbackNotWritten = errors.New("fallback response could not be written")
)

// AnswerService defines the single-attempt operations the task drives.
// The retry loop, backoff, and fallback policy live here in the task;
// the service owns the transaction and row lock for one attempt.
type AnswerService interface {
	// GenerateAndStoreOnce performs one locked generation attempt for the
	// question: lock the row, short-circuit if a response already exists,
	// call the generator, persist the response, link recommendations.
	// Returns store.ErrQuestionNotFound if the question does not exist.
	GenerateAndStoreOnce(ctx context.Context, questionID int64) error

	// StoreFallback writes the fixed fallback answer for the question,
	// inserting or overwriting as needed.
	// Returns store.ErrInvalidEntity if the question no longer exists.
	StoreFallback(ctx context.Context, questionID int64) error
}

// RetryConfig bounds the generation attempt loop.
type RetryConfig struct {
	// MaxAttempts is the total number of generation attempts before the
	// fallback is written. Minimum 1.
	MaxAttempts int

	// BackoffBase is the delay after the first failed attempt; it doubles
	// per subsequent failure.
	BackoffBase time.Duration

	// BackoffCap clamps the doubling.
	BackoffCap time.Duration
}

// DefaultRetryConfig returns the standard retry policy: three attempts
// with 1s/2s waits between them, capped at 10s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BackoffBase: 1 * time.Second,
		BackoffCap:  10 * time.Second,
	}
}

// answerGenerationPayload represents the serialized data stored in the task
type answerGenerationPayload struct {
	QuestionID int64 `json:"id"`
}

// AnswerGenerationTask implements the Task interface for generating an
// answer to a question. Execute owns the whole retry lifecycle: bounded
// attempts with exponential backoff, and a guaranteed fallback write when
// every attempt fails. The runner never redelivers a failed task; this
// loop is the only retry mechanism.
type AnswerGenerationTask struct {
	id            uuid.UUID
	questionID    int64
	answerService AnswerService
	retry         RetryConfig
	logger        *slog.Logger
	status        string
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewAnswerGenerationTask creates a new answer generation task
func NewAnswerGenerationTask(
	questionID int64,
	answerService AnswerService,
	retry RetryConfig,
	logger *slog.Logger,
) (*AnswerGenerationTask, error) {
	return newAnswerGenerationTask(uuid.New(), questionID, answerService, retry, logger)
}

// RehydrateAnswerGenerationTask rebuilds a task recovered from the tasks
// table, preserving its original ID so status updates hit the right row.
func RehydrateAnswerGenerationTask(
	taskID uuid.UUID,
	questionID int64,
	answerService AnswerService,
	retry RetryConfig,
	logger *slog.Logger,
) (*AnswerGenerationTask, error) {
	if taskID == uuid.Nil {
		return nil, errors.New("task ID cannot be nil")
	}
	return newAnswerGenerationTask(taskID, questionID, answerService, retry, logger)
}

func newAnswerGenerationTask(
	taskID uuid.UUID,
	questionID int64,
	answerService AnswerService,
	retry RetryConfig,
	logger *slog.Logger,
) (*AnswerGenerationTask, error) {
	if answerService == nil {
		return nil, ErrNilAnswerService
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if questionID <= 0 {
		return nil, ErrInvalidQuestionID
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	return &AnswerGenerationTask{
		id:            taskID,
		questionID:    questionID,
		answerService: answerService,
		retry:         retry,
		logger:        logger.With("task_type", TaskTypeAnswerGeneration, "question_id", questionID),
		status:        statusPending,
		sleep:         sleepWithContext,
	}, nil
}

// ID returns the task's unique identifier
func (t *AnswerGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *AnswerGenerationTask) Type() string {
	return TaskTypeAnswerGeneration
}

// Payload returns the task data as a byte slice
func (t *AnswerGenerationTask) Payload() []byte {
	payload := answerGenerationPayload{
		QuestionID: t.questionID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *AnswerGenerationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the bounded attempt loop. Each attempt is a single locked
// transaction in the answer service. A nil return from any attempt,
// including the idempotent short-circuit when a response already exists,
// completes the task. When every attempt fails the fallback answer is
// written so the question is never left unanswered, unless the question
// itself no longer exists.
func (t *AnswerGenerationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting answer generation task", "max_attempts", t.retry.MaxAttempts)

	var lastErr error
	for attempt := 1; attempt <= t.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			t.status = statusFailed
			t.logger.Error("task cancelled by context", "error", err)
			return fmt.Errorf("task cancelled by context: %w", err)
		}

		metrics.GenerationAttempts.Inc()

		err := t.answerService.GenerateAndStoreOnce(ctx, t.questionID)
		if err == nil {
			t.status = statusCompleted
			t.logger.Info("answer generation task completed", "attempt", attempt)
			return nil
		}
		lastErr = err

		t.logger.Warn("generation attempt failed",
			"attempt", attempt,
			"max_attempts", t.retry.MaxAttempts,
			"error", err)

		if attempt < t.retry.MaxAttempts {
			delay := backoffDelay(attempt, t.retry.BackoffBase, t.retry.BackoffCap)
			if err := t.sleep(ctx, delay); err != nil {
				t.status = statusFailed
				t.logger.Error("task cancelled during backoff", "error", err)
				return fmt.Errorf("task cancelled during backoff: %w", err)
			}
		}
	}

	// The question vanished: there is nothing to attach a fallback to.
	if errors.Is(lastErr, store.ErrQuestionNotFound) {
		t.status = statusFailed
		metrics.GenerationFailures.WithLabelValues(metrics.ReasonQuestionMissing).Inc()
		t.logger.Error("question not found after exhausting attempts")
		return fmt.Errorf("%w: %w", ErrAttemptsExhausted, lastErr)
	}

	metrics.GenerationFailures.WithLabelValues(metrics.ReasonExhausted).Inc()
	t.logger.Error("all generation attempts failed, writing fallback answer",
		"attempts", t.retry.MaxAttempts,
		"error", lastErr)

	if err := t.answerService.StoreFallback(ctx, t.questionID); err != nil {
		t.status = statusFailed
		if errors.Is(err, store.ErrInvalidEntity) {
			metrics.GenerationFailures.WithLabelValues(metrics.ReasonQuestionMissing).Inc()
			t.logger.Error("question disappeared before fallback write", "error", err)
			return fmt.Errorf("%w: %w", ErrAttemptsExhausted, err)
		}
		metrics.GenerationFailures.WithLabelValues(metrics.ReasonFallbackWrite).Inc()
		t.logger.Error("failed to write fallback answer", "error", err)
		return fmt.Errorf("%w: %w", ErrFallbackNotWritten, err)
	}

	metrics.GenerationsStored.WithLabelValues("fallback").Inc()

	// The question has an answer, but generation never succeeded; the
	// task is recorded as failed so operators can find and retry it.
	t.status = statusFailed
	return fmt.Errorf("%w: fallback answer stored: %w", ErrAttemptsExhausted, lastErr)
}

// sleepWithContext waits for d or until the context is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

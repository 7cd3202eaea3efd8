package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/events"
	"github.com/studyhall/studyhall-api/internal/metrics"
)

// TaskFactory creates tasks from question IDs. Implemented by
// AnswerGenerationTaskFactory.
type TaskFactory interface {
	CreateTask(questionID int64) (Task, error)
}

// TaskSubmitter accepts tasks for background execution. Implemented by
// TaskRunner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns answer generation request events into queued tasks, normalizing
// the assorted payload shapes producers emit.
type TaskFactoryEventHandler struct {
	taskFactory TaskFactory
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks and submits them to the provided runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskFactory,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
// Events of other types are ignored. Malformed payloads are rejected
// before any task is created or persisted.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeAnswerGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	questionID, err := ParseQuestionIDPayload(event.Payload)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(metrics.ReasonInvalidInput).Inc()
		h.logger.Error("rejecting event with malformed payload",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("failed to parse event payload: %w", err)
	}
	if questionID <= 0 {
		metrics.GenerationFailures.WithLabelValues(metrics.ReasonInvalidInput).Inc()
		h.logger.Error("rejecting event with non-positive question ID",
			"question_id", questionID,
			"event_id", event.ID)
		return fmt.Errorf("%w: question ID %d", ErrInvalidQuestionID, questionID)
	}

	h.logger.Debug("creating task for question",
		"question_id", questionID,
		"event_id", event.ID)
	task, err := h.taskFactory.CreateTask(questionID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"question_id", questionID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"question_id", questionID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"question_id", questionID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

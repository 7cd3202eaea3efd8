package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// AnswerGenerationTaskFactory creates AnswerGenerationTask instances
type AnswerGenerationTaskFactory struct {
	answerService AnswerService
	retry         RetryConfig
	logger        *slog.Logger
}

// NewAnswerGenerationTaskFactory creates a new factory for AnswerGenerationTasks
func NewAnswerGenerationTaskFactory(
	answerService AnswerService,
	retry RetryConfig,
	logger *slog.Logger,
) *AnswerGenerationTaskFactory {
	return &AnswerGenerationTaskFactory{
		answerService: answerService,
		retry:         retry,
		logger:        logger.With("component", "answer_generation_task_factory"),
	}
}

// CreateTask creates a new AnswerGenerationTask for the specified question
func (f *AnswerGenerationTaskFactory) CreateTask(questionID int64) (Task, error) {
	return NewAnswerGenerationTask(
		questionID,
		f.answerService,
		f.retry,
		f.logger,
	)
}

// RehydrateTask rebuilds a task recovered from persistence, reusing its
// stored ID and payload.
func (f *AnswerGenerationTaskFactory) RehydrateTask(taskID uuid.UUID, payload []byte) (Task, error) {
	questionID, err := ParseQuestionIDPayload(payload)
	if err != nil {
		return nil, err
	}
	return RehydrateAnswerGenerationTask(
		taskID,
		questionID,
		f.answerService,
		f.retry,
		f.logger,
	)
}

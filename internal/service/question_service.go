package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/events"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/store"
)

// QuestionServiceError is a custom error type for question service errors.
type QuestionServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for QuestionServiceError.
func (e *QuestionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("question service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("question service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *QuestionServiceError) Unwrap() error {
	return e.Err
}

// NewQuestionServiceError creates a new QuestionServiceError.
func NewQuestionServiceError(operation, message string, err error) *QuestionServiceError {
	return &QuestionServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// QuestionService provides question-related operations
type QuestionService interface {
	// CreateQuestion stores a new question for a lesson and requests
	// asynchronous answer generation for it.
	CreateQuestion(ctx context.Context, lessonID, userID int64, content string) (*domain.Question, error)

	// GetQuestion retrieves a question and its response, if one has been
	// generated yet. The response is nil while generation is in flight.
	GetQuestion(ctx context.Context, id int64) (*domain.Question, *domain.AiResponse, error)

	// ListByLesson retrieves all questions for a lesson, newest first.
	ListByLesson(ctx context.Context, lessonID int64) ([]*domain.Question, error)

	// RetryResponse discards a question's response, if any, and requests
	// fresh answer generation. Intended for operator use when a question
	// ended up with a fallback or degraded answer.
	RetryResponse(ctx context.Context, questionID int64) error
}

// questionServiceImpl implements the QuestionService interface
type questionServiceImpl struct {
	db            *sql.DB
	questionStore store.QuestionStore
	lessonStore   store.LessonStore
	responseStore store.AiResponseStore
	eventEmitter  events.EventEmitter
	logger        *slog.Logger
}

// NewQuestionService creates a new QuestionService.
// It returns an error if any of the required dependencies are nil.
func NewQuestionService(
	db *sql.DB,
	questionStore store.QuestionStore,
	lessonStore store.LessonStore,
	responseStore store.AiResponseStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (QuestionService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if questionStore == nil {
		return nil, errors.New("questionStore cannot be nil")
	}
	if lessonStore == nil {
		return nil, errors.New("lessonStore cannot be nil")
	}
	if responseStore == nil {
		return nil, errors.New("responseStore cannot be nil")
	}
	if eventEmitter == nil {
		return nil, errors.New("eventEmitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &questionServiceImpl{
		db:            db,
		questionStore: questionStore,
		lessonStore:   lessonStore,
		responseStore: responseStore,
		eventEmitter:  eventEmitter,
		logger:        logger.With(slog.String("component", "question_service")),
	}, nil
}

// CreateQuestion implements QuestionService.CreateQuestion
// The question is committed before the generation event is emitted, so a
// failed emit leaves a stored question that the retry flow can pick up,
// never an orphaned event.
func (s *questionServiceImpl) CreateQuestion(
	ctx context.Context,
	lessonID, userID int64,
	content string,
) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	question, err := domain.NewQuestion(lessonID, userID, content)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(
		ctx,
		s.db,
		func(ctx context.Context, tx *sql.Tx) error {
			lesson, err := s.lessonStore.WithTx(tx).GetByID(ctx, lessonID)
			if err != nil {
				return err
			}

			if err := s.questionStore.WithTx(tx).Create(ctx, question); err != nil {
				return NewQuestionServiceError("create_question", "failed to save question", err)
			}

			question.Lesson = lesson
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	if err := s.requestGeneration(ctx, question.ID); err != nil {
		// The question exists; answer generation just hasn't been
		// scheduled. Surface the question anyway.
		log.Error("failed to request answer generation for new question",
			slog.String("error", err.Error()),
			slog.Int64("question_id", question.ID))
	}

	log.Info("question created",
		slog.Int64("question_id", question.ID),
		slog.Int64("lesson_id", lessonID))
	return question, nil
}

// GetQuestion implements QuestionService.GetQuestion
func (s *questionServiceImpl) GetQuestion(
	ctx context.Context,
	id int64,
) (*domain.Question, *domain.AiResponse, error) {
	question, err := s.questionStore.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	response, err := s.responseStore.GetByQuestionID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrResponseNotFound) {
			return question, nil, nil
		}
		return nil, nil, NewQuestionServiceError("get_question", "failed to load response", err)
	}

	return question, response, nil
}

// ListByLesson implements QuestionService.ListByLesson
func (s *questionServiceImpl) ListByLesson(ctx context.Context, lessonID int64) ([]*domain.Question, error) {
	if _, err := s.lessonStore.GetByID(ctx, lessonID); err != nil {
		return nil, err
	}

	return s.questionStore.FindByLesson(ctx, lessonID)
}

// RetryResponse implements QuestionService.RetryResponse
// Deleting the old response and emitting the new request are deliberately
// not atomic: the worst case of a failed emit is a question with no
// response, which is exactly the state a newly asked question is in.
func (s *questionServiceImpl) RetryResponse(ctx context.Context, questionID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	exists, err := s.questionStore.Exists(ctx, questionID)
	if err != nil {
		return NewQuestionServiceError("retry_response", "failed to check question", err)
	}
	if !exists {
		return store.ErrQuestionNotFound
	}

	err = s.responseStore.DeleteByQuestionID(ctx, questionID)
	if err != nil && !errors.Is(err, store.ErrResponseNotFound) {
		return NewQuestionServiceError("retry_response", "failed to delete existing response", err)
	}

	if err := s.requestGeneration(ctx, questionID); err != nil {
		return NewQuestionServiceError("retry_response", "failed to request generation", err)
	}

	log.Info("response retry requested", slog.Int64("question_id", questionID))
	return nil
}

func (s *questionServiceImpl) requestGeneration(ctx context.Context, questionID int64) error {
	event, err := events.NewAnswerGenerationEvent(questionID)
	if err != nil {
		return fmt.Errorf("failed to create generation event: %w", err)
	}
	return s.eventEmitter.EmitEvent(ctx, event)
}

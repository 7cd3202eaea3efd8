package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/generation"
	"github.com/studyhall/studyhall-api/internal/metrics"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/store"
)

// FallbackAnswer is stored when every generation attempt has failed.
// Unlike generation.DegradedAnswer, which the generator returns in-band
// when the provider call itself fails, this text is written by the task
// orchestrator when no generation attempt produced anything storable.
const FallbackAnswer = "We encountered an issue generating a response. " +
	"Please try again later or contact support if the issue persists."

// AnswerServiceError is a custom error type for answer service errors.
type AnswerServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for AnswerServiceError.
func (e *AnswerServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("answer service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("answer service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AnswerServiceError) Unwrap() error {
	return e.Err
}

// NewAnswerServiceError creates a new AnswerServiceError.
func NewAnswerServiceError(operation, message string, err error) *AnswerServiceError {
	return &AnswerServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// AnswerGenerationService implements the single-attempt operations the
// answer generation task drives. Each attempt runs in one transaction
// holding a row lock on the question, which serializes concurrent
// attempts for the same question and makes the exists-check-then-create
// sequence race-free.
type AnswerGenerationService struct {
	db            *sql.DB
	questionStore store.QuestionStore
	responseStore store.AiResponseStore
	generator     generation.Generator
	matcher       LessonMatcher
	logger        *slog.Logger
}

// NewAnswerGenerationService creates a new AnswerGenerationService.
// It returns an error if any of the required dependencies are nil.
func NewAnswerGenerationService(
	db *sql.DB,
	questionStore store.QuestionStore,
	responseStore store.AiResponseStore,
	generator generation.Generator,
	matcher LessonMatcher,
	logger *slog.Logger,
) (*AnswerGenerationService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if questionStore == nil {
		return nil, errors.New("questionStore cannot be nil")
	}
	if responseStore == nil {
		return nil, errors.New("responseStore cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if matcher == nil {
		return nil, errors.New("matcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AnswerGenerationService{
		db:            db,
		questionStore: questionStore,
		responseStore: responseStore,
		generator:     generator,
		matcher:       matcher,
		logger:        logger.With(slog.String("component", "answer_service")),
	}, nil
}

// GenerateAndStoreOnce performs one locked generation attempt.
//
// Inside a single transaction it locks the question row, short-circuits
// if a response already exists (another worker won the race, or this is
// a redelivered task), calls the generator, persists the response, and
// links recommended lessons. Matcher failures are logged and swallowed:
// a stored answer without recommendations beats a rolled-back answer.
//
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *AnswerGenerationService) GenerateAndStoreOnce(ctx context.Context, questionID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return store.RunInTransaction(
		ctx,
		s.db,
		func(ctx context.Context, tx *sql.Tx) error {
			txQuestionStore := s.questionStore.WithTx(tx)
			txResponseStore := s.responseStore.WithTx(tx)

			question, err := txQuestionStore.GetForUpdate(ctx, questionID)
			if err != nil {
				return err
			}

			// Idempotency: exactly one response per question. The row lock
			// makes this check-then-create sequence safe.
			_, err = txResponseStore.GetByQuestionID(ctx, questionID)
			if err == nil {
				log.Info("response already exists, skipping generation",
					slog.Int64("question_id", questionID))
				return nil
			}
			if !errors.Is(err, store.ErrResponseNotFound) {
				return NewAnswerServiceError("generate", "failed to check for existing response", err)
			}

			result, err := s.generator.GenerateAnswer(ctx, question.Content, question.LessonContent())
			if err != nil {
				return NewAnswerServiceError("generate", "generator failed", err)
			}

			response, err := domain.NewAiResponse(questionID, result.Answer)
			if err != nil {
				return NewAnswerServiceError("generate", "invalid generated response", err)
			}

			if err := txResponseStore.Create(ctx, response); err != nil {
				// Unique-constraint backstop: someone else stored a response
				// between our check and insert. Should not happen under the
				// row lock, but losing this race is still a success.
				if errors.Is(err, store.ErrResponseExists) {
					log.Warn("response created concurrently, keeping existing one",
						slog.Int64("question_id", questionID))
					return nil
				}
				return NewAnswerServiceError("generate", "failed to store response", err)
			}

			metrics.GenerationsStored.WithLabelValues("generated").Inc()

			if err := s.matcher.Link(ctx, tx, response, question, result.RecommendedTopics); err != nil {
				log.Warn("failed to link recommended lessons, keeping response without recommendations",
					slog.String("error", err.Error()),
					slog.Int64("question_id", questionID),
					slog.Int64("response_id", response.ID))
			}

			log.Info("answer generated and stored",
				slog.Int64("question_id", questionID),
				slog.Int64("response_id", response.ID),
				slog.Int("recommended_count", len(response.RecommendedLessons)))
			return nil
		},
	)
}

// StoreFallback writes the fixed fallback answer for the question,
// inserting or overwriting as needed and clearing any recommendations.
// Returns store.ErrInvalidEntity if the question no longer exists.
func (s *AnswerGenerationService) StoreFallback(ctx context.Context, questionID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(
		ctx,
		s.db,
		func(ctx context.Context, tx *sql.Tx) error {
			return s.responseStore.WithTx(tx).UpsertFallback(ctx, questionID, FallbackAnswer)
		},
	)
	if err != nil {
		return err
	}

	log.Info("fallback answer stored", slog.Int64("question_id", questionID))
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/store"
)

// PostgresAiResponseStore implements the store.AiResponseStore interface
// using a PostgreSQL database as the storage backend.
//
// The recommended_lessons JSON column is a denormalized mirror of the
// ai_response_lesson association table; every write path keeps the two
// in sync.
type PostgresAiResponseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAiResponseStore creates a new PostgreSQL implementation of the
// AiResponseStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAiResponseStore(db store.DBTX, logger *slog.Logger) *PostgresAiResponseStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAiResponseStore{
		db:     db,
		logger: logger.With(slog.String("component", "ai_response_store")),
	}
}

// Ensure PostgresAiResponseStore implements store.AiResponseStore interface
var _ store.AiResponseStore = (*PostgresAiResponseStore)(nil)

// WithTx implements store.AiResponseStore.WithTx
func (s *PostgresAiResponseStore) WithTx(tx *sql.Tx) store.AiResponseStore {
	return &PostgresAiResponseStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.AiResponseStore.Create
// Returns store.ErrResponseExists if the question already has a response.
// Returns store.ErrInvalidEntity if the question doesn't exist.
func (s *PostgresAiResponseStore) Create(ctx context.Context, response *domain.AiResponse) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := response.Validate(); err != nil {
		log.Warn("response validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("question_id", response.QuestionID))
		return err
	}

	mirror, err := marshalLessonRefs(response.RecommendedLessons)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ai_responses (question_id, answer, recommended_lessons, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = s.db.QueryRowContext(
		ctx,
		query,
		response.QuestionID,
		response.Answer,
		mirror,
		response.CreatedAt,
		response.UpdatedAt,
	).Scan(&response.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("response already exists for question",
				slog.Int64("question_id", response.QuestionID))
			return fmt.Errorf("%w: question %d", store.ErrResponseExists, response.QuestionID)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during response creation",
				slog.String("error", err.Error()),
				slog.Int64("question_id", response.QuestionID))
			return fmt.Errorf("%w: question with ID %d not found",
				store.ErrInvalidEntity, response.QuestionID)
		}

		log.Error("failed to create response",
			slog.String("error", err.Error()),
			slog.Int64("question_id", response.QuestionID))
		return MapError(err)
	}

	log.Info("response created successfully",
		slog.Int64("response_id", response.ID),
		slog.Int64("question_id", response.QuestionID))
	return nil
}

// GetByQuestionID implements store.AiResponseStore.GetByQuestionID
// Returns store.ErrResponseNotFound if no response exists for the question.
func (s *PostgresAiResponseStore) GetByQuestionID(ctx context.Context, questionID int64) (*domain.AiResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, question_id, answer, recommended_lessons, created_at, updated_at
		FROM ai_responses
		WHERE question_id = $1
	`

	var response domain.AiResponse
	var mirror []byte

	err := s.db.QueryRowContext(ctx, query, questionID).Scan(
		&response.ID,
		&response.QuestionID,
		&response.Answer,
		&mirror,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("response not found", slog.Int64("question_id", questionID))
			return nil, store.ErrResponseNotFound
		}
		log.Error("failed to get response by question ID",
			slog.String("error", err.Error()),
			slog.Int64("question_id", questionID))
		return nil, MapError(err)
	}

	response.RecommendedLessons = []domain.LessonRef{}
	if len(mirror) > 0 {
		if err := json.Unmarshal(mirror, &response.RecommendedLessons); err != nil {
			log.Error("failed to decode recommended lessons",
				slog.String("error", err.Error()),
				slog.Int64("response_id", response.ID))
			return nil, fmt.Errorf("decoding recommended lessons: %w", err)
		}
	}

	return &response, nil
}

// UpsertFallback implements store.AiResponseStore.UpsertFallback
// It inserts or overwrites the question's response with the given answer
// and clears all recommendations. Overwriting is benign here: this path
// only runs when generation could not produce a real answer.
// Returns store.ErrInvalidEntity if the question no longer exists.
func (s *PostgresAiResponseStore) UpsertFallback(ctx context.Context, questionID int64, answer string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()

	query := `
		INSERT INTO ai_responses (question_id, answer, recommended_lessons, created_at, updated_at)
		VALUES ($1, $2, '[]', $3, $3)
		ON CONFLICT (question_id) DO UPDATE
		SET answer = EXCLUDED.answer,
		    recommended_lessons = '[]',
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var responseID int64
	err := s.db.QueryRowContext(ctx, query, questionID, answer, now).Scan(&responseID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("question disappeared before fallback write",
				slog.Int64("question_id", questionID))
			return fmt.Errorf("%w: question with ID %d not found",
				store.ErrInvalidEntity, questionID)
		}
		log.Error("failed to upsert fallback response",
			slog.String("error", err.Error()),
			slog.Int64("question_id", questionID))
		return MapError(err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`DELETE FROM ai_response_lesson WHERE ai_response_id = $1`,
		responseID,
	)
	if err != nil {
		log.Error("failed to clear recommendation links",
			slog.String("error", err.Error()),
			slog.Int64("response_id", responseID))
		return MapError(err)
	}

	log.Info("fallback response stored",
		slog.Int64("response_id", responseID),
		slog.Int64("question_id", questionID))
	return nil
}

// ReplaceRecommendations implements store.AiResponseStore.ReplaceRecommendations
// It replaces the response's recommendation links with one edge per lesson
// at the given relevance score and rewrites the JSON mirror to match.
// Idempotent: re-invocation with the same lessons yields the same state.
func (s *PostgresAiResponseStore) ReplaceRecommendations(
	ctx context.Context,
	responseID int64,
	lessons []*domain.Lesson,
	relevanceScore int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM ai_response_lesson WHERE ai_response_id = $1`,
		responseID,
	)
	if err != nil {
		log.Error("failed to clear recommendation links",
			slog.String("error", err.Error()),
			slog.Int64("response_id", responseID))
		return MapError(err)
	}

	refs := make([]domain.LessonRef, 0, len(lessons))
	for _, lesson := range lessons {
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO ai_response_lesson (ai_response_id, lesson_id, relevance_score, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4)`,
			responseID,
			lesson.ID,
			relevanceScore,
			time.Now().UTC(),
		)
		if err != nil {
			log.Error("failed to insert recommendation link",
				slog.String("error", err.Error()),
				slog.Int64("response_id", responseID),
				slog.Int64("lesson_id", lesson.ID))
			return MapError(err)
		}
		refs = append(refs, domain.LessonRef{ID: lesson.ID, Title: lesson.Title})
	}

	mirror, err := marshalLessonRefs(refs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE ai_responses SET recommended_lessons = $1, updated_at = $2 WHERE id = $3`,
		mirror,
		time.Now().UTC(),
		responseID,
	)
	if err != nil {
		log.Error("failed to update recommendation mirror",
			slog.String("error", err.Error()),
			slog.Int64("response_id", responseID))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "ai response"); err != nil {
		return err
	}

	log.Debug("recommendations replaced",
		slog.Int64("response_id", responseID),
		slog.Int("count", len(refs)))
	return nil
}

// DeleteByQuestionID implements store.AiResponseStore.DeleteByQuestionID
// Recommendation links are removed by the ON DELETE CASCADE constraint.
// Returns store.ErrResponseNotFound if no response exists for the question.
func (s *PostgresAiResponseStore) DeleteByQuestionID(ctx context.Context, questionID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM ai_responses WHERE question_id = $1`,
		questionID,
	)
	if err != nil {
		log.Error("failed to delete response",
			slog.String("error", err.Error()),
			slog.Int64("question_id", questionID))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrResponseNotFound
	}

	log.Info("response deleted",
		slog.Int64("question_id", questionID))
	return nil
}

func marshalLessonRefs(refs []domain.LessonRef) ([]byte, error) {
	if refs == nil {
		refs = []domain.LessonRef{}
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("encoding recommended lessons: %w", err)
	}
	return data, nil
}

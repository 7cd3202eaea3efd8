package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/store"
)

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the QuestionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

// Ensure PostgresQuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// WithTx implements store.QuestionStore.WithTx
// It returns a new QuestionStore instance using the provided transaction.
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &PostgresQuestionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.QuestionStore.Create
// It saves a new question to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the lesson doesn't exist (foreign key violation).
func (s *PostgresQuestionStore) Create(ctx context.Context, question *domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := question.Validate(); err != nil {
		log.Warn("question validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("lesson_id", question.LessonID))
		return err
	}

	query := `
		INSERT INTO questions (lesson_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		question.LessonID,
		question.UserID,
		question.Content,
		question.CreatedAt,
		question.UpdatedAt,
	).Scan(&question.ID)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during question creation",
				slog.String("error", err.Error()),
				slog.Int64("lesson_id", question.LessonID))
			return fmt.Errorf("%w: lesson with ID %d not found",
				store.ErrInvalidEntity, question.LessonID)
		}

		log.Error("failed to create question",
			slog.String("error", err.Error()),
			slog.Int64("lesson_id", question.LessonID))
		return MapError(err)
	}

	log.Info("question created successfully",
		slog.Int64("question_id", question.ID),
		slog.Int64("lesson_id", question.LessonID))
	return nil
}

// questionColumns is the select list shared by the lookup queries,
// joining the owning lesson.
const questionColumns = `
	q.id, q.lesson_id, q.user_id, q.content, q.created_at, q.updated_at,
	l.id, l.title, l.content, l.user_id, l.created_at, l.updated_at
`

func scanQuestionWithLesson(row *sql.Row) (*domain.Question, error) {
	var question domain.Question
	var lesson domain.Lesson

	err := row.Scan(
		&question.ID,
		&question.LessonID,
		&question.UserID,
		&question.Content,
		&question.CreatedAt,
		&question.UpdatedAt,
		&lesson.ID,
		&lesson.Title,
		&lesson.Content,
		&lesson.UserID,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	question.Lesson = &lesson
	return &question, nil
}

// GetByID implements store.QuestionStore.GetByID
// It retrieves a question by its unique ID with its owning lesson loaded.
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		JOIN lessons l ON l.id = q.lesson_id
		WHERE q.id = $1
	`

	question, err := scanQuestionWithLesson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("question not found", slog.Int64("question_id", id))
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to get question by ID",
			slog.String("error", err.Error()),
			slog.Int64("question_id", id))
		return nil, MapError(err)
	}

	return question, nil
}

// GetForUpdate implements store.QuestionStore.GetForUpdate
// It retrieves a question with a row-level lock, loading its owning lesson.
// Must be executed inside a transaction; the lock is what serializes
// concurrent generation attempts for the same question.
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *PostgresQuestionStore) GetForUpdate(ctx context.Context, id int64) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The lock is taken on the questions row only; locking the joined
	// lessons row would serialize unrelated questions in the same lesson.
	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		JOIN lessons l ON l.id = q.lesson_id
		WHERE q.id = $1
		FOR UPDATE OF q
	`

	question, err := scanQuestionWithLesson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("question not found for update", slog.Int64("question_id", id))
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to lock question",
			slog.String("error", err.Error()),
			slog.Int64("question_id", id))
		return nil, MapError(err)
	}

	return question, nil
}

// FindByLesson implements store.QuestionStore.FindByLesson
// It retrieves all questions for the given lesson, newest first.
// Returns an empty slice if the lesson has no questions.
func (s *PostgresQuestionStore) FindByLesson(ctx context.Context, lessonID int64) ([]*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_id, user_id, content, created_at, updated_at
		FROM questions
		WHERE lesson_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		log.Error("failed to query questions by lesson",
			slog.String("error", err.Error()),
			slog.Int64("lesson_id", lessonID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	questions := []*domain.Question{}
	for rows.Next() {
		var question domain.Question
		err := rows.Scan(
			&question.ID,
			&question.LessonID,
			&question.UserID,
			&question.Content,
			&question.CreatedAt,
			&question.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan question row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		questions = append(questions, &question)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return questions, nil
}

// Exists implements store.QuestionStore.Exists
func (s *PostgresQuestionStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

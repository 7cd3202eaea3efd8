package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/store"
)

// PostgresLessonStore implements the store.LessonStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonStore creates a new PostgreSQL implementation of the LessonStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_store")),
	}
}

// Ensure PostgresLessonStore implements store.LessonStore interface
var _ store.LessonStore = (*PostgresLessonStore)(nil)

// WithTx implements store.LessonStore.WithTx
func (s *PostgresLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return &PostgresLessonStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.LessonStore.GetByID
// Returns store.ErrLessonNotFound if the lesson does not exist.
func (s *PostgresLessonStore) GetByID(ctx context.Context, id int64) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, content, user_id, created_at, updated_at
		FROM lessons
		WHERE id = $1
	`

	var lesson domain.Lesson
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Content,
		&lesson.UserID,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson not found", slog.Int64("lesson_id", id))
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson by ID",
			slog.String("error", err.Error()),
			slog.Int64("lesson_id", id))
		return nil, MapError(err)
	}

	return &lesson, nil
}

// FindByTitles implements store.LessonStore.FindByTitles
// It resolves topic titles to lesson rows by exact match, skipping the
// excluded lesson. The result preserves the order of the input titles;
// titles with no matching lesson are absent.
func (s *PostgresLessonStore) FindByTitles(
	ctx context.Context,
	titles []string,
	excludeID int64,
) ([]*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(titles) == 0 {
		return []*domain.Lesson{}, nil
	}

	query := `
		SELECT id, title, content, user_id, created_at, updated_at
		FROM lessons
		WHERE title = ANY($1) AND id <> $2
	`

	rows, err := s.db.QueryContext(ctx, query, titles, excludeID)
	if err != nil {
		log.Error("failed to query lessons by titles",
			slog.String("error", err.Error()),
			slog.Int("title_count", len(titles)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	byTitle := make(map[string]*domain.Lesson, len(titles))
	for rows.Next() {
		var lesson domain.Lesson
		err := rows.Scan(
			&lesson.ID,
			&lesson.Title,
			&lesson.Content,
			&lesson.UserID,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan lesson row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		// First match wins when duplicate titles exist.
		if _, ok := byTitle[lesson.Title]; !ok {
			l := lesson
			byTitle[lesson.Title] = &l
		}
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	lessons := make([]*domain.Lesson, 0, len(byTitle))
	seen := make(map[int64]bool, len(byTitle))
	for _, title := range titles {
		lesson, ok := byTitle[title]
		if !ok || seen[lesson.ID] {
			continue
		}
		seen[lesson.ID] = true
		lessons = append(lessons, lesson)
	}

	return lessons, nil
}

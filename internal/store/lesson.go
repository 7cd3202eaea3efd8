package store

import (
	"context"
	"database/sql"

	"github.com/studyhall/studyhall-api/internal/domain"
)

// LessonStore defines the read interface for lesson data.
// The answer-generation flow only ever reads lessons: it pulls the
// owning lesson's content for context and resolves recommended topic
// titles to lesson rows. Lesson authoring happens elsewhere.
// Version: 1.0
type LessonStore interface {
	// GetByID retrieves a lesson by its unique ID.
	// Returns ErrLessonNotFound if the lesson does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Lesson, error)

	// FindByTitles retrieves lessons whose title exactly matches one of
	// the given titles, excluding the lesson with excludeID (a question's
	// own lesson is never a recommendation target). Unmatched titles are
	// simply absent from the result; order follows the input titles.
	FindByTitles(ctx context.Context, titles []string, excludeID int64) ([]*domain.Lesson, error)

	// WithTx returns a new LessonStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) LessonStore
}

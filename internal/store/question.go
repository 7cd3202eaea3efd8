package store

import (
	"context"
	"database/sql"

	"github.com/studyhall/studyhall-api/internal/domain"
)

// QuestionStore defines the interface for question data persistence.
// Questions are immutable once created, so there is no update operation.
// Version: 1.0
type QuestionStore interface {
	// Create saves a new question to the store and assigns its ID.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the lesson does not exist (foreign key violation).
	Create(ctx context.Context, question *domain.Question) error

	// GetByID retrieves a question by its unique ID, with its owning
	// lesson loaded.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Question, error)

	// GetForUpdate retrieves a question with a row-level lock using
	// SELECT FOR UPDATE, loading its owning lesson. This must be used
	// within a transaction; the lock serializes concurrent answer
	// generation attempts for the same question.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetForUpdate(ctx context.Context, id int64) (*domain.Question, error)

	// FindByLesson retrieves all questions for the given lesson,
	// newest first.
	FindByLesson(ctx context.Context, lessonID int64) ([]*domain.Question, error)

	// Exists reports whether a question with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// WithTx returns a new QuestionStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) QuestionStore
}

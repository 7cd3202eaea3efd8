package store

import (
	"context"
	"database/sql"

	"github.com/studyhall/studyhall-api/internal/domain"
)

// AiResponseStore defines the interface for persisting generated answers
// and their recommendation links.
// Version: 1.0
type AiResponseStore interface {
	// Create saves a new response to the store and assigns its ID.
	// It handles domain validation internally.
	// Returns ErrResponseExists if a response already exists for the
	// question (unique constraint on question_id) — the caller's
	// idempotency check is the primary defense, this is the backstop.
	// Returns ErrInvalidEntity if the question does not exist.
	Create(ctx context.Context, response *domain.AiResponse) error

	// GetByQuestionID retrieves the response attached to a question.
	// Returns ErrResponseNotFound if none exists.
	GetByQuestionID(ctx context.Context, questionID int64) (*domain.AiResponse, error)

	// UpsertFallback writes the given answer for the question, inserting
	// or overwriting as needed and clearing any recommendations. Used on
	// retry exhaustion, when overwriting is benign because generation
	// could not produce anything.
	// Returns ErrInvalidEntity if the question no longer exists.
	UpsertFallback(ctx context.Context, questionID int64, answer string) error

	// ReplaceRecommendations replaces the response's recommendation
	// links with one edge per lesson at the given relevance score, and
	// rewrites the denormalized recommended_lessons mirror to match.
	// Idempotent: re-invocation with the same lessons yields the same
	// state, never duplicate edges.
	ReplaceRecommendations(ctx context.Context, responseID int64, lessons []*domain.Lesson, relevanceScore int) error

	// DeleteByQuestionID removes a question's response and its
	// recommendation links. Used by the operator-facing retry flow.
	// Returns ErrResponseNotFound if no response exists.
	DeleteByQuestionID(ctx context.Context, questionID int64) error

	// WithTx returns a new AiResponseStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AiResponseStore
}

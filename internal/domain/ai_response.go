package domain

import (
	"fmt"
	"time"
)

// AiResponse-specific validation errors
var (
	ErrInvalidResponseQuestion = fmt.Errorf("%w: response question ID must be positive", ErrValidation)
	ErrEmptyResponseAnswer     = fmt.Errorf("%w: response answer cannot be empty", ErrValidation)
)

// LessonRef is a compact reference to a recommended lesson, stored in
// the denormalized recommended_lessons JSON column. The column is a
// mirror of the ai_response_lesson association table, kept for older
// consumers that read the JSON directly.
type LessonRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// AiResponse is the single generated answer attached to a Question.
// At most one AiResponse exists per question; the storage layer
// enforces this with a unique constraint on question_id.
type AiResponse struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`

	// Answer is the generated (or fallback) answer text.
	Answer string `json:"answer"`

	// RecommendedLessons mirrors the scored association table.
	// Empty until the recommendation linking step runs.
	RecommendedLessons []LessonRef `json:"recommended_lessons"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAiResponse creates a new AiResponse for the given question.
// The ID is assigned by the store on insert. Recommendations start
// empty and are filled in by the lesson matcher.
func NewAiResponse(questionID int64, answer string) (*AiResponse, error) {
	r := &AiResponse{
		QuestionID:         questionID,
		Answer:             answer,
		RecommendedLessons: []LessonRef{},
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate checks if the AiResponse has valid data.
// Returns an error if any field fails validation.
func (r *AiResponse) Validate() error {
	if r.QuestionID <= 0 {
		return ErrInvalidResponseQuestion
	}

	if r.Answer == "" {
		return ErrEmptyResponseAnswer
	}

	return nil
}

// RecommendedLessonIDs returns just the lesson IDs from the
// recommendation mirror, preserving order.
func (r *AiResponse) RecommendedLessonIDs() []int64 {
	ids := make([]int64, 0, len(r.RecommendedLessons))
	for _, ref := range r.RecommendedLessons {
		ids = append(ids, ref.ID)
	}
	return ids
}

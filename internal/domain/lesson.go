package domain

import (
	"fmt"
	"time"
)

// Lesson-specific validation errors
var (
	ErrEmptyLessonTitle   = fmt.Errorf("%w: lesson title cannot be empty", ErrValidation)
	ErrEmptyLessonContent = fmt.Errorf("%w: lesson content cannot be empty", ErrValidation)
)

// Lesson represents a content unit students ask questions about.
// Lessons are the source of context for answer generation and the
// target of recommendations; the answer-generation flow only ever
// reads them.
type Lesson struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Lesson has valid data.
// Returns an error if any field fails validation.
func (l *Lesson) Validate() error {
	if l.Title == "" {
		return ErrEmptyLessonTitle
	}

	if l.Content == "" {
		return ErrEmptyLessonContent
	}

	return nil
}

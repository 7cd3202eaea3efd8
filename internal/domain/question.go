package domain

import (
	"fmt"
	"time"
)

// Question-specific validation errors. All wrap ErrValidation so callers
// can classify them without enumerating each case.
var (
	ErrEmptyQuestionContent  = fmt.Errorf("%w: question content cannot be empty", ErrValidation)
	ErrInvalidQuestionLesson = fmt.Errorf("%w: question lesson ID must be positive", ErrValidation)
	ErrInvalidQuestionUser   = fmt.Errorf("%w: question user ID must be positive", ErrValidation)
	ErrQuestionTooLong       = fmt.Errorf("%w: question content exceeds %d characters", ErrValidation, MaxQuestionLength)
)

// MaxQuestionLength is the maximum accepted length of a question's content.
const MaxQuestionLength = 1000

// Question represents a prompt a student submitted about a lesson.
// Questions are immutable once created; the only thing that ever
// happens to one is that an AiResponse gets attached to it.
type Question struct {
	ID        int64     `json:"id"`
	LessonID  int64     `json:"lesson_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Lesson is the owning lesson, populated when loaded with its
	// relationship. Nil when not loaded.
	Lesson *Lesson `json:"lesson,omitempty"`
}

// NewQuestion creates a new Question for the given lesson and user.
// The ID is assigned by the store on insert.
// Returns an error if validation fails.
func NewQuestion(lessonID, userID int64, content string) (*Question, error) {
	q := &Question{
		LessonID:  lessonID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks if the Question has valid data.
// Returns an error if any field fails validation.
func (q *Question) Validate() error {
	if q.LessonID <= 0 {
		return ErrInvalidQuestionLesson
	}

	if q.UserID <= 0 {
		return ErrInvalidQuestionUser
	}

	if q.Content == "" {
		return ErrEmptyQuestionContent
	}

	if len(q.Content) > MaxQuestionLength {
		return ErrQuestionTooLong
	}

	return nil
}

// LessonContent returns the owning lesson's content, or a placeholder
// when the lesson relationship is not loaded or the lesson is gone.
func (q *Question) LessonContent() string {
	if q.Lesson == nil {
		return "No lesson content available"
	}
	return q.Lesson.Content
}

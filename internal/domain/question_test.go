package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhall/studyhall-api/internal/domain"
)

func TestNewQuestion(t *testing.T) {
	t.Parallel()

	t.Run("creates valid question", func(t *testing.T) {
		t.Parallel()

		question, err := domain.NewQuestion(1, 2, "What is recursion?")
		require.NoError(t, err)

		assert.Equal(t, int64(1), question.LessonID)
		assert.Equal(t, int64(2), question.UserID)
		assert.Equal(t, "What is recursion?", question.Content)
		assert.False(t, question.CreatedAt.IsZero())
		assert.Nil(t, question.Lesson)
	})

	t.Run("rejects non-positive lesson ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewQuestion(0, 2, "What is recursion?")
		assert.ErrorIs(t, err, domain.ErrInvalidQuestionLesson)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects non-positive user ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewQuestion(1, -5, "What is recursion?")
		assert.ErrorIs(t, err, domain.ErrInvalidQuestionUser)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewQuestion(1, 2, "")
		assert.ErrorIs(t, err, domain.ErrEmptyQuestionContent)
	})

	t.Run("rejects content over the length limit", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewQuestion(1, 2, strings.Repeat("a", domain.MaxQuestionLength+1))
		assert.ErrorIs(t, err, domain.ErrQuestionTooLong)
	})

	t.Run("accepts content at the length limit", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewQuestion(1, 2, strings.Repeat("a", domain.MaxQuestionLength))
		assert.NoError(t, err)
	})
}

func TestQuestionLessonContent(t *testing.T) {
	t.Parallel()

	t.Run("returns lesson content when loaded", func(t *testing.T) {
		t.Parallel()

		question := &domain.Question{
			Lesson: &domain.Lesson{Content: "Lesson body"},
		}
		assert.Equal(t, "Lesson body", question.LessonContent())
	})

	t.Run("returns placeholder when lesson not loaded", func(t *testing.T) {
		t.Parallel()

		question := &domain.Question{}
		assert.Equal(t, "No lesson content available", question.LessonContent())
	})
}

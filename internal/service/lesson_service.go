package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/store"
)

// LessonService provides read access to lessons. Lesson authoring is
// out of scope; lessons arrive through other channels.
type LessonService interface {
	// GetLesson retrieves a lesson by ID.
	GetLesson(ctx context.Context, id int64) (*domain.Lesson, error)
}

// lessonServiceImpl implements the LessonService interface
type lessonServiceImpl struct {
	lessonStore store.LessonStore
	logger      *slog.Logger
}

// NewLessonService creates a new LessonService.
func NewLessonService(lessonStore store.LessonStore, logger *slog.Logger) (LessonService, error) {
	if lessonStore == nil {
		return nil, errors.New("lessonStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &lessonServiceImpl{
		lessonStore: lessonStore,
		logger:      logger.With(slog.String("component", "lesson_service")),
	}, nil
}

// GetLesson implements LessonService.GetLesson
func (s *lessonServiceImpl) GetLesson(ctx context.Context, id int64) (*domain.Lesson, error) {
	return s.lessonStore.GetByID(ctx, id)
}

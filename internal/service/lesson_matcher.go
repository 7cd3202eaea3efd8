package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/store"
)

// DefaultRelevanceScore is the relevance assigned to title-matched
// recommendations. The current matcher has no ranking signal, so all
// matches score equally.
const DefaultRelevanceScore = 0

// LessonMatcher links a stored response to the lessons whose titles
// match the model's recommended topics. Matching is best-effort: the
// caller treats Link failures as non-fatal.
type LessonMatcher interface {
	// Link resolves topic titles to lessons and replaces the response's
	// recommendation links. The question's own lesson is never linked.
	// Topics with no matching lesson are skipped; zero matches leaves the
	// response with empty recommendations, which is a valid final state.
	Link(
		ctx context.Context,
		tx *sql.Tx,
		response *domain.AiResponse,
		question *domain.Question,
		topics []string,
	) error
}

// TitleLessonMatcher implements LessonMatcher by exact title match
// against the lessons table.
type TitleLessonMatcher struct {
	lessonStore   store.LessonStore
	responseStore store.AiResponseStore
	logger        *slog.Logger
}

// NewTitleLessonMatcher creates a new TitleLessonMatcher.
// If logger is nil, a default logger will be used.
func NewTitleLessonMatcher(
	lessonStore store.LessonStore,
	responseStore store.AiResponseStore,
	logger *slog.Logger,
) *TitleLessonMatcher {
	if lessonStore == nil {
		panic("lessonStore cannot be nil")
	}
	if responseStore == nil {
		panic("responseStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TitleLessonMatcher{
		lessonStore:   lessonStore,
		responseStore: responseStore,
		logger:        logger.With(slog.String("component", "lesson_matcher")),
	}
}

// Ensure TitleLessonMatcher implements LessonMatcher
var _ LessonMatcher = (*TitleLessonMatcher)(nil)

// Link implements LessonMatcher.Link
func (m *TitleLessonMatcher) Link(
	ctx context.Context,
	tx *sql.Tx,
	response *domain.AiResponse,
	question *domain.Question,
	topics []string,
) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if len(topics) == 0 {
		log.Debug("no recommended topics to link",
			slog.Int64("response_id", response.ID))
		return nil
	}

	lessons, err := m.lessonStore.WithTx(tx).FindByTitles(ctx, topics, question.LessonID)
	if err != nil {
		return err
	}

	if len(lessons) == 0 {
		log.Debug("no lessons matched recommended topics",
			slog.Int64("response_id", response.ID),
			slog.Int("topic_count", len(topics)))
		return nil
	}

	err = m.responseStore.WithTx(tx).ReplaceRecommendations(
		ctx,
		response.ID,
		lessons,
		DefaultRelevanceScore,
	)
	if err != nil {
		return err
	}

	refs := make([]domain.LessonRef, 0, len(lessons))
	for _, lesson := range lessons {
		refs = append(refs, domain.LessonRef{ID: lesson.ID, Title: lesson.Title})
	}
	response.RecommendedLessons = refs

	log.Info("linked recommended lessons",
		slog.Int64("response_id", response.ID),
		slog.Int("topic_count", len(topics)),
		slog.Int("matched_count", len(lessons)))
	return nil
}

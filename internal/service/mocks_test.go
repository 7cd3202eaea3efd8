package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/domain"
	"github.com/studyhall/studyhall-api/internal/events"
	"github.com/studyhall/studyhall-api/internal/generation"
	"github.com/studyhall/studyhall-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockQuestionStore implements store.QuestionStore with function fields.
// WithTx returns the same mock; the tests drive transaction boundaries
// through sqlmock, not through the stores.
type mockQuestionStore struct {
	createFn       func(ctx context.Context, question *domain.Question) error
	getByIDFn      func(ctx context.Context, id int64) (*domain.Question, error)
	getForUpdateFn func(ctx context.Context, id int64) (*domain.Question, error)
	findByLessonFn func(ctx context.Context, lessonID int64) ([]*domain.Question, error)
	existsFn       func(ctx context.Context, id int64) (bool, error)
}

func (m *mockQuestionStore) Create(ctx context.Context, question *domain.Question) error {
	return m.createFn(ctx, question)
}

func (m *mockQuestionStore) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockQuestionStore) GetForUpdate(ctx context.Context, id int64) (*domain.Question, error) {
	return m.getForUpdateFn(ctx, id)
}

func (m *mockQuestionStore) FindByLesson(ctx context.Context, lessonID int64) ([]*domain.Question, error) {
	return m.findByLessonFn(ctx, lessonID)
}

func (m *mockQuestionStore) Exists(ctx context.Context, id int64) (bool, error) {
	return m.existsFn(ctx, id)
}

func (m *mockQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return m
}

// mockLessonStore implements store.LessonStore with function fields.
type mockLessonStore struct {
	getByIDFn      func(ctx context.Context, id int64) (*domain.Lesson, error)
	findByTitlesFn func(ctx context.Context, titles []string, excludeID int64) ([]*domain.Lesson, error)
}

func (m *mockLessonStore) GetByID(ctx context.Context, id int64) (*domain.Lesson, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockLessonStore) FindByTitles(ctx context.Context, titles []string, excludeID int64) ([]*domain.Lesson, error) {
	return m.findByTitlesFn(ctx, titles, excludeID)
}

func (m *mockLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return m
}

// mockAiResponseStore implements store.AiResponseStore with function fields.
type mockAiResponseStore struct {
	createFn                 func(ctx context.Context, response *domain.AiResponse) error
	getByQuestionIDFn        func(ctx context.Context, questionID int64) (*domain.AiResponse, error)
	upsertFallbackFn         func(ctx context.Context, questionID int64, answer string) error
	replaceRecommendationsFn func(ctx context.Context, responseID int64, lessons []*domain.Lesson, relevanceScore int) error
	deleteByQuestionIDFn     func(ctx context.Context, questionID int64) error
}

func (m *mockAiResponseStore) Create(ctx context.Context, response *domain.AiResponse) error {
	return m.createFn(ctx, response)
}

func (m *mockAiResponseStore) GetByQuestionID(ctx context.Context, questionID int64) (*domain.AiResponse, error) {
	return m.getByQuestionIDFn(ctx, questionID)
}

func (m *mockAiResponseStore) UpsertFallback(ctx context.Context, questionID int64, answer string) error {
	return m.upsertFallbackFn(ctx, questionID, answer)
}

func (m *mockAiResponseStore) ReplaceRecommendations(ctx context.Context, responseID int64, lessons []*domain.Lesson, relevanceScore int) error {
	return m.replaceRecommendationsFn(ctx, responseID, lessons, relevanceScore)
}

func (m *mockAiResponseStore) DeleteByQuestionID(ctx context.Context, questionID int64) error {
	return m.deleteByQuestionIDFn(ctx, questionID)
}

func (m *mockAiResponseStore) WithTx(tx *sql.Tx) store.AiResponseStore {
	return m
}

// mockGenerator implements generation.Generator.
type mockGenerator struct {
	generateFn func(ctx context.Context, questionText, lessonContent string) (*generation.Result, error)
}

func (m *mockGenerator) GenerateAnswer(ctx context.Context, questionText, lessonContent string) (*generation.Result, error) {
	return m.generateFn(ctx, questionText, lessonContent)
}

// mockMatcher implements LessonMatcher.
type mockMatcher struct {
	linkFn func(ctx context.Context, tx *sql.Tx, response *domain.AiResponse, question *domain.Question, topics []string) error
	calls  int
}

func (m *mockMatcher) Link(
	ctx context.Context,
	tx *sql.Tx,
	response *domain.AiResponse,
	question *domain.Question,
	topics []string,
) error {
	m.calls++
	if m.linkFn != nil {
		return m.linkFn(ctx, tx, response, question, topics)
	}
	return nil
}

// mockEventEmitter implements events.EventEmitter.
type mockEventEmitter struct {
	emitFn  func(ctx context.Context, event *events.TaskRequestEvent) error
	emitted []*events.TaskRequestEvent
}

func (m *mockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.emitted = append(m.emitted, event)
	if m.emitFn != nil {
		return m.emitFn(ctx, event)
	}
	return nil
}

func testQuestion(id, lessonID int64) *domain.Question {
	return &domain.Question{
		ID:       id,
		LessonID: lessonID,
		UserID:   7,
		Content:  "What is photosynthesis?",
		Lesson: &domain.Lesson{
			ID:      lessonID,
			Title:   "Photosynthesis",
			Content: "Plants convert light into chemical energy.",
		},
	}
}

package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/studyhall/studyhall-api/internal/config"
	"github.com/studyhall/studyhall-api/internal/events"
	"github.com/studyhall/studyhall-api/internal/platform/openrouter"
	"github.com/studyhall/studyhall-api/internal/platform/postgres"
	"github.com/studyhall/studyhall-api/internal/service"
	"github.com/studyhall/studyhall-api/internal/task"
)

// application holds the wired-together components of the server.
type application struct {
	config          *config.Config
	logger          *slog.Logger
	db              *sql.DB
	questionService service.QuestionService
	lessonService   service.LessonService
	taskRunner      *task.TaskRunner
}

// newApplication builds the full dependency graph: stores, generator,
// services, task machinery, and the event wiring that connects question
// creation to background answer generation.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	questionStore := postgres.NewPostgresQuestionStore(db, logger)
	lessonStore := postgres.NewPostgresLessonStore(db, logger)
	responseStore := postgres.NewPostgresAiResponseStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db)

	generator, err := openrouter.NewClient(&cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	matcher := service.NewTitleLessonMatcher(lessonStore, responseStore, logger)

	answerService, err := service.NewAnswerGenerationService(
		db,
		questionStore,
		responseStore,
		generator,
		matcher,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create answer service: %w", err)
	}

	retryConfig := task.RetryConfig{
		MaxAttempts: cfg.Task.MaxAttempts,
		BackoffBase: cfg.Task.BackoffBase,
		BackoffCap:  cfg.Task.BackoffCap,
	}
	taskFactory := task.NewAnswerGenerationTaskFactory(answerService, retryConfig, logger)

	runnerConfig := task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           cfg.Task.StuckTaskAge,
		StuckTaskCheckInterval: cfg.Task.StuckTaskCheckInterval,
	}
	taskRunner := task.NewTaskRunner(taskStore, runnerConfig, logger)
	taskRunner.RegisterRehydrator(task.TaskTypeAnswerGeneration, taskFactory)

	eventEmitter := events.NewInMemoryEventEmitter(logger)
	eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, taskRunner, logger))

	questionService, err := service.NewQuestionService(
		db,
		questionStore,
		lessonStore,
		responseStore,
		eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create question service: %w", err)
	}

	lessonService, err := service.NewLessonService(lessonStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson service: %w", err)
	}

	return &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		questionService: questionService,
		lessonService:   lessonService,
		taskRunner:      taskRunner,
	}, nil
}

// cleanup stops the background machinery in dependency order.
func (app *application) cleanup() {
	app.taskRunner.Stop()
}

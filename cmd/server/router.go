package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/studyhall/studyhall-api/internal/api"
	apiMiddleware "github.com/studyhall/studyhall-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	questionHandler := api.NewQuestionHandler(app.questionService)
	lessonHandler := api.NewLessonHandler(app.lessonService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/lessons/{lessonID}", lessonHandler.GetLesson)
		r.Post("/lessons/{lessonID}/questions", questionHandler.CreateQuestion)
		r.Get("/lessons/{lessonID}/questions", questionHandler.ListLessonQuestions)
		r.Get("/questions/{questionID}", questionHandler.GetQuestion)
		r.Post("/questions/{questionID}/response/retry", questionHandler.RetryResponse)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

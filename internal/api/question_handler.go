package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/studyhall/studyhall-api/internal/api/shared"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/service"
)

// QuestionHandler handles question-related HTTP requests
type QuestionHandler struct {
	questionService service.QuestionService
	validator       *validator.Validate
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		validator:       validator.New(),
	}
}

// CreateQuestion handles POST /api/lessons/{lessonID}/questions requests.
// The answer is generated asynchronously, so the response is 202 Accepted
// with the stored question and no ai_response yet.
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	lessonID, err := pathID(r, "lessonID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lesson ID")
		return
	}

	var req CreateQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	question, err := h.questionService.CreateQuestion(r.Context(), lessonID, req.UserID, req.Content)
	if err != nil {
		log.Error("failed to create question",
			"error", err,
			"lesson_id", lessonID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, questionToResponse(question, nil))
}

// GetQuestion handles GET /api/questions/{questionID} requests
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	questionID, err := pathID(r, "questionID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid question ID")
		return
	}

	question, response, err := h.questionService.GetQuestion(r.Context(), questionID)
	if err != nil {
		log.Error("failed to get question",
			"error", err,
			"question_id", questionID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, questionToResponse(question, response))
}

// ListLessonQuestions handles GET /api/lessons/{lessonID}/questions requests
func (h *QuestionHandler) ListLessonQuestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	lessonID, err := pathID(r, "lessonID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lesson ID")
		return
	}

	questions, err := h.questionService.ListByLesson(r.Context(), lessonID)
	if err != nil {
		log.Error("failed to list questions",
			"error", err,
			"lesson_id", lessonID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, questionToResponse(question, nil))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RetryResponse handles POST /api/questions/{questionID}/response/retry
// requests. The existing response, if any, is discarded and generation
// is requested again.
func (h *QuestionHandler) RetryResponse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	questionID, err := pathID(r, "questionID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid question ID")
		return
	}

	if err := h.questionService.RetryResponse(r.Context(), questionID); err != nil {
		log.Error("failed to retry response",
			"error", err,
			"question_id", questionID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
		"status": "generation requested",
	})
}

// pathID extracts and parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

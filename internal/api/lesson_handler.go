package api

import (
	"net/http"

	"github.com/studyhall/studyhall-api/internal/api/shared"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
	"github.com/studyhall/studyhall-api/internal/service"
)

// LessonHandler handles lesson-related HTTP requests
type LessonHandler struct {
	lessonService service.LessonService
}

// NewLessonHandler creates a new LessonHandler
func NewLessonHandler(lessonService service.LessonService) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
	}
}

// GetLesson handles GET /api/lessons/{lessonID} requests
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	lessonID, err := pathID(r, "lessonID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lesson ID")
		return
	}

	lesson, err := h.lessonService.GetLesson(r.Context(), lessonID)
	if err != nil {
		log.Error("failed to get lesson",
			"error", err,
			"lesson_id", lessonID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, lessonToResponse(lesson))
}

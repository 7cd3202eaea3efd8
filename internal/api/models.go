package api

import (
	"time"

	"github.com/studyhall/studyhall-api/internal/domain"
)

// CreateQuestionRequest represents the request body for asking a question
type CreateQuestionRequest struct {
	UserID  int64  `json:"user_id"  validate:"required,gt=0"`
	Content string `json:"content"  validate:"required,min=1,max=1000"`
}

// QuestionResponse represents the response data for a question
type QuestionResponse struct {
	ID        int64     `json:"id"`
	LessonID  int64     `json:"lesson_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AiResponse is the generated answer, null while generation is
	// still in flight.
	AiResponse *AiResponseDTO `json:"ai_response,omitempty"`
}

// LessonResponse represents the response data for a lesson
type LessonResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// lessonToResponse converts a domain.Lesson to a LessonResponse
func lessonToResponse(lesson *domain.Lesson) LessonResponse {
	return LessonResponse{
		ID:        lesson.ID,
		Title:     lesson.Title,
		Content:   lesson.Content,
		CreatedAt: lesson.CreatedAt,
		UpdatedAt: lesson.UpdatedAt,
	}
}

// AiResponseDTO represents the generated answer attached to a question
type AiResponseDTO struct {
	ID                 int64              `json:"id"`
	Answer             string             `json:"answer"`
	RecommendedLessons []domain.LessonRef `json:"recommended_lessons"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// questionToResponse converts a domain.Question to a QuestionResponse
func questionToResponse(question *domain.Question, response *domain.AiResponse) QuestionResponse {
	dto := QuestionResponse{
		ID:        question.ID,
		LessonID:  question.LessonID,
		UserID:    question.UserID,
		Content:   question.Content,
		CreatedAt: question.CreatedAt,
		UpdatedAt: question.UpdatedAt,
	}

	if response != nil {
		dto.AiResponse = &AiResponseDTO{
			ID:                 response.ID,
			Answer:             response.Answer,
			RecommendedLessons: response.RecommendedLessons,
			CreatedAt:          response.CreatedAt,
			UpdatedAt:          response.UpdatedAt,
		}
	}

	return dto
}

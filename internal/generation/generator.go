package generation

import "context"

// DegradedAnswer is the in-band answer returned when the generation
// provider fails in a recoverable way. Returning it instead of an error
// keeps the orchestrator's retry budget for infrastructure problems.
const DegradedAnswer = "I'm sorry, I encountered an error while processing your request. The issue has been logged."

// Result is a generated answer together with the topic titles the model
// recommended for further study. RecommendedTopics carries whatever the
// model returned (the prompt asks for at most 3); it may be empty.
type Result struct {
	Answer            string
	RecommendedTopics []string
}

// Generator defines the interface for generating answers to student
// questions. This interface serves as a boundary between the application
// core and the external text-generation service.
type Generator interface {
	// GenerateAnswer produces an answer to questionText using
	// lessonContent as context.
	//
	// Provider-side failures (network errors, non-success HTTP statuses,
	// malformed responses) are absorbed into a degraded Result rather
	// than returned as errors. An error return means a local
	// precondition failed (see ErrInvalidConfig) or the context was
	// cancelled.
	GenerateAnswer(ctx context.Context, questionText, lessonContent string) (*Result, error)
}

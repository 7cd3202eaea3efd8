// Package events provides the event types and interfaces that decouple
// the request-handling services from background task creation. Services
// emit a TaskRequestEvent when an answer needs generating; a handler in
// the task layer turns it into a queued task. Neither side imports the
// other.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskTypeAnswerGeneration identifies events requesting answer generation
// for a question.
const TaskTypeAnswerGeneration = "answer_generation"

// TaskRequestEvent asks the task layer to create a background task. The
// payload stays opaque JSON so an emitter never needs to know how the
// task is constructed.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent builds an event of the given type, serializing
// payload to JSON.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// NewAnswerGenerationEvent creates an event requesting answer generation
// for the given question.
func NewAnswerGenerationEvent(questionID int64) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TaskTypeAnswerGeneration, map[string]int64{"id": questionID})
}

// EventHandler consumes events delivered by an emitter.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to whatever handlers are registered,
// letting services request background work without importing the task
// package.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}

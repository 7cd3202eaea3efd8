package store

import (
	"errors"
	"fmt"
)

// Store sentinel errors. The entity-specific errors wrap the generic
// ones, so errors.Is(err, ErrNotFound) matches any of the not-found
// variants while callers that care about the entity match the specific
// sentinel.
var (
	// ErrNotFound is the generic missing-row error.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or
	// references a row that does not exist. The wrapped error names the
	// violated constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrQuestionNotFound reports a missing question row.
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)

	// ErrLessonNotFound reports a missing lesson row.
	ErrLessonNotFound = fmt.Errorf("%w: lesson", ErrNotFound)

	// ErrResponseNotFound reports that a question has no stored answer yet.
	ErrResponseNotFound = fmt.Errorf("%w: ai response", ErrNotFound)

	// ErrResponseExists reports that a question already has an answer.
	// The unique constraint on question_id raises it, the storage-level
	// backstop behind the service's idempotency check.
	ErrResponseExists = fmt.Errorf("%w: ai response", ErrDuplicate)
)

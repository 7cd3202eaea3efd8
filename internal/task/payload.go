package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned when an event or persisted task payload
// cannot be reduced to a question ID.
var ErrMalformedPayload = errors.New("malformed task payload")

// ParseQuestionIDPayload extracts a question ID from a task payload.
// Producers have historically serialized the ID in several shapes, all
// of which remain in flight or at rest in the tasks table, so all are
// accepted:
//
//	42            a raw JSON number
//	"42"          a numeric string
//	{"id": 42}    an object with an id field (number or numeric string)
//	[42]          a single-element array
//
// Anything else, including non-numeric strings and fractional numbers,
// is rejected with ErrMalformedPayload.
func ParseQuestionIDPayload(payload []byte) (int64, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}

	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch v := raw.(type) {
	case json.Number:
		return numberToID(v)
	case string:
		return stringToID(v)
	case map[string]interface{}:
		idValue, ok := v["id"]
		if !ok {
			return 0, fmt.Errorf("%w: object payload missing id field", ErrMalformedPayload)
		}
		switch id := idValue.(type) {
		case json.Number:
			return numberToID(id)
		case string:
			return stringToID(id)
		default:
			return 0, fmt.Errorf("%w: id field is not numeric", ErrMalformedPayload)
		}
	case []interface{}:
		if len(v) != 1 {
			return 0, fmt.Errorf(
				"%w: array payload must contain exactly one element, got %d",
				ErrMalformedPayload, len(v),
			)
		}
		switch id := v[0].(type) {
		case json.Number:
			return numberToID(id)
		case string:
			return stringToID(id)
		default:
			return 0, fmt.Errorf("%w: array element is not numeric", ErrMalformedPayload)
		}
	default:
		return 0, fmt.Errorf("%w: unsupported payload shape", ErrMalformedPayload)
	}
}

func numberToID(n json.Number) (int64, error) {
	id, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedPayload, n.String())
	}
	return id, nil
}

func stringToID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a numeric string", ErrMalformedPayload, s)
	}
	return id, nil
}

package shared

import (
	"encoding/json"
	"net/http"

	"github.com/studyhall/studyhall-api/internal/platform/logger"
)

// ErrorResponse is the body of every non-2xx API response. The trace ID
// lets a client report a failure that can be found in the logs.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"-"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON encodes data as the response body with the given status.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			"error", err,
			"path", r.URL.Path)
	}
}

// RespondWithError writes an ErrorResponse carrying the request's trace ID.
// The message should already be safe for external eyes; see
// api.GetSafeErrorMessage.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	log := logger.FromContext(r.Context())
	traceID := GetTraceID(r.Context())

	log.Debug("sending error response",
		"status_code", status,
		"message", message,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, ErrorResponse{
		Error:   message,
		Code:    status,
		TraceID: traceID,
	})
}

package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
)

type traceIDKey struct{}

// SetTraceID stores a freshly generated trace ID in the context. The
// same ID ends up in log lines and error responses for this request.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceIDKey{}, newTraceID())
}

// GetTraceID returns the trace ID carried by the context, or "" when
// the context was never tagged.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// newTraceID returns 16 random bytes hex-encoded. A rand failure is
// logged and yields an empty ID rather than aborting the request.
func newTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate trace ID", "error", err)
		return ""
	}
	return hex.EncodeToString(b)
}

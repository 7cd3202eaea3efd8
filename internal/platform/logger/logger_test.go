package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextPropagation(t *testing.T) {
	t.Parallel()

	t.Run("FromContext returns the stored logger", func(t *testing.T) {
		t.Parallel()

		log, buf := GetTestLogger(t)
		ctx := WithLogger(context.Background(), log.With("trace_id", "abc123"))

		FromContext(ctx).Info("question created", "question_id", 42)

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "question created", entries[0]["msg"])
		assert.Equal(t, "abc123", entries[0]["trace_id"])
		assert.Equal(t, float64(42), entries[0]["question_id"])
	})

	t.Run("FromContext falls back to the default logger", func(t *testing.T) {
		t.Parallel()

		log := FromContext(context.Background())
		assert.Equal(t, slog.Default(), log)
	})

	t.Run("FromContextOrDefault prefers the context logger", func(t *testing.T) {
		t.Parallel()

		ctxLogger, _ := GetTestLogger(t)
		fallback, _ := GetTestLogger(t)

		ctx := WithLogger(context.Background(), ctxLogger)
		assert.Same(t, ctxLogger, FromContextOrDefault(ctx, fallback))
	})

	t.Run("FromContextOrDefault uses the fallback when context is bare", func(t *testing.T) {
		t.Parallel()

		fallback, _ := GetTestLogger(t)
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("FromContextOrDefault survives a nil fallback", func(t *testing.T) {
		t.Parallel()

		log := FromContextOrDefault(context.Background(), nil)
		require.NotNil(t, log)
		assert.Equal(t, slog.Default(), log)
	})
}

func TestTestLogBuffer(t *testing.T) {
	t.Parallel()

	log, buf := GetTestLogger(t)

	log.Debug("first", "k", "v1")
	log.Warn("second", "k", "v2")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, "v2", entries[1]["k"])
}

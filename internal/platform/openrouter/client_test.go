package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhall/studyhall-api/internal/config"
	"github.com/studyhall/studyhall-api/internal/generation"
)

func testConfig(apiURL string) *config.GenerationConfig {
	return &config.GenerationConfig{
		APIKey:         "test-key",
		Model:          "test-model",
		APIURL:         apiURL,
		MaxTokens:      512,
		Temperature:    0.7,
		RequestTimeout: 5 * time.Second,
	}
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *config.GenerationConfig)
	}{
		{"missing API key", func(cfg *config.GenerationConfig) { cfg.APIKey = "" }},
		{"missing model", func(cfg *config.GenerationConfig) { cfg.Model = "" }},
		{"missing API URL", func(cfg *config.GenerationConfig) { cfg.APIURL = "" }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig("https://example.test/v1/chat/completions")
			tc.mutate(cfg)

			_, err := NewClient(cfg)
			assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(nil)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		client, err := NewClient(testConfig("https://example.test/v1/chat/completions"))
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestGenerateAnswer(t *testing.T) {
	t.Parallel()

	t.Run("parses answer and recommended topics", func(t *testing.T) {
		t.Parallel()

		content := "Photosynthesis converts light into chemical energy.\n\n" +
			"```json\n[\"Cell Biology\", \"Plant Anatomy\"]\n```"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			assert.Equal(t, 512, req.MaxTokens)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Contains(t, req.Messages[1].Content, "lesson text here")
			assert.Contains(t, req.Messages[1].Content, "What is photosynthesis?")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(completionBody(t, content))
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		result, err := client.GenerateAnswer(context.Background(), "What is photosynthesis?", "lesson text here")
		require.NoError(t, err)

		assert.Equal(t, "Photosynthesis converts light into chemical energy.", result.Answer)
		assert.Equal(t, []string{"Cell Biology", "Plant Anatomy"}, result.RecommendedTopics)
	})

	t.Run("answer without topics", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(completionBody(t, "Just an answer."))
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		result, err := client.GenerateAnswer(context.Background(), "question", "lesson")
		require.NoError(t, err)

		assert.Equal(t, "Just an answer.", result.Answer)
		assert.Empty(t, result.RecommendedTopics)
	})

	t.Run("server error degrades instead of failing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		result, err := client.GenerateAnswer(context.Background(), "question", "lesson")
		require.NoError(t, err)

		assert.Equal(t, generation.DegradedAnswer, result.Answer)
		assert.Empty(t, result.RecommendedTopics)
	})

	t.Run("unreachable endpoint degrades instead of failing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		result, err := client.GenerateAnswer(context.Background(), "question", "lesson")
		require.NoError(t, err)

		assert.Equal(t, generation.DegradedAnswer, result.Answer)
	})

	t.Run("empty choices degrades instead of failing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		result, err := client.GenerateAnswer(context.Background(), "question", "lesson")
		require.NoError(t, err)

		assert.Equal(t, generation.DegradedAnswer, result.Answer)
	})

	t.Run("malformed body degrades instead of failing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json at all`))
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		result, err := client.GenerateAnswer(context.Background(), "question", "lesson")
		require.NoError(t, err)

		assert.Equal(t, generation.DegradedAnswer, result.Answer)
	})

	t.Run("cancelled context propagates as error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		result, err := client.GenerateAnswer(ctx, "question", "lesson")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, result)
	})
}

// Package openrouter implements the generation.Generator interface against
// an OpenRouter-style chat completions endpoint.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studyhall/studyhall-api/internal/config"
	"github.com/studyhall/studyhall-api/internal/generation"
	"github.com/studyhall/studyhall-api/internal/metrics"
	"github.com/studyhall/studyhall-api/internal/platform/logger"
)

// systemPrompt instructs the model to answer the question and to close with
// a fenced JSON array of recommended lesson topics, which the parser extracts.
const systemPrompt = "You are a helpful teaching assistant. Answer the student's question " +
	"using the provided lesson content as context. After your answer, recommend 1-3 related " +
	"lesson topics the student should review next, formatted as a JSON array of topic title " +
	"strings inside a ```json fenced code block."

// Client calls the chat completions API and adapts its output to the
// generation contract: provider and transport failures are absorbed into a
// degraded in-band result, never returned as errors.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	apiURL     string
	maxTokens  int
	temp       float64
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a Client from configuration. It returns
// generation.ErrInvalidConfig when the API key, model, or endpoint URL is
// missing, since a client without credentials can never produce an answer.
func NewClient(cfg *config.GenerationConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil generation config", generation.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: missing model name", generation.ErrInvalidConfig)
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("%w: missing API URL", generation.ErrInvalidConfig)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		apiURL:     cfg.APIURL,
		maxTokens:  cfg.MaxTokens,
		temp:       cfg.Temperature,
	}, nil
}

// GenerateAnswer sends the question and lesson content to the model and
// parses the raw completion into an answer plus recommended topics.
//
// Any failure of the outbound call itself (network error, non-2xx status,
// malformed or empty response body) is logged and converted into a degraded
// Result containing generation.DegradedAnswer, so callers can always persist
// something. Only context cancellation is propagated as an error.
func (c *Client) GenerateAnswer(ctx context.Context, questionText, lessonContent string) (*generation.Result, error) {
	log := logger.FromContextOrDefault(ctx, nil)

	start := time.Now()
	raw, err := c.complete(ctx, questionText, lessonContent)
	if err != nil {
		if ctx.Err() != nil {
			metrics.ProviderCallDuration.WithLabelValues("degraded").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("generation canceled: %w", ctx.Err())
		}
		log.Warn("provider call failed, returning degraded answer",
			"error", err,
			"model", c.model)
		metrics.ProviderCallDuration.WithLabelValues("degraded").Observe(time.Since(start).Seconds())
		return &generation.Result{Answer: generation.DegradedAnswer}, nil
	}
	metrics.ProviderCallDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	answer, topics := generation.ParseModelOutput(raw)
	return &generation.Result{Answer: answer, RecommendedTopics: topics}, nil
}

func (c *Client) complete(ctx context.Context, questionText, lessonContent string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: lessonContent + "\n\n" + questionText},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temp,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: provider returned status %d", generation.ErrGenerationFailed, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", generation.ErrInvalidResponse, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", generation.ErrInvalidResponse)
	}

	return parsed.Choices[0].Message.Content, nil
}

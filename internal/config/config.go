package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// GenerationConfig contains the settings for the external
// text-generation service (an OpenRouter-style chat-completions
// endpoint).
type GenerationConfig struct {
	// APIKey is the bearer token for the generation endpoint. Leaving it
	// unset is a configuration error surfaced when the client is built.
	APIKey string `mapstructure:"api_key"`

	// Model is the model identifier sent with each request.
	Model string `mapstructure:"model" validate:"required"`

	// APIURL is the chat-completions endpoint.
	APIURL string `mapstructure:"api_url" validate:"required,url"`

	// MaxTokens bounds the length of the generated answer.
	MaxTokens int `mapstructure:"max_tokens" validate:"gt=0"`

	// Temperature is the sampling temperature for generation.
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// RequestTimeout bounds a single generation call. Generation can be
	// slow, so this is on the order of minutes.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`
}

// TaskConfig contains the settings for background answer generation.
type TaskConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`

	// QueueSize determines the buffer size for the in-memory task queue.
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`

	// MaxAttempts bounds the per-task answer generation retry loop.
	// This loop is the single owner of retry behavior: the runner does
	// not redeliver failed tasks on top of it.
	MaxAttempts int `mapstructure:"max_attempts" validate:"gt=0"`

	// BackoffBase is the delay before the second attempt; subsequent
	// delays double, capped at BackoffCap.
	BackoffBase time.Duration `mapstructure:"backoff_base" validate:"required"`

	// BackoffCap is the maximum delay between attempts.
	BackoffCap time.Duration `mapstructure:"backoff_cap" validate:"required"`

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset.
	StuckTaskAge time.Duration `mapstructure:"stuck_task_age"`

	// StuckTaskCheckInterval defines how often to check for stuck tasks.
	StuckTaskCheckInterval time.Duration `mapstructure:"stuck_task_check_interval"`
}

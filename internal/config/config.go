package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the assistant service.
// Environment variables are automatically parsed from the ARIA_ prefix.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`

	// Ollama Configuration
	OllamaURL            string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OllamaModel          string `envconfig:"OLLAMA_MODEL" default:"mistral:7b-instruct-q4_K_M"`
	OllamaCodeModel      string `envconfig:"OLLAMA_CODE_MODEL" default:"codellama:7b-instruct-q4_K_M"`
	OllamaTimeoutSeconds int    `envconfig:"OLLAMA_TIMEOUT_SECONDS" default:"120"`

	// Feedback store
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/aria.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Memory
	MaxHistory       int `envconfig:"MAX_HISTORY" default:"20"`
	MaxContextTokens int `envconfig:"MAX_CONTEXT_TOKENS" default:"4096"`

	// Retrieval
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`
	SearchTopK   int `envconfig:"SEARCH_TOP_K" default:"3"`

	// Web search
	WebSearchMaxResults int `envconfig:"WEB_SEARCH_MAX_RESULTS" default:"5"`
}

// ResolveDefaults validates driver selection and retrieval parameters.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative")
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("MAX_HISTORY must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with ARIA_
// Example: ARIA_HTTP_PORT, ARIA_OLLAMA_MODEL
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ARIA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("ollama_url", cfg.OllamaURL).
		Str("ollama_model", cfg.OllamaModel).
		Int("max_history", cfg.MaxHistory).
		Int("max_context_tokens", cfg.MaxContextTokens).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:          "testing",
		HTTPPort:             8000,
		OllamaURL:            "http://localhost:11434",
		OllamaModel:          "mistral:7b-instruct-q4_K_M",
		OllamaCodeModel:      "codellama:7b-instruct-q4_K_M",
		OllamaTimeoutSeconds: 10,
		DBDriver:             "sqlite",
		SQLitePath:           "",
		MaxHistory:           20,
		MaxContextTokens:     4096,
		ChunkSize:            500,
		ChunkOverlap:         50,
		SearchTopK:           3,
		WebSearchMaxResults:  5,
	}
}

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

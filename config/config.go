// Package config loads all service settings from the environment into one
// immutable struct. The struct is built once in main and handed to each
// component constructor; nothing reads the environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds every tunable of the service.
type Config struct {
	Port    string
	Env     string
	DataDir string

	// LLM provider selection and credentials
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Embedding backend (Ollama-compatible HTTP API)
	EmbeddingURL   string
	EmbeddingModel string

	// Extraction limits
	MaxContentChars int
	MinContentChars int

	// Timeouts for outbound calls
	RequestTimeout time.Duration
	LLMTimeout     time.Duration

	// Generated blog shape
	MaxSections int

	// Optional image search
	UnsplashAccessKey string
}

// Load builds a Config from environment variables, applying defaults for
// anything unset. It fails only on values that cannot be parsed.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("APP_ENV", "development"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		Provider:          getEnv("LLM_PROVIDER", ProviderGemini),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingURL:      getEnv("EMBEDDING_URL", "http://localhost:11434/api/embeddings"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
	}

	var err error
	if cfg.MaxContentChars, err = getEnvInt("MAX_CONTENT_CHARS", 10000); err != nil {
		return nil, err
	}
	if cfg.MinContentChars, err = getEnvInt("MIN_CONTENT_CHARS", 200); err != nil {
		return nil, err
	}
	if cfg.MaxSections, err = getEnvInt("MAX_SECTIONS", 8); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = getEnvDuration("LLM_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}

	if cfg.Provider != ProviderGemini && cfg.Provider != ProviderOpenAI {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want %q or %q)", cfg.Provider, ProviderGemini, ProviderOpenAI)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return d, nil
}

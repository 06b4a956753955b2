package embed

import (
	"context"
	"fmt"
	"os"
)

// #region embedder-interface

// Embedder abstracts the embedding provider so callers can be tested without
// a network dependency. The returned vector dimension is provider-defined and
// fixed for the lifetime of a store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// #endregion embedder-interface

// #region config

// Config selects and parameterizes an embedding provider.
type Config struct {
	Provider string `yaml:"provider"` // "openai" | "ollama"
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

// DefaultConfig returns provider settings from env vars:
// EMBED_PROVIDER, EMBED_BASE_URL, EMBED_MODEL, OPENAI_API_KEY.
func DefaultConfig() Config {
	cfg := Config{
		Provider: "openai",
		Model:    "text-embedding-3-small",
		APIKey:   os.Getenv("OPENAI_API_KEY"),
	}
	if v := os.Getenv("EMBED_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("EMBED_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg
}

// #endregion config

// #region constructor

// New builds an Embedder for the configured provider.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		model := cfg.Model
		if model == "" {
			model = "text-embedding-3-small"
		}
		return newOpenAI(baseURL, model, cfg.APIKey), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return newOllama(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown embed provider: %s", cfg.Provider)
	}
}

// #endregion constructor

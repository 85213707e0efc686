package embedding

import (
	"fmt"
	"time"

	"finrag/config"
	"finrag/internal/port"
)

// New builds the embedder selected by cfg.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	opts := Options{
		Model:             cfg.Model,
		BaseURL:           cfg.BaseURL,
		Dimension:         cfg.Dimension,
		BatchSize:         cfg.BatchSize,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.MaxRetries,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}

	switch cfg.Provider {
	case "hash", "":
		return NewHashEmbedder(cfg.Dimension), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKeyEnv, opts)
	case "jina":
		return NewJinaEmbedder(cfg.APIKeyEnv, opts)
	case "ollama":
		return NewOllamaEmbedder(opts)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

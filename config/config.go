package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataDir is the per-project directory holding the store and config.
const DataDir = ".finrag"

// Config holds all configuration for finrag.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "bolt", "sqlite", "memory"
	Path   string `yaml:"path"`   // empty = .finrag/finrag.db (bolt) or .finrag/finrag.sqlite
}

// IngestConfig holds statement discovery settings.
type IngestConfig struct {
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	MaxFileSize int64    `yaml:"max_file_size"`
}

// ChunkConfig holds narration chunking settings.
type ChunkConfig struct {
	MaxChars     int `yaml:"max_chars"`
	OverlapChars int `yaml:"overlap_chars"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"`    // "hash", "openai", "ollama", "jina"
	Model             string  `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv         string  `yaml:"api_key_env"` // Environment variable for API key
	BaseURL           string  `yaml:"base_url"`
	Dimension         int     `yaml:"dimension"` // 0 = provider default
	BatchSize         int     `yaml:"batch_size"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK            int `yaml:"top_k"`
	CacheSize       int `yaml:"cache_size"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "bolt",
		},
		Ingest: IngestConfig{
			Includes:    []string{"**/*.pdf", "**/*.csv", "**/*.json"},
			Excludes:    []string{"**/.git/**", "**/" + DataDir + "/**", "**/node_modules/**"},
			MaxFileSize: 50 << 20,
		},
		Chunk: ChunkConfig{
			MaxChars:     4000,
			OverlapChars: 200,
		},
		Embedding: EmbeddingConfig{
			Provider:          "hash",
			Model:             "text-embedding-3-small",
			APIKeyEnv:         "OPENAI_API_KEY",
			Dimension:         0,
			BatchSize:         100,
			TimeoutSeconds:    60,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},
		Retrieve: RetrieveConfig{
			TopK:            1,
			CacheSize:       256,
			CacheTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for finrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "finrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "bolt", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Embedding.Provider {
	case "hash", "openai", "ollama", "jina":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Chunk.MaxChars <= 0 {
		return fmt.Errorf("chunk.max_chars must be positive, got %d", c.Chunk.MaxChars)
	}
	if c.Chunk.OverlapChars < 0 || c.Chunk.OverlapChars >= c.Chunk.MaxChars {
		return fmt.Errorf("chunk.overlap_chars must be in [0, max_chars), got %d", c.Chunk.OverlapChars)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK)
	}
	return nil
}

// IndexFingerprint hashes the settings that shape index vectors. A persisted
// index built under a different fingerprint is stale.
func (c *Config) IndexFingerprint() string {
	relevant := struct {
		MaxChars     int    `json:"max_chars"`
		OverlapChars int    `json:"overlap_chars"`
		EmbProvider  string `json:"emb_provider"`
		EmbModel     string `json:"emb_model"`
		EmbDimension int    `json:"emb_dimension"`
	}{
		MaxChars:     c.Chunk.MaxChars,
		OverlapChars: c.Chunk.OverlapChars,
		EmbProvider:  c.Embedding.Provider,
		EmbModel:     c.Embedding.Model,
		EmbDimension: c.Embedding.Dimension,
	}
	if c.Embedding.Provider == "hash" {
		relevant.EmbModel = ""
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the path to the document store for the configured driver.
func (c *Config) StorePath(dir string) string {
	if c.Store.Path != "" {
		if filepath.IsAbs(c.Store.Path) {
			return c.Store.Path
		}
		return filepath.Join(dir, c.Store.Path)
	}
	if c.Store.Driver == "sqlite" {
		return filepath.Join(dir, DataDir, "finrag.sqlite")
	}
	return filepath.Join(dir, DataDir, "finrag.db")
}

// EnsureDataDir ensures the .finrag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDir), 0755)
}

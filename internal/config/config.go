// Package config defines the explicit configuration value passed into each
// component at construction. There is no package-level shared state: every
// Store, Retriever, and Scanner receives its own Config, which keeps each
// instance independently testable.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Embedding provider names.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderOffline = "offline"
)

// Tokenizer names for the chunker.
const (
	TokenizerTiktoken = "tiktoken"
	TokenizerWords    = "words"
)

// Config carries every tunable of the indexing core. The chunk geometry and
// embedding dimensionality are configuration constants: they are never
// reconstructed from content or discovered at runtime.
type Config struct {
	ChunkSize    int `yaml:"chunk_size"`    // max token units per chunk
	ChunkOverlap int `yaml:"chunk_overlap"` // token units shared between consecutive chunks
	EmbeddingDim int `yaml:"embedding_dim"`
	Workers      int `yaml:"workers"` // bound on parallel embedding calls

	Provider  string `yaml:"provider"` // openai | ollama | offline
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	OllamaURL string `yaml:"ollama_url"`
	CacheSize int    `yaml:"cache_size"` // embedding LRU entries

	Tokenizer string `yaml:"tokenizer"` // tiktoken | words

	TopK       int    `yaml:"top_k"`
	IndexDir   string `yaml:"index_dir"`
	IgnoreFile string `yaml:"ignore_file"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		ChunkSize:    1024,
		ChunkOverlap: 20,
		EmbeddingDim: 1536,
		Workers:      runtime.NumCPU(),
		Provider:     ProviderOffline,
		Model:        "",
		OllamaURL:    "http://localhost:11434",
		CacheSize:    10000,
		Tokenizer:    TokenizerWords,
		TopK:         5,
		IndexDir:     ".idea-producer/index",
		IgnoreFile:   ".idea-agent-ignore",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error: the defaults are returned. Secrets may be supplied through the
// environment (OPENAI_API_KEY) instead of the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}

	return cfg, cfg.Validate()
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderOffline:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.Tokenizer {
	case TokenizerTiktoken, TokenizerWords:
	default:
		return fmt.Errorf("unknown tokenizer %q", c.Tokenizer)
	}
	return nil
}

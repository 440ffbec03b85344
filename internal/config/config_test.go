package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.Equal(t, 20, cfg.ChunkOverlap)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
	assert.Equal(t, ProviderOffline, cfg.Provider)
	assert.Equal(t, ".idea-producer/index", cfg.IndexDir)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().ChunkSize, cfg.ChunkSize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"chunk_size: 256\nchunk_overlap: 16\nprovider: offline\ntop_k: 12\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.ChunkSize)
	assert.Equal(t, 16, cfg.ChunkOverlap)
	assert.Equal(t, 12, cfg.TopK)
	assert.Equal(t, Default().EmbeddingDim, cfg.EmbeddingDim, "unset keys keep defaults")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [oops\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, true},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, true},
		{"zero dim", func(c *Config) { c.EmbeddingDim = 0 }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"unknown provider", func(c *Config) { c.Provider = "azure" }, true},
		{"unknown tokenizer", func(c *Config) { c.Tokenizer = "bytes" }, true},
		{"ollama provider", func(c *Config) { c.Provider = ProviderOllama }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

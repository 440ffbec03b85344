package embedder

import (
	"fmt"

	"github.com/nodeeeeee/idea-producer/internal/config"
)

// New constructs the embedder named by the configuration. The variant is
// chosen here, once, from the explicit config value; components downstream
// only ever see the Embedder interface.
func New(cfg config.Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.EmbeddingDim, cache)
	case config.ProviderOllama:
		return NewOllamaProvider(cfg.OllamaURL, cfg.Model, cfg.EmbeddingDim, cache)
	case config.ProviderOffline:
		return NewOfflineProvider(cfg.EmbeddingDim)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProviderEnabled, cfg.Provider)
	}
}

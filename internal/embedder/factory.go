package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder construction parameters
type Config struct {
	Provider  string
	APIKey    string
	Host      string // Ollama server address
	Model     string
	CacheSize int
}

// New creates an embedder with explicit configuration
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.Host, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
// 1. MNEMOS_EMBEDDING_PROVIDER (openai, ollama, local)
// 2. OPENAI_API_KEY present
// 3. OLLAMA_HOST present
// 4. Local hash embeddings
func NewFromEnv() (Embedder, error) {
	cache := NewCache(DefaultCacheSize)

	if provider := os.Getenv("MNEMOS_EMBEDDING_PROVIDER"); provider != "" {
		switch strings.ToLower(provider) {
		case ProviderOpenAI:
			return NewOpenAIProvider("", cache)
		case ProviderOllama:
			return NewOllamaProvider("", "", cache)
		case ProviderLocal:
			return NewLocalProvider(cache)
		default:
			return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, provider)
		}
	}

	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return NewOpenAIProvider("", cache)
	}
	if os.Getenv(EnvOllamaHost) != "" {
		return NewOllamaProvider("", "", cache)
	}

	return NewLocalProvider(cache)
}

// DetectProvider returns the provider NewFromEnv would choose
func DetectProvider() string {
	if provider := os.Getenv("MNEMOS_EMBEDDING_PROVIDER"); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvOllamaHost) != "" {
		return ProviderOllama
	}
	return ProviderLocal
}

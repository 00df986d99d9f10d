package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	_, err := NewOpenAIProvider("", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestNewOpenAIProvider_KeyFromEnv(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	provider, err := NewOpenAIProvider("", nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, provider.Provider())
	assert.Equal(t, DefaultOpenAIModel, provider.Model())
	assert.Equal(t, OpenAIDimension, provider.Dimension())
}

func TestOllamaProvider_GenerateBatch(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultOllamaModel, req.Model)

		embeddings := make([][]float32, len(req.Input))
		for i := range embeddings {
			embeddings[i] = []float32{float32(i), 1, 2}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":      req.Model,
			"embeddings": embeddings,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "", NewCache(10))
	require.NoError(t, err)
	defer provider.Close()

	resp, err := provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{
		Texts: []string{"first memory", "second memory"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, ProviderOllama, resp.Provider)
	assert.Equal(t, []float32{0, 1, 2}, resp.Embeddings[0].Vector)
	assert.Equal(t, []float32{1, 1, 2}, resp.Embeddings[1].Vector)

	// Second identical request is served from cache
	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "first memory"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOllamaProvider_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": [][]float32{{1, 2}},
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "", nil)
	require.NoError(t, err)

	_, err = provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{
		Texts: []string{"one", "two"},
	})
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestOllamaProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "missing-model", nil)
	require.NoError(t, err)

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "anything"})
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestOllamaProvider_BatchTooLarge(t *testing.T) {
	provider, err := NewOllamaProvider("http://localhost:1", "", nil)
	require.NoError(t, err)

	texts := make([]string, MaxBatchSize+1)
	for i := range texts {
		texts[i] = "text"
	}
	_, err = provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: texts})
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"local", Config{Provider: "local"}, ProviderLocal, false},
		{"ollama", Config{Provider: "ollama"}, ProviderOllama, false},
		{"openai with key", Config{Provider: "openai", APIKey: "sk-test"}, ProviderOpenAI, false},
		{"case insensitive", Config{Provider: "LOCAL"}, ProviderLocal, false},
		{"unknown", Config{Provider: "quantum"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb, err := New(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, emb.Provider())
		})
	}
}

func TestDetectProvider(t *testing.T) {
	t.Setenv("MNEMOS_EMBEDDING_PROVIDER", "")
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvOllamaHost, "")
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvOllamaHost, "http://localhost:11434")
	assert.Equal(t, ProviderOllama, DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv("MNEMOS_EMBEDDING_PROVIDER", "Local")
	assert.Equal(t, ProviderLocal, DetectProvider())
}

func TestNewFromEnv_DefaultsToLocal(t *testing.T) {
	t.Setenv("MNEMOS_EMBEDDING_PROVIDER", "")
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvOllamaHost, "")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
}

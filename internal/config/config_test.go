package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MNEMOS_DB_PATH", "MNEMOS_LOG_LEVEL",
		"MNEMOS_EMBEDDING_PROVIDER", "OPENAI_API_KEY", "OLLAMA_HOST",
		"MNEMOS_EMBEDDING_MODEL", "MNEMOS_EMBEDDING_CACHE_SIZE",
		"MNEMOS_FTS_WEIGHT", "MNEMOS_VECTOR_WEIGHT", "MNEMOS_RRF_K",
		"MNEMOS_DEDUP_ENABLED", "MNEMOS_DEDUP_THRESHOLD",
		"MNEMOS_MAX_CONTEXT_CHARS", "MNEMOS_QUERY_CACHE_ENABLED",
		"MNEMOS_QUERY_CACHE_TTL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(cfg.DBPath, "mnemos.db"))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Equal(t, 0.4, cfg.Search.FTSWeight)
	assert.Equal(t, 0.6, cfg.Search.VectorWeight)
	assert.Equal(t, 60.0, cfg.Search.RRFK)
	assert.True(t, cfg.Search.DedupEnabled)
	assert.Equal(t, 0.85, cfg.Search.DedupThreshold)
	assert.Equal(t, 8000, cfg.Search.MaxContextChars)
	assert.False(t, cfg.Search.CacheEnabled)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mnemos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/mnemos/store.db
search:
  fts_weight: 0.5
  vector_weight: 0.5
  cache_enabled: true
  cache_ttl: 10m
embedding:
  provider: ollama
  model: mxbai-embed-large
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/mnemos/store.db", cfg.DBPath)
	assert.Equal(t, 0.5, cfg.Search.FTSWeight)
	assert.Equal(t, 0.5, cfg.Search.VectorWeight)
	assert.True(t, cfg.Search.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)

	// Untouched keys keep defaults
	assert.Equal(t, 60.0, cfg.Search.RRFK)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mnemos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: from-yaml.db\n"), 0o644))

	t.Setenv("MNEMOS_DB_PATH", "from-env.db")
	t.Setenv("MNEMOS_RRF_K", "30")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, 30.0, cfg.Search.RRFK)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"negative fts weight", func(c *Config) { c.Search.FTSWeight = -0.1 }, true},
		{"both weights zero", func(c *Config) {
			c.Search.FTSWeight = 0
			c.Search.VectorWeight = 0
		}, true},
		{"zero rrf k", func(c *Config) { c.Search.RRFK = 0 }, true},
		{"threshold above one", func(c *Config) { c.Search.DedupThreshold = 1.5 }, true},
		{"zero context budget", func(c *Config) { c.Search.MaxContextChars = 0 }, true},
		{"single weight zero is fine", func(c *Config) { c.Search.FTSWeight = 0 }, false},
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

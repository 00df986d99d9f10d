package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Precedence, lowest to highest: built-in defaults, YAML file,
// environment variables. Env tags carry no envDefault so an unset
// variable never clobbers a file value.

// Config is the full application configuration
type Config struct {
	// DBPath is the SQLite database file. ":memory:" is accepted.
	DBPath string `env:"MNEMOS_DB_PATH" yaml:"db_path"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error)
	LogLevel string `env:"MNEMOS_LOG_LEVEL" yaml:"log_level"`

	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider  string `env:"MNEMOS_EMBEDDING_PROVIDER" yaml:"provider"`
	APIKey    string `env:"OPENAI_API_KEY" yaml:"api_key"`
	Host      string `env:"OLLAMA_HOST" yaml:"host"`
	Model     string `env:"MNEMOS_EMBEDDING_MODEL" yaml:"model"`
	CacheSize int    `env:"MNEMOS_EMBEDDING_CACHE_SIZE" yaml:"cache_size"`
}

// SearchConfig tunes the retrieval pipeline
type SearchConfig struct {
	FTSWeight       float64       `env:"MNEMOS_FTS_WEIGHT" yaml:"fts_weight"`
	VectorWeight    float64       `env:"MNEMOS_VECTOR_WEIGHT" yaml:"vector_weight"`
	RRFK            float64       `env:"MNEMOS_RRF_K" yaml:"rrf_k"`
	DedupEnabled    bool          `env:"MNEMOS_DEDUP_ENABLED" yaml:"dedup_enabled"`
	DedupThreshold  float64       `env:"MNEMOS_DEDUP_THRESHOLD" yaml:"dedup_threshold"`
	MaxContextChars int           `env:"MNEMOS_MAX_CONTEXT_CHARS" yaml:"max_context_chars"`
	CacheEnabled    bool          `env:"MNEMOS_QUERY_CACHE_ENABLED" yaml:"cache_enabled"`
	CacheTTL        time.Duration `env:"MNEMOS_QUERY_CACHE_TTL" yaml:"cache_ttl"`
}

// defaultDBPath places the database under the user's home directory,
// falling back to the working directory when the home is unknown.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mnemos.db"
	}
	return filepath.Join(home, ".mnemos", "mnemos.db")
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		DBPath:   defaultDBPath(),
		LogLevel: "info",
		Embedding: EmbeddingConfig{
			Provider:  "local",
			CacheSize: 10000,
		},
		Search: SearchConfig{
			FTSWeight:       0.4,
			VectorWeight:    0.6,
			RRFK:            60.0,
			DedupEnabled:    true,
			DedupThreshold:  0.85,
			MaxContextChars: 8000,
			CacheEnabled:    false,
			CacheTTL:        time.Hour,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// and the environment. An empty path skips the file layer; a named file
// that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with
func (c Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	if c.Search.FTSWeight < 0 {
		errs = append(errs, errors.New("fts_weight must not be negative"))
	}
	if c.Search.VectorWeight < 0 {
		errs = append(errs, errors.New("vector_weight must not be negative"))
	}
	if c.Search.FTSWeight == 0 && c.Search.VectorWeight == 0 {
		errs = append(errs, errors.New("at least one search weight must be positive"))
	}
	if c.Search.RRFK <= 0 {
		errs = append(errs, errors.New("rrf_k must be positive"))
	}
	if c.Search.DedupThreshold < 0 || c.Search.DedupThreshold > 1 {
		errs = append(errs, errors.New("dedup_threshold must be within [0, 1]"))
	}
	if c.Search.MaxContextChars <= 0 {
		errs = append(errs, errors.New("max_context_chars must be positive"))
	}

	return errors.Join(errs...)
}

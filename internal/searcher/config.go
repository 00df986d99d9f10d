package searcher

import "time"

// Default retrieval constants. All of them are configuration inputs,
// not hard-coded policy; see Config.
const (
	DefaultFTSWeight       = 0.4
	DefaultVectorWeight    = 0.6
	DefaultRRFK            = 60.0
	DefaultMaxContextChars = 8000
	DefaultDedupThreshold  = 0.85
	DefaultLimit           = 10
	MaxLimit               = 100
	DefaultCacheTTL        = 1 * time.Hour
)

// Config holds the retrieval tuning parameters. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// RRF fusion
	FTSWeight    float64
	VectorWeight float64
	RRFK         float64

	// Near-duplicate suppression
	DedupEnabled   bool
	DedupThreshold float64

	// Context packing budget in characters
	MaxContextChars int

	// Optional query-response cache
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		FTSWeight:       DefaultFTSWeight,
		VectorWeight:    DefaultVectorWeight,
		RRFK:            DefaultRRFK,
		DedupEnabled:    true,
		DedupThreshold:  DefaultDedupThreshold,
		MaxContextChars: DefaultMaxContextChars,
		CacheTTL:        DefaultCacheTTL,
	}
}

// normalize fills zero-valued tuning fields with defaults so a partially
// populated Config stays well-defined.
func (c Config) normalize() Config {
	if c.FTSWeight <= 0 {
		c.FTSWeight = DefaultFTSWeight
	}
	if c.VectorWeight <= 0 {
		c.VectorWeight = DefaultVectorWeight
	}
	if c.RRFK <= 0 {
		c.RRFK = DefaultRRFK
	}
	if c.DedupThreshold <= 0 {
		c.DedupThreshold = DefaultDedupThreshold
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = DefaultMaxContextChars
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	return c
}

package searcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mnemos-dev/mnemos/internal/embedder"
	"github.com/mnemos-dev/mnemos/pkg/types"
)

// FullTextProvider serves ranked full-text matches, best first
type FullTextProvider interface {
	FullTextSearch(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
}

// VectorProvider serves ranked embedding-similarity matches, best first
type VectorProvider interface {
	VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]types.SearchHit, error)
}

// RecencyProvider serves stored memories, most recent first
type RecencyProvider interface {
	GetRecentMemories(ctx context.Context, limit int) ([]types.MemoryItem, error)
}

// Provider is the full data-provider capability the engine consumes.
// *storage.SQLiteStorage satisfies it.
type Provider interface {
	FullTextProvider
	VectorProvider
	RecencyProvider
}

// Searcher composes rank fusion, near-duplicate suppression and
// context packing over the two search signals. It holds only immutable
// configuration and provider references; all per-call state is local,
// so concurrent calls need no locking.
type Searcher struct {
	provider Provider
	embedder embedder.Embedder
	config   Config
	cache    *queryCache
	log      zerolog.Logger
}

// NewSearcher creates a new Searcher instance
func NewSearcher(provider Provider, emb embedder.Embedder, cfg Config, log zerolog.Logger) *Searcher {
	cfg = cfg.normalize()
	s := &Searcher{
		provider: provider,
		embedder: emb,
		config:   cfg,
		log:      log,
	}
	if cfg.CacheEnabled {
		s.cache = newQueryCache(defaultCacheEntries)
	}
	return s
}

// Search runs the hybrid pipeline: both signals are fetched with a
// 2×limit overfetch, rank-fused, deduplicated, packed into the context
// budget, and capped at limit. If either provider or the query
// embedding fails, the whole call fails; there is no fallback to
// single-signal results.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	limit = clampLimit(limit)
	start := time.Now()

	if s.cache != nil {
		if hits, ok := s.cache.get(query, "hybrid", limit); ok {
			s.log.Debug().Str("query", query).Msg("hybrid search cache hit")
			return hits, nil
		}
	}

	var ftsHits, vectorHits []types.SearchHit

	// Fusion depends only on each list's internal order, so the two
	// fetches may run concurrently and join before fusing.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := s.provider.FullTextSearch(gctx, query, limit*2)
		if err != nil {
			return fmt.Errorf("%w: full-text: %w", types.ErrProviderFailure, err)
		}
		ftsHits = hits
		return nil
	})
	g.Go(func() error {
		vector, err := s.embedQuery(gctx, query)
		if err != nil {
			return err
		}
		hits, err := s.provider.VectorSearch(gctx, vector, limit*2)
		if err != nil {
			return fmt.Errorf("%w: vector: %w", types.ErrProviderFailure, err)
		}
		vectorHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := FuseRRF(ftsHits, vectorHits, s.config)
	results := s.finish(fused, limit)

	s.log.Debug().
		Str("query", query).
		Int("fts_candidates", len(ftsHits)).
		Int("vector_candidates", len(vectorHits)).
		Int("results", len(results)).
		Dur("duration", time.Since(start)).
		Msg("hybrid search")

	if s.cache != nil {
		s.cache.set(query, "hybrid", limit, results, s.config.CacheTTL)
	}
	return results, nil
}

// SearchFTS runs the full-text-only pipeline: no fusion, but dedup and
// packing still apply. Provenance stays FullText.
func (s *Searcher) SearchFTS(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	limit = clampLimit(limit)

	if s.cache != nil {
		if hits, ok := s.cache.get(query, "fts", limit); ok {
			return hits, nil
		}
	}

	hits, err := s.provider.FullTextSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: full-text: %w", types.ErrProviderFailure, err)
	}

	results := s.finish(hits, limit)
	if s.cache != nil {
		s.cache.set(query, "fts", limit, results, s.config.CacheTTL)
	}
	return results, nil
}

// SearchVector runs the vector-only pipeline: embed the query, fetch
// similarity matches, dedup and pack.
func (s *Searcher) SearchVector(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	limit = clampLimit(limit)

	if s.cache != nil {
		if hits, ok := s.cache.get(query, "vector", limit); ok {
			return hits, nil
		}
	}

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.provider.VectorSearch(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", types.ErrProviderFailure, err)
	}

	results := s.finish(hits, limit)
	if s.cache != nil {
		s.cache.set(query, "vector", limit, results, s.config.CacheTTL)
	}
	return results, nil
}

// GetRecent returns the most recently stored memories wrapped as hits
// with a synthetic linearly-decaying score (1.0 for the newest, down by
// 1/limit per step). No fusion, dedup or packing applies.
func (s *Searcher) GetRecent(ctx context.Context, limit int) ([]types.SearchHit, error) {
	limit = clampLimit(limit)

	items, err := s.provider.GetRecentMemories(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recency: %w", types.ErrProviderFailure, err)
	}

	hits := make([]types.SearchHit, 0, len(items))
	for i, item := range items {
		hits = append(hits, types.SearchHit{
			Item:       item,
			Score:      1.0 - float64(i)/float64(limit),
			Provenance: types.ProvenanceFullText,
			FTSRank:    i + 1,
		})
	}
	return hits, nil
}

// InvalidateCache drops all cached query responses. Called after ingest
// so new memories become visible immediately.
func (s *Searcher) InvalidateCache() {
	if s.cache != nil {
		s.cache.purge()
	}
}

// finish applies dedup, packing and the final limit cap, in that order
func (s *Searcher) finish(hits []types.SearchHit, limit int) []types.SearchHit {
	deduped := Dedup(hits, s.config.DedupThreshold, s.config.DedupEnabled)
	packed := PackContext(deduped, s.config.MaxContextChars)
	if len(packed) > limit {
		packed = packed[:limit]
	}
	return packed
}

// embedQuery turns query text into a vector, mapping failures into the
// engine's error taxonomy
func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrEmbeddingFailure, err)
	}
	return emb.Vector, nil
}

// clampLimit applies the default and the cap
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

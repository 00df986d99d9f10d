// Package searcher implements the retrieval core: hybrid search over a
// full-text signal and a vector-similarity signal, combined with
// Reciprocal Rank Fusion, followed by near-duplicate suppression and
// greedy packing into a character budget.
//
// # Pipeline
//
// A hybrid query runs both signals with a 2x overfetch, fuses the two
// ranked lists, then post-processes:
//
//	fts, vec := provider fetches (concurrent)
//	fused    := FuseRRF(fts, vec, cfg)
//	deduped  := Dedup(fused, cfg.DedupThreshold, cfg.DedupEnabled)
//	packed   := PackContext(deduped, cfg.MaxContextChars)
//
// Single-signal modes (SearchFTS, SearchVector) skip fusion but keep
// dedup and packing. GetRecent bypasses the pipeline entirely and
// assigns a synthetic linearly-decaying score.
//
// # Failure model
//
// There is no graceful degradation: if either underlying signal or the
// query embedding fails during a hybrid search, the search fails with
// an error wrapping types.ErrProviderFailure or
// types.ErrEmbeddingFailure. Callers that want fallback behavior must
// implement it themselves with the single-signal modes.
//
// # Scores
//
// Fused scores are sums of weight/(k+rank) contributions and are not
// normalized; they order results within one response and are not
// comparable across queries or modes.
package searcher

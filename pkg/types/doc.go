// Package types provides shared type definitions for the mnemos memory
// server.
//
// MemoryItem represents a stored unit of content:
//
//	item := types.NewMemoryItem("Greg prefers dark roast coffee")
//	item.Title = "coffee preference"
//
// SearchHit wraps a MemoryItem with relevance scoring and provenance:
//
//	hit := types.SearchHit{
//	    Item:       item.Clone(),
//	    Score:      0.0163,
//	    Provenance: types.ProvenanceHybrid,
//	    FTSRank:    2,
//	    VectorRank: 1,
//	}
//
// Hybrid scores come from Reciprocal Rank Fusion and are small by
// construction (bounded by fts_weight/(k+1) + vector_weight/(k+1)).
// Single-signal scores are raw BM25 or cosine values and are not
// comparable across modes.
package types

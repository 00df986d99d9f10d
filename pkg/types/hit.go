package types

// Provenance tags which search signal produced a hit.
type Provenance string

const (
	ProvenanceFullText Provenance = "fulltext"
	ProvenanceVector   Provenance = "vector"
	ProvenanceHybrid   Provenance = "hybrid"
)

// SearchHit is a scored wrapper around a MemoryItem produced by one
// search mode. Item is a copy of the stored item; packing may truncate
// Item.Content on the hit without affecting storage.
type SearchHit struct {
	Item MemoryItem

	// Score is the fused or single-signal relevance. Non-negative, but
	// not normalized to [0,1] for single-signal modes; callers must not
	// assume comparability across modes.
	Score float64

	Provenance Provenance

	// Per-signal raw scores, carried through fusion for observability.
	// Zero when the signal did not contribute.
	FTSScore    float64
	VectorScore float64

	// 1-indexed position in each source list at fusion time.
	// Zero when the hit was absent from that list.
	FTSRank    int
	VectorRank int

	// Snippet is an optional highlighted excerpt from the full-text
	// index, passed through unchanged.
	Snippet string
}

// Validate checks invariants the retrieval core guarantees on output.
func (h *SearchHit) Validate() error {
	if h.Item.ID == "" {
		return ErrInvalidMemoryID
	}
	if h.Score < 0 {
		return ErrNegativeScore
	}
	switch h.Provenance {
	case ProvenanceFullText, ProvenanceVector, ProvenanceHybrid:
	default:
		return ErrInvalidProvenance
	}
	if h.FTSRank < 0 || h.VectorRank < 0 {
		return ErrInvalidRank
	}
	return nil
}

package searcher

import (
	"sort"

	"github.com/mnemos-dev/mnemos/pkg/types"
)

// fusedEntry accumulates per-identity RRF contributions during a merge
type fusedEntry struct {
	hit   types.SearchHit
	score float64
}

// FuseRRF merges two rank-ordered hit lists into one fused, score-ordered
// list using weighted Reciprocal Rank Fusion. Each input must already be
// sorted best-first by its own signal.
//
// The item at 1-indexed position r of a list contributes weight/(k+r) to
// its accumulated score. An item present in both lists gets both
// contributions and Hybrid provenance; an item present in one list keeps
// that list's provenance and per-signal fields, with only its score
// replaced by the fused value.
//
// Ties are broken by first-contribution order via a stable sort, so
// identical inputs always produce identical output.
func FuseRRF(ftsResults, vectorResults []types.SearchHit, cfg Config) []types.SearchHit {
	cfg = cfg.normalize()

	entries := make(map[string]*fusedEntry, len(ftsResults)+len(vectorResults))
	order := make([]string, 0, len(ftsResults)+len(vectorResults))

	for i, r := range ftsResults {
		rank := i + 1
		hit := r
		hit.FTSRank = rank
		entries[r.Item.ID] = &fusedEntry{
			hit:   hit,
			score: cfg.FTSWeight / (cfg.RRFK + float64(rank)),
		}
		order = append(order, r.Item.ID)
	}

	for i, r := range vectorResults {
		rank := i + 1
		contribution := cfg.VectorWeight / (cfg.RRFK + float64(rank))

		if entry, exists := entries[r.Item.ID]; exists {
			entry.score += contribution
			entry.hit.Provenance = types.ProvenanceHybrid
			entry.hit.VectorScore = r.VectorScore
			entry.hit.VectorRank = rank
			if entry.hit.Snippet == "" {
				entry.hit.Snippet = r.Snippet
			}
			continue
		}

		hit := r
		hit.VectorRank = rank
		entries[r.Item.ID] = &fusedEntry{hit: hit, score: contribution}
		order = append(order, r.Item.ID)
	}

	merged := make([]types.SearchHit, 0, len(order))
	for _, id := range order {
		entry := entries[id]
		entry.hit.Score = entry.score
		merged = append(merged, entry.hit)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	return merged
}

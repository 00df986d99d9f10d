package searcher

import "github.com/mnemos-dev/mnemos/pkg/types"

// Dedup removes near-duplicate hits by character-set Jaccard similarity.
// Input must be sorted by descending relevance; the earlier hit survives.
// A candidate is dropped when its similarity to any kept hit reaches the
// threshold. Greedy single pass, O(n²) comparisons; candidate sets are
// capped upstream so n stays small.
//
// Character-set Jaccard is O(content length) per comparison and
// language-agnostic; it catches the dominant duplicate pattern in this
// domain (the same page captured twice, near-identical boilerplate)
// without tokenization.
func Dedup(hits []types.SearchHit, threshold float64, enabled bool) []types.SearchHit {
	if !enabled || len(hits) == 0 {
		return hits
	}

	kept := make([]types.SearchHit, 0, len(hits))
	keptSets := make([]map[rune]struct{}, 0, len(hits))

	for _, hit := range hits {
		set := charSet(hit.Item.Content)

		duplicate := false
		for _, existing := range keptSets {
			if jaccard(set, existing) >= threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		kept = append(kept, hit)
		keptSets = append(keptSets, set)
	}

	return kept
}

// charSet returns the set of runes in s
func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b|. An empty union is never a
// duplicate and yields 0.
func jaccard(a, b map[rune]struct{}) float64 {
	intersection := 0
	for r := range a {
		if _, ok := b[r]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

package searcher

import "github.com/mnemos-dev/mnemos/pkg/types"

const (
	// truncationMarker terminates a truncated final hit
	truncationMarker = "..."

	// minTruncatedChars is the minimum-usefulness floor: a truncated
	// fragment shorter than this is dropped instead of appended
	minTruncatedChars = 100
)

// PackContext greedily selects hits in order until the character budget
// is spent. At most the final returned hit is truncated (to the
// remaining budget minus the marker), and truncation always terminates
// packing: later hits are never appended, even if they would fit.
// The output is a prefix of the input order with at most the last
// element modified. Lengths are counted in runes.
//
// Truncation mutates only the returned copy, never the caller's hit.
func PackContext(hits []types.SearchHit, maxChars int) []types.SearchHit {
	packed := make([]types.SearchHit, 0, len(hits))
	totalChars := 0

	for _, hit := range hits {
		content := []rune(hit.Item.Content)

		if totalChars+len(content) <= maxChars {
			packed = append(packed, hit)
			totalChars += len(content)
			continue
		}

		if totalChars < maxChars {
			remaining := maxChars - totalChars - len(truncationMarker)
			if remaining > minTruncatedChars {
				truncated := hit
				truncated.Item = hit.Item.Clone()
				truncated.Item.Content = string(content[:remaining]) + truncationMarker
				packed = append(packed, truncated)
			}
		}
		break
	}

	return packed
}

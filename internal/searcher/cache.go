package searcher

import (
	"crypto/sha256"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mnemos-dev/mnemos/pkg/types"
)

const defaultCacheEntries = 256

type cachedResponse struct {
	hits      []types.SearchHit
	expiresAt time.Time
}

// queryCache memoizes finished search responses keyed by query, mode
// and limit. Entries expire lazily on read; eviction beyond that is
// LRU. Hits are deep-copied on both sides so callers can mutate their
// slices freely.
type queryCache struct {
	entries *lru.Cache[[32]byte, cachedResponse]
}

func newQueryCache(size int) *queryCache {
	if size <= 0 {
		size = defaultCacheEntries
	}
	entries, err := lru.New[[32]byte, cachedResponse](size)
	if err != nil {
		// lru.New only fails on size <= 0, which is handled above
		panic(err)
	}
	return &queryCache{entries: entries}
}

func cacheKey(query, mode string, limit int) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", query, mode, limit)))
}

func (c *queryCache) get(query, mode string, limit int) ([]types.SearchHit, bool) {
	key := cacheKey(query, mode, limit)
	resp, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(resp.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return copyHits(resp.hits), true
}

func (c *queryCache) set(query, mode string, limit int, hits []types.SearchHit, ttl time.Duration) {
	c.entries.Add(cacheKey(query, mode, limit), cachedResponse{
		hits:      copyHits(hits),
		expiresAt: time.Now().Add(ttl),
	})
}

func (c *queryCache) purge() {
	c.entries.Purge()
}

func copyHits(hits []types.SearchHit) []types.SearchHit {
	out := make([]types.SearchHit, len(hits))
	for i, h := range hits {
		h.Item = h.Item.Clone()
		out[i] = h
	}
	return out
}

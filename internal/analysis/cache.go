package analysis

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// ModelKey identifies one trained regressor. The stat is part of the key so
// a points model is never served for a rebounds query.
type ModelKey struct {
	PlayerID int64
	Stat     string
}

// String returns the string form used by the backing cache.
func (k ModelKey) String() string {
	return fmt.Sprintf("%d:%s", k.PlayerID, k.Stat)
}

// ModelCache holds trained per-player regressors for the life of a predictor
// instance, so identical models are not refit on every prediction. Concurrent
// builders of the same key converge last-writer-wins; models are
// deterministic given the same training data, so either write is correct.
type ModelCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu     sync.Mutex
	hits   uint64
	misses uint64
}

// NewModelCache creates a cache with the given entry TTL and soft size limit.
// A non-positive TTL means entries never expire.
func NewModelCache(ttl time.Duration, maxSize int) *ModelCache {
	if ttl <= 0 {
		return &ModelCache{cache: cache.New(cache.NoExpiration, 0), maxSize: maxSize}
	}
	return &ModelCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns the cached forest for a key, or nil.
func (mc *ModelCache) Get(key ModelKey) *Forest {
	if item, found := mc.cache.Get(key.String()); found {
		if forest, ok := item.(*Forest); ok {
			mc.count(true)
			return forest
		}
	}
	mc.count(false)
	return nil
}

// Set stores a trained forest, evicting expired entries when the soft size
// limit has been reached.
func (mc *ModelCache) Set(key ModelKey, forest *Forest) {
	if mc.maxSize > 0 && mc.cache.ItemCount() >= mc.maxSize {
		mc.cache.DeleteExpired()
	}
	mc.cache.Set(key.String(), forest, mc.ttl)
}

// Reset flushes every model and zeroes the counters. Callers that reuse a
// predictor across sessions reset between them.
func (mc *ModelCache) Reset() {
	mc.cache.Flush()
	mc.mu.Lock()
	mc.hits = 0
	mc.misses = 0
	mc.mu.Unlock()
}

// Stats returns hit/miss counts and the hit ratio.
func (mc *ModelCache) Stats() (hits, misses uint64, ratio float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hits = mc.hits
	misses = mc.misses
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of cached models.
func (mc *ModelCache) ItemCount() int {
	return mc.cache.ItemCount()
}

func (mc *ModelCache) count(hit bool) {
	mc.mu.Lock()
	if hit {
		mc.hits++
	} else {
		mc.misses++
	}
	mc.mu.Unlock()
}

package assistant

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/XiaoConstantine/coda-go/pkg/core"
)

// CacheStats reports hit and miss counts for the result cache.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// HitRate returns the fraction of lookups served from cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// resultCache memoizes successful results keyed by the request content.
// Eviction is LRU. Cached Data maps are shared with callers; treat them
// as read-only.
type resultCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*list.Element
	order   *list.List
	stats   CacheStats
}

type cacheEntry struct {
	key    string
	result core.Result
}

func newResultCache(max int) *resultCache {
	return &resultCache{
		max:     max,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// cacheKey builds a deterministic key from everything that influences a
// unit's output. The request ID is deliberately excluded.
func cacheKey(req core.Request) string {
	meta, err := json.Marshal(req.Metadata)
	if err != nil {
		meta = []byte("{}")
	}
	payload := strings.TrimSpace(req.Payload)
	keyData := fmt.Sprintf("%s|%s|%s|%s", req.Capability, req.Language, payload, meta)

	h := sha256.Sum256([]byte(keyData))
	return "res_" + hex.EncodeToString(h[:])[:16]
}

func (c *resultCache) get(req core.Request) (core.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[cacheKey(req)]
	if !ok {
		c.stats.Misses++
		return core.Result{}, false
	}
	c.order.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(cacheEntry).result, true
}

func (c *resultCache) put(req core.Request, res core.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(req)
	if elem, ok := c.entries[key]; ok {
		elem.Value = cacheEntry{key: key, result: res}
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(cacheEntry{key: key, result: res})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(cacheEntry).key)
	}
}

func (c *resultCache) snapshot() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

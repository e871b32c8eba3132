// Package normalizer implements the L5 entity-normalizer cache and
// service of spec §4.5/§4.6: an LRU+TTL cache over NormalizedEntity
// values, and a cache-then-batch-LLM normalization algorithm.
package normalizer

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"corruption-watch/internal/observability/metrics"
	"corruption-watch/internal/pipeline/model"
)

// DefaultMaxSize and DefaultTTL are the cache's default capacity and
// entry lifetime, per spec §4.5.
const (
	DefaultMaxSize = 100_000
	DefaultTTL     = 14 * 24 * time.Hour
)

// Stats reports the cache's cumulative counters and current
// occupancy, per spec §4.5's `stats()` contract.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	TotalSets   int64
	Size        int
	MaxSize     int
	HitRate     float64
	TTLSeconds  int64
}

type cacheEntry struct {
	key       string
	entity    model.NormalizedEntity
	timestamp time.Time
}

// Cache is an LRU cache of NormalizedEntity values keyed by
// model.NormalizeKey, with TTL-based expiry. All operations are
// serialized by a single mutex (spec §4.5's concurrency requirement);
// batch operations are sequential single-entry operations so TTL/LRU
// semantics and stats accounting stay exact.
type Cache struct {
	mu          sync.Mutex
	maxSize     int
	ttl         time.Duration
	entries     map[string]*list.Element
	order       *list.List // front = most recently used
	hits        int64
	misses      int64
	evictions   int64
	expirations int64
	totalSets   int64
}

// NewCache builds a cache with the given capacity and TTL. A
// non-positive maxSize or ttl falls back to the package defaults.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

var (
	singleton     *Cache
	singletonOnce sync.Once
)

// GetEntityCache returns the process-wide singleton cache, building
// it on first call with the given parameters; parameters passed on
// any later call are ignored (spec §4.5's singleton factory).
func GetEntityCache(maxSize int, ttl time.Duration) *Cache {
	singletonOnce.Do(func() {
		singleton = NewCache(maxSize, ttl)
		slog.Info("created singleton entity cache instance", slog.Int("max_size", maxSize), slog.Duration("ttl", ttl))
	})
	return singleton
}

// Get retrieves the normalized entity for name, applying key
// normalization and TTL expiry, and marks it most-recently-used on a
// hit.
func (c *Cache) Get(name string) (model.NormalizedEntity, bool) {
	key := model.NormalizeKey(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.RecordEntityCacheLookup("miss")
		return model.NormalizedEntity{}, false
	}

	entry := elem.Value.(*cacheEntry)
	if time.Since(entry.timestamp) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		c.expirations++
		c.misses++
		metrics.RecordEntityCacheLookup("expired")
		metrics.UpdateEntityCacheSize(len(c.entries))
		return model.NormalizedEntity{}, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	metrics.RecordEntityCacheLookup("hit")
	return entry.entity, true
}

// Set stores normalized under name's normalized key, evicting the
// least-recently-used entry first if the cache is at capacity. An
// existing entry for the same key is replaced (timestamp and position
// reset).
func (c *Cache) Set(name string, normalized model.NormalizedEntity) {
	key := model.NormalizeKey(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
			c.evictions++
		}
	}

	elem := c.order.PushFront(&cacheEntry{key: key, entity: normalized, timestamp: time.Now()})
	c.entries[key] = elem
	c.totalSets++
	metrics.UpdateEntityCacheSize(len(c.entries))
}

// GetMany retrieves a batch of entities, returning only the hits,
// keyed by the original (un-normalized) name passed in.
func (c *Cache) GetMany(names []string) map[string]model.NormalizedEntity {
	results := make(map[string]model.NormalizedEntity, len(names))
	for _, name := range names {
		if entity, ok := c.Get(name); ok {
			results[name] = entity
		}
	}
	return results
}

// SetMany stores a batch of entities, keyed by original name.
func (c *Cache) SetMany(normalizations map[string]model.NormalizedEntity) {
	for name, entity := range normalizations {
		c.Set(name, entity)
	}
}

// Stats reports the cache's cumulative counters and current size.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		TotalSets:   c.totalSets,
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		HitRate:     hitRate,
		TTLSeconds:  int64(c.ttl.Seconds()),
	}
}

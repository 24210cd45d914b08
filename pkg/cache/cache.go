// # Tile Cache
//
// Package cache keeps decoded pyramid tiles in memory so overlapping and
// repeated region reads do not decode the same tile twice. The cache is
// bounded by tile count with least-recently-used eviction and is safe
// for concurrent readers.
//
// ## Sharing Semantics
//
// Get returns the cached image itself, not a copy. Cached images are
// shared between all callers and must be treated as immutable; a caller
// that wants to mutate a tile must Clone it first. Two goroutines that
// miss on the same key may both decode the tile; both Put calls are
// accepted and the last writer's image stays cached, which is harmless
// because tile content for a key is deterministic.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/ironsheep/wholeslide/pkg/pixel"
)

// DefaultCapacity is the tile count bound of the process-wide cache.
const DefaultCapacity = 1000

// TileKey identifies one cached tile. Slide is a stable identity for the
// reader instance, normally the slide file path.
type TileKey struct {
	Slide string
	Level int
	Col   uint32
	Row   uint32
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Capacity    int
	Size        int
	Hits        uint64
	Misses      uint64
	MemoryBytes int64
}

// HitRatio returns hits/(hits+misses), or 0 before any access.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// TileCache is a bounded, synchronized LRU of decoded tiles.
type TileCache struct {
	mu       sync.Mutex
	lru      *lru.Cache
	capacity int
	hits     uint64
	misses   uint64
	memory   int64
}

// New creates a cache bounded to capacity tiles. A capacity below 1 is
// raised to 1.
func New(capacity int) *TileCache {
	if capacity < 1 {
		capacity = 1
	}
	c := &TileCache{capacity: capacity}
	c.lru = &lru.Cache{
		MaxEntries: capacity,
		OnEvicted: func(_ lru.Key, value interface{}) {
			c.memory -= int64(value.(*pixel.Image).SizeBytes())
		},
	}
	return c
}

var (
	defaultOnce  sync.Once
	defaultCache *TileCache
)

// Default returns the process-wide shared cache, created on first use
// with DefaultCapacity. Readers opened without an explicit cache share
// this instance, so Clear and Resize on it affect them all.
func Default() *TileCache {
	defaultOnce.Do(func() {
		defaultCache = New(DefaultCapacity)
	})
	return defaultCache
}

// Get returns the cached tile and refreshes its recency, or nil on a
// miss. A miss is not an error; it tells the caller to decode.
func (c *TileCache) Get(key TileKey) *pixel.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value, ok := c.lru.Get(key); ok {
		c.hits++
		return value.(*pixel.Image)
	}
	c.misses++
	return nil
}

// Put inserts or replaces the tile for a key, evicting least-recently-
// used entries if the capacity bound is exceeded.
func (c *TileCache) Put(key TileKey, img *pixel.Image) {
	if img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.lru.Get(key); ok {
		c.memory -= int64(prev.(*pixel.Image).SizeBytes())
	}
	c.memory += int64(img.SizeBytes())
	c.lru.Add(key, img)
}

// Resize changes the capacity bound. Shrinking evicts least-recently-
// used entries down to the new bound immediately; growing keeps every
// current entry.
func (c *TileCache) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	c.lru.MaxEntries = capacity
	for c.lru.Len() > capacity {
		c.lru.RemoveOldest()
	}
}

// Clear drops every entry and resets the hit and miss counters.
func (c *TileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
	c.hits = 0
	c.misses = 0
	c.memory = 0
}

// Len returns the current entry count.
func (c *TileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a snapshot of the counters and occupancy.
func (c *TileCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Capacity:    c.capacity,
		Size:        c.lru.Len(),
		Hits:        c.hits,
		Misses:      c.misses,
		MemoryBytes: c.memory,
	}
}

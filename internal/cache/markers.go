package cache

import (
	"sync"

	"github.com/bbernstein/layerjson/internal/models"
)

// MarkerCache indexes markers by GeoKey. Entries are never evicted; the whole
// cache is dropped with Clear when the layer is detached.
type MarkerCache struct {
	markers map[string]*models.Marker
	hits    uint64
	misses  uint64
	mu      sync.RWMutex
}

func NewMarkerCache() *MarkerCache {
	return &MarkerCache{
		markers: make(map[string]*models.Marker),
	}
}

func (c *MarkerCache) Get(key string) (*models.Marker, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.markers[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return m, ok
}

func (c *MarkerCache) Put(key string, marker *models.Marker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markers[key] = marker
}

func (c *MarkerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.markers)
}

// Clear removes every entry and resets the statistics.
func (c *MarkerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markers = make(map[string]*models.Marker)
	c.hits = 0
	c.misses = 0
}

// GetCacheStats returns statistics about cache hits and misses
func (c *MarkerCache) GetCacheStats() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]uint64{
		"marker_hits":    c.hits,
		"marker_misses":  c.misses,
		"marker_entries": uint64(len(c.markers)),
	}
}

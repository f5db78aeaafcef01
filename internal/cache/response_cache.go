package cache

import (
	"sync"
	"time"

	"github.com/bbernstein/layerjson/internal/models"
	"github.com/hashicorp/golang-lru/v2"
)

// ResponseCacheEntry wraps a fetched record set with its expiry
type ResponseCacheEntry struct {
	Records   models.Records
	ExpiresAt time.Time
}

// ResponseCache keeps recently fetched record sets keyed by request URL.
type ResponseCache struct {
	lru   *lru.Cache[string, *ResponseCacheEntry]
	ttl   time.Duration
	clock clock
	mu    sync.Mutex
}

func NewResponseCache(size int, ttl time.Duration) (*ResponseCache, error) {
	lruCache, err := lru.New[string, *ResponseCacheEntry](size)
	if err != nil {
		return nil, err
	}

	return &ResponseCache{
		lru:   lruCache,
		ttl:   ttl,
		clock: systemClock{},
	}, nil
}

func (c *ResponseCache) Add(url string, records models.Records) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(url, &ResponseCacheEntry{
		Records:   records,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

func (c *ResponseCache) Get(url string) (models.Records, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(url)
	if !ok {
		return nil, false
	}

	if c.clock.Now().After(entry.ExpiresAt) {
		c.lru.Remove(url)
		return nil, false
	}

	return entry.Records, true
}

func (c *ResponseCache) Len() int {
	return c.lru.Len()
}

func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

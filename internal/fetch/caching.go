package fetch

import (
	"context"

	"github.com/bbernstein/layerjson/internal/cache"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// CachingFetcher serves repeated URLs from a response cache and collapses
// concurrent fetches of the same URL into one.
type CachingFetcher struct {
	next  Fetcher
	cache *cache.ResponseCache
	group singleflight.Group
}

func NewCachingFetcher(next Fetcher, responseCache *cache.ResponseCache) *CachingFetcher {
	return &CachingFetcher{
		next:  next,
		cache: responseCache,
	}
}

func (f *CachingFetcher) Fetch(ctx context.Context, url string) (models.Records, error) {
	if records, ok := f.cache.Get(url); ok {
		log.Debug().Str("url", url).Msg("Cache HIT for response")
		return records, nil
	}

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(url, func() (interface{}, error) {
		records, err := f.next.Fetch(shared, url)
		if err != nil {
			return nil, err
		}
		f.cache.Add(url, records)
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.Records), nil
	}
}

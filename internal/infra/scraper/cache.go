package scraper

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/usecase/aggregate"
)

// CachingFetcher serves recently fetched feed bodies from memory.
// A hit makes no network attempt. Failures are never cached.
type CachingFetcher struct {
	next  aggregate.FeedFetcher
	store *cache.Cache
}

// NewCachingFetcher wraps next with a TTL cache keyed by feed URL.
func NewCachingFetcher(next aggregate.FeedFetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next:  next,
		store: cache.New(ttl, 2*ttl),
	}
}

// Fetch returns the cached body for feedURL or delegates to the wrapped fetcher.
func (c *CachingFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if v, found := c.store.Get(feedURL); found {
		if body, ok := v.([]byte); ok {
			metrics.RecordFetchCache(true)
			return body, nil
		}
	}
	metrics.RecordFetchCache(false)

	body, err := c.next.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	c.store.SetDefault(feedURL, body)
	return body, nil
}

// Flush drops every cached body.
func (c *CachingFetcher) Flush() {
	c.store.Flush()
}

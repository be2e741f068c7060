// Package cache keeps the store's bulk product feed in memory between
// shopping runs; the feed is large and changes at most daily.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// FeedCache wraps a feed downloader and serves a cached copy until the
// TTL elapses. Safe for concurrent use.
type FeedCache struct {
	downloader domain.FeedDownloader
	ttl        time.Duration

	mutex     sync.Mutex
	feed      domain.ProductFeed
	fetchedAt time.Time
}

// NewFeedCache creates a caching wrapper around downloader.
func NewFeedCache(downloader domain.FeedDownloader, ttl time.Duration) *FeedCache {
	return &FeedCache{downloader: downloader, ttl: ttl}
}

// DownloadFeed returns the cached feed, refreshing it when stale. A
// failed refresh never serves stale data; the error propagates.
func (c *FeedCache) DownloadFeed(ctx context.Context) (domain.ProductFeed, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.feed != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.feed, nil
	}

	feed, err := c.downloader.DownloadFeed(ctx)
	if err != nil {
		return nil, err
	}

	c.feed = feed
	c.fetchedAt = time.Now()
	return feed, nil
}

// Invalidate drops the cached feed so the next call refreshes it.
func (c *FeedCache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.feed = nil
}

package crawler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache fronts the fetcher with Redis-backed HTML storage so repeated
// runs during development do not re-hit the site. Cache errors degrade to
// misses; the crawl never fails because Redis is down.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(redisURL string, ttl time.Duration) (*PageCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &PageCache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

func (c *PageCache) Get(ctx context.Context, url string) ([]byte, bool) {
	body, err := c.rdb.Get(ctx, cacheKey(url)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("cache: get failed", "url", url, "err", err)
		}
		return nil, false
	}
	return body, true
}

func (c *PageCache) Put(ctx context.Context, url string, body []byte) {
	if err := c.rdb.Set(ctx, cacheKey(url), body, c.ttl).Err(); err != nil {
		slog.Warn("cache: put failed", "url", url, "err", err)
	}
}

func cacheKey(url string) string { return "page:" + url }

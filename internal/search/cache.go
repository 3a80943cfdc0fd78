package search

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/renqii/watchnest/internal/provider"
)

const cacheKeyPrefix = "watchnest:search:"

// Cache stores merged search responses in Redis for a short TTL.
// Providers rate-limit us hard, so repeated identical queries should not
// fan out again. Every failure degrades to a miss; the cache is never a
// reason for a search to fail.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(query string, kind Kind) string {
	return cacheKeyPrefix + string(kind) + ":" + normalizeTitle(query)
}

func (c *Cache) Get(ctx context.Context, query string, kind Kind) ([]provider.CandidateItem, bool) {
	data, err := c.client.Get(ctx, cacheKey(query, kind)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("search cache: get failed: %v", err)
		}
		return nil, false
	}
	var items []provider.CandidateItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *Cache) Set(ctx context.Context, query string, kind Kind, items []provider.CandidateItem) {
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(query, kind), data, c.ttl).Err(); err != nil {
		log.Printf("search cache: set failed: %v", err)
	}
}

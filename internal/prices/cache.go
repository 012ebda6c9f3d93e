// Package prices fetches market prices for crypto and CEDEAR holdings from
// external providers, with a short-lived local cache in front of each.
package prices

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Entries are retained well past their freshness window so a stale blob can
// still serve as a degraded fallback when a live fetch fails.
const cacheRetention = 24 * time.Hour

// snapshot is a cached price map together with its fetch time. Freshness is
// checked by the provider against its own TTL, not by cache eviction.
type snapshot struct {
	Prices    map[string]decimal.Decimal `json:"prices"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Cache stores provider snapshots keyed by provider name.
type Cache interface {
	Get(ctx context.Context, key string) (*snapshot, error)
	Set(ctx context.Context, key string, snap *snapshot) error
}

// memoryCache is the default in-process Cache.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]snapshot
}

// NewMemoryCache creates an in-memory price cache.
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]snapshot)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.FetchedAt) > cacheRetention {
		return nil, nil
	}
	cp := entry
	return &cp, nil
}

func (c *memoryCache) Set(_ context.Context, key string, snap *snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *snap
	return nil
}

// redisCache stores snapshots as JSON blobs in Redis, for deployments where
// several API instances should share one price cache.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed price cache.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (*snapshot, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *redisCache) Set(ctx context.Context, key string, snap *snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, cacheRetention).Err()
}

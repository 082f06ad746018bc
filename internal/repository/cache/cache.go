// Package cache implements the read-through response cache over the KV store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/promemo/internal/db"
)

// keyPrefix namespaces cache entries apart from entity documents.
const keyPrefix = "cache:"

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache is a read-through response cache keyed by request path+query, with
// glob-pattern invalidation. Constructed once and injected; no package state.
type Cache struct {
	store store
}

// New creates a response cache.
func New(s store) *Cache {
	return &Cache{store: s}
}

// Get returns the cached body for a request path, or (nil, false) on miss.
func (c *Cache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	data, err := c.store.Get(ctx, keyPrefix+path)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", path, err)
	}
	return data, true, nil
}

// Set stores a response body for a request path with the given TTL.
func (c *Cache) Set(ctx context.Context, path string, body []byte, ttl time.Duration) error {
	if err := c.store.SetWithTTL(ctx, keyPrefix+path, body, ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", path, err)
	}
	return nil
}

// Invalidate deletes every cache entry whose key matches the glob pattern.
// Returns the number of entries removed.
func (c *Cache) Invalidate(ctx context.Context, pattern string) (int, error) {
	keys, err := c.store.Scan(ctx, keyPrefix+pattern)
	if err != nil {
		return 0, fmt.Errorf("cache scan %s: %w", pattern, err)
	}

	removed := 0
	for _, key := range keys {
		if err := c.store.Del(ctx, key); err != nil {
			return removed, fmt.Errorf("cache del %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

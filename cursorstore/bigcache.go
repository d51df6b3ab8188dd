package cursorstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/Alp4ka/pagekit"
)

// BigCache is an in-process Cache. Entries share the lifetime given at
// construction; Set rejects any other non-zero TTL.
type BigCache struct {
	cache *bigcache.BigCache
	ttl   time.Duration
}

// NewBigCache creates a cache whose entries live for ttl, capped at maxMB
// megabytes (0 for no cap).
func NewBigCache(ctx context.Context, ttl time.Duration, maxMB int) (*BigCache, error) {
	config := bigcache.DefaultConfig(ttl)
	config.HardMaxCacheSize = maxMB
	config.CleanWindow = max(ttl/2, time.Second)
	config.Verbose = false

	cache, err := bigcache.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("cannot init bigcache: %w", err)
	}

	return &BigCache{cache: cache, ttl: ttl}, nil
}

func (c *BigCache) Get(_ context.Context, key string) ([]byte, error) {
	data, err := c.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrCacheMiss
	}

	return data, err
}

// Set stores value for the cache lifetime. ttl must be 0 or that lifetime.
func (c *BigCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl != 0 && ttl != c.ttl {
		return fmt.Errorf("%w: bigcache entries live %s, cannot store for %s", pagekit.ErrInvalidArgument, c.ttl, ttl)
	}

	return c.cache.Set(key, value)
}

func (c *BigCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			return err
		}
	}

	return nil
}

func (c *BigCache) Close() error {
	return c.cache.Close()
}

var _ Cache = (*BigCache)(nil)

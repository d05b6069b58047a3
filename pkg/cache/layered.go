package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
	l1TTL      time.Duration
}

// NewLayeredCache creates a layered cache with memory and Redis.
// l1TTL bounds how long a value promoted from Redis stays in memory.
func NewLayeredCache(redisCache *RedisCache, l1TTL time.Duration, opts ...MemoryOption) *LayeredCache {
	return &LayeredCache{
		memCache:   NewMemoryCache(opts...),
		redisCache: redisCache,
		l1TTL:      l1TTL,
	}
}

func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	// Write-through: Redis first, then memory
	if err := lc.redisCache.SetBytes(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.SetBytes(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.memCache.GetBytes(ctx, key); err == nil {
		return b, nil
	}

	b, err := lc.redisCache.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = lc.memCache.SetBytes(ctx, key, b, lc.l1TTL)
	return b, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.redisCache.Close()
}

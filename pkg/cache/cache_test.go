package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	buf := []byte("png")
	require.NoError(t, mc.SetBytes(ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	got, err := mc.GetBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("png"), got)

	_, err = mc.GetBytes(ctx, "missing")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, mc.Delete(ctx, "k"))
	_, err = mc.GetBytes(ctx, "k")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.SetBytes(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, err := mc.GetBytes(ctx, "k")
	require.ErrorIs(t, err, ErrCacheMiss)
	require.Equal(t, 0, mc.Len())
}

func TestMemoryCacheCleanupSweepsExpired(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(5 * time.Millisecond))
	defer mc.Close()

	require.NoError(t, mc.SetBytes(ctx, "a", []byte("1"), time.Millisecond))
	require.NoError(t, mc.SetBytes(ctx, "b", []byte("2"), time.Millisecond))
	require.NoError(t, mc.SetBytes(ctx, "keep", []byte("3"), time.Minute))

	require.Eventually(t, func() bool { return mc.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.SetBytes(ctx, "a", []byte("1"), time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.SetBytes(ctx, "b", []byte("2"), time.Minute))
	time.Sleep(2 * time.Millisecond)
	_, err := mc.GetBytes(ctx, "a")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.SetBytes(ctx, "c", []byte("3"), time.Minute))

	_, err = mc.GetBytes(ctx, "b")
	require.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.GetBytes(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 2, mc.Len())
}

func TestLayeredCachePromotesFromRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rc := NewRedisCache(client, "ratebot")
	require.NoError(t, rc.SetBytes(ctx, "icon:1", []byte("raw"), time.Hour))

	stored, err := mr.Get("ratebot:icon:1")
	require.NoError(t, err)
	require.Equal(t, "raw", stored)

	lc := NewLayeredCache(rc, time.Minute)
	defer lc.Close()

	got, err := lc.GetBytes(ctx, "icon:1")
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), got)

	// served from memory once redis forgets it
	mr.FlushAll()
	got, err = lc.GetBytes(ctx, "icon:1")
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), got)

	require.NoError(t, lc.Delete(ctx, "icon:1"))
	_, err = lc.GetBytes(ctx, "icon:1")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(),
		WithRedisAddr(addr),
		WithRedisPool(4, 1, time.Second))
	require.NoError(t, err)
	require.Equal(t, 4, client.Options().PoolSize)
	require.Equal(t, 1, client.Options().MinIdleConns)
	require.Equal(t, time.Second, client.Options().PoolTimeout)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), WithRedisAddr(addr))
	require.Error(t, err)
}

func TestHashKeyIsStable(t *testing.T) {
	a := HashKey("https://example.com/usd.png")
	require.Equal(t, a, HashKey("https://example.com/usd.png"))
	require.NotEqual(t, a, HashKey("https://example.com/eur.png"))
	require.Equal(t, "icon:"+a, GenerateKey("icon", a))
}

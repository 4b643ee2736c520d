package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

func newTestRedis(t *testing.T) (*redis.Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	return redis.New(mr.Addr()), mr
}

type seriesDoc struct {
	Chain   string    `msgpack:"chain"`
	Address string    `msgpack:"address"`
	Prices  []float64 `msgpack:"prices"`
}

func TestStoreRoundTrip(t *testing.T) {
	rds, mr := newTestRedis(t)
	store := NewStore(rds)
	ctx := context.Background()
	key := SeriesKey("price", "ethereum", "0xtoken", "")

	in := seriesDoc{Chain: "ethereum", Address: "0xtoken", Prices: []float64{1.25, 1.5}}
	require.NoError(t, store.Set(ctx, key, in, time.Minute))

	var out seriesDoc
	meta, err := store.Get(ctx, key, &out)
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, in, out)
	require.Equal(t, time.Minute, meta.TTL)
	require.WithinDuration(t, time.Now(), meta.StoredAt, 5*time.Second)
	require.True(t, meta.Fresh(time.Now(), time.Minute))
	require.Equal(t, time.Minute, mr.TTL(key))
}

func TestStoreMiss(t *testing.T) {
	rds, _ := newTestRedis(t)
	store := NewStore(rds)

	var out seriesDoc
	meta, err := store.Get(context.Background(), "aggtrade:absent", &out)
	require.NoError(t, err)
	require.Nil(t, meta)
	require.Empty(t, out.Chain)
}

func TestStoreExpiry(t *testing.T) {
	rds, mr := newTestRedis(t)
	store := NewStore(rds)
	ctx := context.Background()
	key := SeriesKey("candles", "ethereum", "0xpool", "1h")

	require.NoError(t, store.Set(ctx, key, seriesDoc{Chain: "ethereum"}, time.Minute))
	mr.FastForward(61 * time.Second)

	meta, err := store.Get(ctx, key, nil)
	require.NoError(t, err)
	require.Nil(t, meta)
}

func TestStoreTTLBehaviour(t *testing.T) {
	t.Run("non-positive ttl stores without expiry", func(t *testing.T) {
		rds, mr := newTestRedis(t)
		store := NewStore(rds)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "aggtrade:forever", seriesDoc{Chain: "solana"}, 0))
		mr.FastForward(24 * time.Hour)

		meta, err := store.Get(ctx, "aggtrade:forever", nil)
		require.NoError(t, err)
		require.NotNil(t, meta)
		require.Zero(t, mr.TTL("aggtrade:forever"))
	})

	t.Run("sub-second ttl is clamped to one second", func(t *testing.T) {
		rds, mr := newTestRedis(t)
		store := NewStore(rds)

		require.NoError(t, store.Set(context.Background(), "aggtrade:blink", seriesDoc{}, 100*time.Millisecond))
		require.Equal(t, time.Second, mr.TTL("aggtrade:blink"))
	})
}

func TestStoreDelExists(t *testing.T) {
	rds, _ := newTestRedis(t)
	store := NewStore(rds)
	ctx := context.Background()
	key := SpotPriceKey("ethereum", "0xtoken")

	require.NoError(t, store.Set(ctx, key, 1.5, time.Minute))
	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Del(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Del(ctx, key))
	require.NoError(t, store.Del(ctx))
}

func TestStoreDecode(t *testing.T) {
	t.Run("nil out skips the body decode", func(t *testing.T) {
		rds, _ := newTestRedis(t)
		store := NewStore(rds)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "aggtrade:meta-only", seriesDoc{Chain: "ethereum"}, time.Minute))
		meta, err := store.Get(ctx, "aggtrade:meta-only", nil)
		require.NoError(t, err)
		require.NotNil(t, meta)
	})

	t.Run("corrupt payload surfaces a decode error", func(t *testing.T) {
		rds, mr := newTestRedis(t)
		store := NewStore(rds)

		require.NoError(t, mr.Set("aggtrade:corrupt", "not msgpack"))
		_, err := store.Get(context.Background(), "aggtrade:corrupt", nil)
		require.Error(t, err)
	})
}

func TestStorePing(t *testing.T) {
	rds, _ := newTestRedis(t)
	store := NewStore(rds)
	require.True(t, store.Ping(context.Background()))
	require.NotNil(t, store.Redis())
}

func TestMetaFresh(t *testing.T) {
	now := time.Now()

	t.Run("nil meta is never fresh", func(t *testing.T) {
		var meta *Meta
		require.False(t, meta.Fresh(now, time.Minute))
	})

	t.Run("age below the window is fresh", func(t *testing.T) {
		meta := &Meta{StoredAt: now.Add(-30 * time.Second)}
		require.True(t, meta.Fresh(now, time.Minute))
	})

	t.Run("age at the window is stale", func(t *testing.T) {
		meta := &Meta{StoredAt: now.Add(-time.Minute)}
		require.False(t, meta.Fresh(now, time.Minute))
		require.Equal(t, time.Minute, meta.Age(now))
	})
}

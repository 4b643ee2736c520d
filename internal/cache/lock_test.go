package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockAcquireContention(t *testing.T) {
	rds, _ := newTestRedis(t)
	lock := NewLock(rds)
	ctx := context.Background()
	key := SyncLockKey("candles", "ethereum", "0xpool", "1h")

	token, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	held, err := lock.Held(ctx, key)
	require.NoError(t, err)
	require.True(t, held)

	other, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, other)
}

func TestLockRelease(t *testing.T) {
	t.Run("owner release frees the key", func(t *testing.T) {
		rds, _ := newTestRedis(t)
		lock := NewLock(rds)
		ctx := context.Background()
		key := SyncLockKey("price", "ethereum", "0xtoken", "")

		token, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, lock.Release(ctx, key, token))
		held, err := lock.Held(ctx, key)
		require.NoError(t, err)
		require.False(t, held)

		next, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotEqual(t, token, next)
	})

	t.Run("foreign token does not release", func(t *testing.T) {
		rds, _ := newTestRedis(t)
		lock := NewLock(rds)
		ctx := context.Background()
		key := SyncLockKey("swaps", "solana", "pool", "")

		_, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, lock.Release(ctx, key, "someone-else"))
		held, err := lock.Held(ctx, key)
		require.NoError(t, err)
		require.True(t, held)

		_, ok, err = lock.TryAcquire(ctx, key, 30*time.Second)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("empty token is a no-op", func(t *testing.T) {
		rds, _ := newTestRedis(t)
		lock := NewLock(rds)
		require.NoError(t, lock.Release(context.Background(), "aggtrade:lock:none", ""))
	})
}

func TestLockExpiry(t *testing.T) {
	rds, mr := newTestRedis(t)
	lock := NewLock(rds)
	ctx := context.Background()
	key := SyncLockKey("candles", "ethereum", "0xpool", "15m")

	stale, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	held, err := lock.Held(ctx, key)
	require.NoError(t, err)
	require.False(t, held)

	fresh, ok, err := lock.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// The expired holder's release must not evict the new owner.
	require.NoError(t, lock.Release(ctx, key, stale))
	held, err = lock.Held(ctx, key)
	require.NoError(t, err)
	require.True(t, held)

	require.NoError(t, lock.Release(ctx, key, fresh))
	held, err = lock.Held(ctx, key)
	require.NoError(t, err)
	require.False(t, held)
}

func TestLockTTLClamp(t *testing.T) {
	rds, mr := newTestRedis(t)
	lock := NewLock(rds)
	key := SyncLockKey("price", "solana", "mint", "")

	_, ok, err := lock.TryAcquire(context.Background(), key, 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, time.Second, mr.TTL(key))
}

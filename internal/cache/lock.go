package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// releaseLockScript deletes the lock only while the caller's token still
// owns it, so an attempt that outlived its TTL cannot clobber a successor.
const releaseLockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// Lock is the TTL-based mutual exclusion that keeps two instances from
// refreshing the same series at once. Acquisition is one atomic
// set-if-absent with expiry; correctness never depends on explicit release,
// only on the TTL, so a crashed holder recovers by simply expiring.
type Lock struct {
	rds *redis.Redis
}

// NewLock wraps a go-zero Redis client.
func NewLock(rds *redis.Redis) *Lock {
	return &Lock{rds: rds}
}

// TryAcquire attempts to take key for ttl without blocking. On success it
// returns the owner token to pass to Release; on contention it returns
// ok=false and no error.
func (l *Lock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	ok, err := l.rds.SetnxExCtx(ctx, key, token, seconds)
	if err != nil {
		return "", false, fmt.Errorf("cache: acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release clears key if token still owns it. Losing the race to TTL expiry
// is not an error; release is purely an optimisation that shortens how long
// other callers see a refresh in progress.
func (l *Lock) Release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	_, err := l.rds.EvalCtx(ctx, releaseLockScript, []string{key}, token)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache: release lock %s: %w", key, err)
	}
	return nil
}

// Held reports whether any attempt currently holds key.
func (l *Lock) Held(ctx context.Context, key string) (bool, error) {
	ok, err := l.rds.ExistsCtx(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache: check lock %s: %w", key, err)
	}
	return ok, nil
}

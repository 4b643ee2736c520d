package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// envelope wraps every stored payload with the bookkeeping age checks need.
type envelope struct {
	StoredAt int64              `msgpack:"storedAt"`
	TTL      int64              `msgpack:"ttl"`
	Body     msgpack.RawMessage `msgpack:"body"`
}

// Meta describes when a cached payload was written and for how long.
type Meta struct {
	StoredAt time.Time
	TTL      time.Duration
}

// Age reports how long ago the payload was written.
func (m *Meta) Age(now time.Time) time.Duration {
	return now.Sub(m.StoredAt)
}

// Fresh reports whether the payload is younger than window.
func (m *Meta) Fresh(now time.Time, window time.Duration) bool {
	if m == nil {
		return false
	}
	return m.Age(now) < window
}

// Store persists msgpack payloads in the shared Redis, so every server
// instance sees the same series data and the same locks.
type Store struct {
	rds *redis.Redis
}

// NewStore wraps a go-zero Redis client.
func NewStore(rds *redis.Redis) *Store {
	return &Store{rds: rds}
}

// Set stores value under key for ttl. A non-positive ttl stores without
// expiry.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	body, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	blob, err := msgpack.Marshal(envelope{
		StoredAt: time.Now().Unix(),
		TTL:      int64(ttl / time.Second),
		Body:     body,
	})
	if err != nil {
		return fmt.Errorf("cache: encode envelope %s: %w", key, err)
	}
	seconds := int(ttl / time.Second)
	if ttl > 0 && seconds < 1 {
		seconds = 1
	}
	if seconds <= 0 {
		if err := s.rds.SetCtx(ctx, key, string(blob)); err != nil {
			return fmt.Errorf("cache: set %s: %w", key, err)
		}
		return nil
	}
	if err := s.rds.SetexCtx(ctx, key, string(blob), seconds); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Get loads key into out. A nil Meta with nil error means the key is absent.
func (s *Store) Get(ctx context.Context, key string, out interface{}) (*Meta, error) {
	raw, err := s.rds.GetCtx(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if raw == "" {
		return nil, nil
	}
	var env envelope
	if err := msgpack.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if out != nil && len(env.Body) > 0 {
		if err := msgpack.Unmarshal(env.Body, out); err != nil {
			return nil, fmt.Errorf("cache: decode %s body: %w", key, err)
		}
	}
	return &Meta{
		StoredAt: time.Unix(env.StoredAt, 0),
		TTL:      time.Duration(env.TTL) * time.Second,
	}, nil
}

// Del removes keys. Missing keys are not an error.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.rds.DelCtx(ctx, keys...); err != nil {
		return fmt.Errorf("cache: del: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.rds.ExistsCtx(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache: exists %s: %w", key, err)
	}
	return ok, nil
}

// Ping reports whether the backing Redis answers.
func (s *Store) Ping(ctx context.Context) bool {
	return s.rds.PingCtx(ctx)
}

// Redis exposes the underlying client for primitives the Store does not
// wrap, such as locks.
func (s *Store) Redis() *redis.Redis {
	return s.rds
}

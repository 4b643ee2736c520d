// Package ratelimit schedules upstream API calls under a shared token
// bucket so that every code path talking to a provider competes for the
// same request budget.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Config describes one provider's request budget.
type Config struct {
	// Requests tokens are restored every Interval. Zero disables the bucket.
	Requests int           `json:"requests" yaml:"requests"`
	Interval time.Duration `json:"interval" yaml:"interval"`
	// Burst caps how many tokens the bucket holds; defaults to Requests.
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
	// MinSpacing forces a gap between consecutive request starts.
	MinSpacing time.Duration `json:"minSpacing,omitempty" yaml:"minSpacing,omitempty"`
	// Concurrency caps requests in flight at once. Zero means unbounded.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

// Limiter admits requests in arrival order once a token, a concurrency slot
// and the minimum spacing are all available. A nil Limiter admits everything
// immediately.
type Limiter struct {
	bucket  *rate.Limiter
	spacing *rate.Limiter
	slots   chan struct{}
}

// New builds a Limiter from cfg. Disabled dimensions (zero values) are
// simply skipped at admission time.
func New(cfg Config) *Limiter {
	l := &Limiter{}
	if cfg.Requests > 0 && cfg.Interval > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.Requests
		}
		per := rate.Limit(float64(cfg.Requests) / cfg.Interval.Seconds())
		l.bucket = rate.NewLimiter(per, burst)
	}
	if cfg.MinSpacing > 0 {
		l.spacing = rate.NewLimiter(rate.Every(cfg.MinSpacing), 1)
	}
	if cfg.Concurrency > 0 {
		l.slots = make(chan struct{}, cfg.Concurrency)
	}
	return l
}

// NoLimit returns a limiter that admits everything immediately.
func NoLimit() *Limiter { return &Limiter{} }

// Acquire blocks until the request may start, then returns a release func
// that must be called when the request finishes. Waiters are admitted in the
// order they arrive. If ctx is cancelled while queued the consumed token is
// returned to the bucket and ctx.Err is reported.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	release := func() {}
	if l.slots != nil {
		select {
		case l.slots <- struct{}{}:
			release = func() { <-l.slots }
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.bucket != nil {
		if err := l.bucket.Wait(ctx); err != nil {
			release()
			return nil, err
		}
	}
	if l.spacing != nil {
		if err := l.spacing.Wait(ctx); err != nil {
			release()
			return nil, err
		}
	}
	return release, nil
}

// Do runs fn under the limiter, releasing the slot when fn returns.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

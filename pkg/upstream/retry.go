package upstream

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 500 * time.Millisecond
)

// RetryConfig bounds how a single upstream call is retried.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Backoff is the base delay; retry n waits n * Backoff.
	Backoff time.Duration
}

// Retrier re-issues one upstream call on transient failures with a linearly
// growing delay. Permanent failures and context cancellation end the loop
// immediately; an exhausted budget returns the last transient error so the
// caller can decide between degrading and failing.
type Retrier struct {
	cfg RetryConfig
}

// NewRetrier builds a Retrier, filling in defaults for unset fields.
func NewRetrier(cfg RetryConfig) *Retrier {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultRetryBackoff
	}
	return &Retrier{cfg: cfg}
}

// Do runs op, retrying transient errors until the budget is spent.
func (r *Retrier) Do(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	sched := &linearBackOff{step: r.cfg.Backoff, retries: r.cfg.MaxRetries}
	return backoff.Retry(wrapped, backoff.WithContext(sched, ctx))
}

// linearBackOff waits step, 2*step, 3*step, ... and stops after the
// configured number of retries.
type linearBackOff struct {
	step    time.Duration
	retries int
	n       int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	if l.n >= l.retries {
		return backoff.Stop
	}
	l.n++
	return time.Duration(l.n) * l.step
}

func (l *linearBackOff) Reset() { l.n = 0 }

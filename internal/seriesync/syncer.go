// Package seriesync decides, per cached market data series, whether to
// serve cache, refresh incrementally, fetch full history, or degrade to
// stale data. It is the only caller of the upstream providers; the HTTP
// layer talks to a Syncer and never to a provider directly.
package seriesync

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cache"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

const defaultLookback = 30 * 24 * time.Hour

// UpdateStatus tells API consumers what the sync engine did for a request.
type UpdateStatus string

const (
	// StatusFresh means the cached series was young enough to serve as is.
	StatusFresh UpdateStatus = "fresh"
	// StatusUpdating means another attempt holds the refresh lock, or this
	// attempt's refresh failed and the previous series was served unchanged.
	StatusUpdating UpdateStatus = "updating"
	// StatusUpdated means this request performed the refresh itself.
	StatusUpdated UpdateStatus = "updated"
)

// Request identifies one series and the window the caller wants back.
type Request struct {
	Chain      string
	Address    string
	Resolution string

	// From and To bound the served slice, unix seconds, both inclusive.
	// A zero To means now; a zero From serves from the start of stored
	// history. Neither affects what is fetched or persisted.
	From int64
	To   int64

	// Force skips the freshness short circuit and proceeds even while
	// another attempt holds the refresh lock.
	Force bool
}

// Result is the outcome served back to the caller.
type Result[R timeseries.Record] struct {
	Records      []R
	Meta         timeseries.Metadata
	Cached       bool
	UpdateStatus UpdateStatus
}

// FetchFunc fetches one page of the series from an upstream provider. The
// provider methods of pkg/upstream satisfy it directly.
type FetchFunc[R timeseries.Record] func(ctx context.Context, q upstream.Query) ([]R, error)

// Run describes one completed sync for the audit hook.
type Run struct {
	Kind       timeseries.Kind
	Chain      string
	Address    string
	Resolution string
	Full       bool
	Fetched    int
	Total      int
	StartedAt  time.Time
	Duration   time.Duration
}

// AuditFunc observes completed syncs. The serve path never depends on it.
type AuditFunc func(ctx context.Context, run Run)

// payload is the cached document for one series.
type payload[R timeseries.Record] struct {
	Records []R                 `msgpack:"records"`
	Meta    timeseries.Metadata `msgpack:"meta"`
}

// Syncer runs the refresh decision for one series kind. The refresh lock in
// the shared cache guarantees at most one attempt syncs a given series at a
// time; every other caller is served the best cached payload immediately,
// never blocked.
type Syncer[R timeseries.Record] struct {
	Kind  timeseries.Kind
	Store *cache.Store
	Lock  *cache.Lock
	TTL   cache.TTLSet

	// Lookback bounds the window of a full history fetch. Defaults to 30
	// days when zero.
	Lookback time.Duration

	// Pager paces the page walk; Fetch issues one page. Rate limiting and
	// retries live inside the provider behind Fetch.
	Pager upstream.Pager[R]
	Fetch FetchFunc[R]

	// Audit, when set, observes each completed sync.
	Audit AuditFunc

	// Now is the clock for freshness arithmetic; tests pin it.
	Now func() time.Time
}

func (s *Syncer[R]) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Sync serves the requested window of the series, refreshing it first when
// it is stale. Fresh cache is served without any upstream call. When the
// refresh lock is busy the previous payload is served annotated as
// updating; when a refresh fails the same stale fallback applies and the
// lock is left to expire on its own. Only a successful refresh persists
// records or advances metadata.
func (s *Syncer[R]) Sync(ctx context.Context, req Request) (*Result[R], error) {
	if s.Store == nil || s.Lock == nil || s.Fetch == nil {
		return nil, fmt.Errorf("seriesync: syncer not fully configured")
	}
	key := cache.SeriesKey(string(s.Kind), req.Chain, req.Address, req.Resolution)

	var doc payload[R]
	entry, err := s.Store.Get(ctx, key, &doc)
	if err != nil {
		return nil, err
	}
	haveCache := entry != nil && doc.Meta.LastUpdateAt > 0
	now := s.now()

	if !req.Force && haveCache && doc.Meta.Fresh(now, cache.FreshnessWindow(s.TTL)) {
		return s.serve(doc, req, now, true, StatusFresh), nil
	}

	lockKey := cache.SyncLockKey(string(s.Kind), req.Chain, req.Address, req.Resolution)
	token, acquired, err := s.Lock.TryAcquire(ctx, lockKey, cache.SyncLockTTL(s.TTL))
	if err != nil {
		return nil, err
	}
	if !acquired && !req.Force {
		if haveCache {
			return s.serve(doc, req, now, true, StatusUpdating), nil
		}
		return nil, fmt.Errorf("seriesync: %s refresh in progress with no cached data: %w", key, upstream.ErrUnavailable)
	}

	started := time.Now()
	full := !haveCache || doc.Meta.LastRecordTime == 0

	lookback := s.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}
	base := upstream.Query{
		Chain:      req.Chain,
		Address:    req.Address,
		Resolution: req.Resolution,
		From:       now.Add(-lookback).Unix(),
		To:         now.Unix(),
	}
	if !full {
		base.From = doc.Meta.ResumeFrom(base.From)
	}

	fetched, err := s.Pager.FetchAll(ctx, func(ctx context.Context, offset, limit int) ([]R, error) {
		q := base
		q.Offset, q.Limit = offset, limit
		return s.Fetch(ctx, q)
	})
	if err != nil {
		// The attempt did not succeed, so the lock is left to expire.
		logx.WithContext(ctx).Errorf("seriesync: fetch key=%s full=%t err=%v", key, full, err)
		if haveCache {
			return s.serve(doc, req, now, true, StatusUpdating), nil
		}
		return nil, fmt.Errorf("seriesync: fetch %s: %w", key, err)
	}

	if full && len(fetched) == 0 {
		// No history at all. Nothing is persisted, so the next request
		// retries a full fetch instead of being stuck on an empty series.
		s.release(ctx, lockKey, token)
		return nil, fmt.Errorf("seriesync: %s %s/%s: %w", s.Kind, req.Chain, req.Address, upstream.ErrNoData)
	}

	merged := timeseries.Merge(doc.Records, fetched)
	meta := timeseries.BuildMetadata(merged, now)
	next := payload[R]{Records: merged, Meta: meta}
	if err := s.Store.Set(ctx, key, next, cache.SeriesTTL(s.TTL)); err != nil {
		// Serve the merged data anyway; the lock expires on its own and
		// the next stale request redoes the fetch and the persist.
		logx.WithContext(ctx).Errorf("seriesync: persist key=%s err=%v", key, err)
		return s.serve(next, req, now, false, StatusUpdated), nil
	}
	s.release(ctx, lockKey, token)

	if s.Audit != nil {
		s.Audit(ctx, Run{
			Kind:       s.Kind,
			Chain:      req.Chain,
			Address:    req.Address,
			Resolution: req.Resolution,
			Full:       full,
			Fetched:    len(fetched),
			Total:      len(merged),
			StartedAt:  started,
			Duration:   time.Since(started),
		})
	}
	logx.WithContext(ctx).Infof("seriesync: synced key=%s full=%t fetched=%d total=%d", key, full, len(fetched), len(merged))
	return s.serve(next, req, now, false, StatusUpdated), nil
}

func (s *Syncer[R]) serve(doc payload[R], req Request, now time.Time, cached bool, status UpdateStatus) *Result[R] {
	to := req.To
	if to <= 0 {
		to = now.Unix()
	}
	return &Result[R]{
		Records:      timeseries.Window(doc.Records, req.From, to),
		Meta:         doc.Meta,
		Cached:       cached,
		UpdateStatus: status,
	}
}

// release clears the lock after an attempt that finished deterministically.
// A forced attempt that never acquired the lock has an empty token and
// leaves the actual holder alone.
func (s *Syncer[R]) release(ctx context.Context, lockKey, token string) {
	if token == "" {
		return
	}
	if err := s.Lock.Release(ctx, lockKey, token); err != nil {
		logx.WithContext(ctx).Errorf("seriesync: release lock key=%s err=%v", lockKey, err)
	}
}

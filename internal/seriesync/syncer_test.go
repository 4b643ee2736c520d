package seriesync

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cache"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

var testTTL = cache.TTLSet{
	Freshness: 5 * time.Minute,
	Retention: 24 * time.Hour,
	Lock:      30 * time.Second,
	Spot:      30 * time.Second,
}

var baseTime = time.Unix(1_750_000_000, 0)

// hourly builds n ascending hourly points ending one hour before end.
func hourly(n int, end time.Time) []timeseries.PricePoint {
	out := make([]timeseries.PricePoint, 0, n)
	for i := n; i >= 1; i-- {
		ts := end.Add(-time.Duration(i) * time.Hour).Unix()
		out = append(out, timeseries.PricePoint{ID: strconv.FormatInt(ts, 10), Time: ts, Price: 1 + float64(i)*0.01})
	}
	return out
}

// sliceFetch serves pages out of a fixed record set the way an offset-paged
// upstream would, recording every query it sees.
type sliceFetch struct {
	mu      sync.Mutex
	records []timeseries.PricePoint
	queries []upstream.Query
	err     error
}

func (f *sliceFetch) fetch(_ context.Context, q upstream.Query) ([]timeseries.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if q.Offset >= len(f.records) {
		return nil, nil
	}
	end := q.Offset + q.Limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[q.Offset:end], nil
}

func (f *sliceFetch) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *sliceFetch) firstQuery() upstream.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[0]
}

func newPriceSyncer(t *testing.T, fetch *sliceFetch) (*Syncer[timeseries.PricePoint], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rds := redis.New(mr.Addr())
	return &Syncer[timeseries.PricePoint]{
		Kind:     timeseries.KindPrice,
		Store:    cache.NewStore(rds),
		Lock:     cache.NewLock(rds),
		TTL:      testTTL,
		Lookback: 40 * 24 * time.Hour,
		Pager:    upstream.Pager[timeseries.PricePoint]{PageSize: 100},
		Fetch:    fetch.fetch,
		Now:      func() time.Time { return baseTime },
	}, mr
}

func priceReq() Request {
	return Request{Chain: "ethereum", Address: "0xtoken"}
}

func priceKeys() (series, lock string) {
	return cache.SeriesKey(string(timeseries.KindPrice), "ethereum", "0xtoken", ""),
		cache.SyncLockKey(string(timeseries.KindPrice), "ethereum", "0xtoken", "")
}

func TestSyncFullFetch(t *testing.T) {
	fetch := &sliceFetch{records: hourly(250, baseTime)}
	s, mr := newPriceSyncer(t, fetch)
	ctx := context.Background()

	res, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, StatusUpdated, res.UpdateStatus)
	require.Len(t, res.Records, 250)

	require.Equal(t, 3, fetch.calls(), "250 records at page size 100 take three pages")
	first := fetch.firstQuery()
	require.Equal(t, baseTime.Add(-40*24*time.Hour).Unix(), first.From)
	require.Equal(t, baseTime.Unix(), first.To)
	require.Equal(t, 100, first.Limit)

	wantLast := baseTime.Add(-time.Hour).Unix()
	require.Equal(t, baseTime.Unix(), res.Meta.LastUpdateAt)
	require.Equal(t, wantLast, res.Meta.LastRecordTime)
	require.Equal(t, 250, res.Meta.Records)

	seriesKey, lockKey := priceKeys()
	require.Equal(t, 24*time.Hour, mr.TTL(seriesKey), "persisted under the retention ttl")
	held, err := s.Lock.Held(ctx, lockKey)
	require.NoError(t, err)
	require.False(t, held, "lock is cleared after a successful sync")
}

func TestSyncFreshServe(t *testing.T) {
	fetch := &sliceFetch{records: hourly(250, baseTime)}
	s, _ := newPriceSyncer(t, fetch)
	ctx := context.Background()

	_, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)
	calls := fetch.calls()

	s.Now = func() time.Time { return baseTime.Add(2 * time.Minute) }
	res, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.Equal(t, StatusFresh, res.UpdateStatus)
	require.Len(t, res.Records, 250)
	require.Equal(t, calls, fetch.calls(), "a fresh serve makes no upstream call")
}

func TestSyncIncremental(t *testing.T) {
	fetch := &sliceFetch{records: hourly(250, baseTime)}
	s, _ := newPriceSyncer(t, fetch)
	ctx := context.Background()

	_, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)
	lastTs := baseTime.Add(-time.Hour).Unix()

	fresh := make([]timeseries.PricePoint, 0, 5)
	for i := int64(1); i <= 5; i++ {
		ts := lastTs + i*60
		fresh = append(fresh, timeseries.PricePoint{ID: strconv.FormatInt(ts, 10), Time: ts, Price: 2})
	}
	inc := &sliceFetch{records: fresh}
	s.Fetch = inc.fetch
	s.Now = func() time.Time { return baseTime.Add(10 * time.Minute) }

	res, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, StatusUpdated, res.UpdateStatus)
	require.Len(t, res.Records, 255)

	require.Equal(t, 1, inc.calls())
	require.Equal(t, lastTs+1, inc.firstQuery().From, "incremental fetch resumes past the newest stored record")
	require.Equal(t, baseTime.Add(10*time.Minute).Unix(), res.Meta.LastUpdateAt)
	require.Equal(t, lastTs+300, res.Meta.LastRecordTime)
	require.Equal(t, 255, res.Meta.Records)

	// The merged set is durable: the next fresh-window request serves it
	// from cache.
	s.Now = func() time.Time { return baseTime.Add(11 * time.Minute) }
	res, err = s.Sync(ctx, priceReq())
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.Equal(t, StatusFresh, res.UpdateStatus)
	require.Len(t, res.Records, 255)
	require.Equal(t, 1, inc.calls())
}

func TestSyncLockContention(t *testing.T) {
	t.Run("stale cache is served while another attempt syncs", func(t *testing.T) {
		fetch := &sliceFetch{records: hourly(250, baseTime)}
		s, _ := newPriceSyncer(t, fetch)
		ctx := context.Background()

		_, err := s.Sync(ctx, priceReq())
		require.NoError(t, err)
		calls := fetch.calls()

		_, lockKey := priceKeys()
		_, ok, err := s.Lock.TryAcquire(ctx, lockKey, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		s.Now = func() time.Time { return baseTime.Add(10 * time.Minute) }
		res, err := s.Sync(ctx, priceReq())
		require.NoError(t, err)
		require.True(t, res.Cached)
		require.Equal(t, StatusUpdating, res.UpdateStatus)
		require.Len(t, res.Records, 250)
		require.Equal(t, baseTime.Unix(), res.Meta.LastUpdateAt, "metadata still describes the pre-sync payload")
		require.Equal(t, calls, fetch.calls(), "the loser makes no upstream call")
	})

	t.Run("no cache at all propagates unavailable", func(t *testing.T) {
		fetch := &sliceFetch{records: hourly(10, baseTime)}
		s, _ := newPriceSyncer(t, fetch)
		ctx := context.Background()

		_, lockKey := priceKeys()
		_, ok, err := s.Lock.TryAcquire(ctx, lockKey, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = s.Sync(ctx, priceReq())
		require.ErrorIs(t, err, upstream.ErrUnavailable)
		require.Zero(t, fetch.calls())
	})
}

func TestSyncFetchErrorServesStale(t *testing.T) {
	fetch := &sliceFetch{records: hourly(250, baseTime)}
	s, mr := newPriceSyncer(t, fetch)
	ctx := context.Background()

	_, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)

	s.Fetch = (&sliceFetch{err: &upstream.StatusError{Provider: "dexscan", Status: 503}}).fetch
	s.Now = func() time.Time { return baseTime.Add(10 * time.Minute) }

	res, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.Equal(t, StatusUpdating, res.UpdateStatus)
	require.Len(t, res.Records, 250)
	require.Equal(t, baseTime.Unix(), res.Meta.LastUpdateAt, "a failed refresh leaves metadata untouched")

	_, lockKey := priceKeys()
	held, err := s.Lock.Held(ctx, lockKey)
	require.NoError(t, err)
	require.True(t, held, "a failed attempt leaves the lock to expire")

	// TTL expiry alone recovers the series: once the lock lapses the next
	// stale request syncs again from the last persisted record.
	mr.FastForward(31 * time.Second)
	retry := &sliceFetch{}
	s.Fetch = retry.fetch
	res, err = s.Sync(ctx, priceReq())
	require.NoError(t, err)
	require.Equal(t, StatusUpdated, res.UpdateStatus)
	require.Equal(t, baseTime.Add(-time.Hour).Unix()+1, retry.firstQuery().From)
}

func TestSyncEmptyFullFetch(t *testing.T) {
	fetch := &sliceFetch{}
	s, mr := newPriceSyncer(t, fetch)
	ctx := context.Background()

	_, err := s.Sync(ctx, priceReq())
	require.ErrorIs(t, err, upstream.ErrNoData)

	seriesKey, lockKey := priceKeys()
	require.False(t, mr.Exists(seriesKey), "an empty history is not persisted")
	held, err := s.Lock.Held(ctx, lockKey)
	require.NoError(t, err)
	require.False(t, held)

	// Nothing was recorded, so the next request retries a full fetch
	// instead of being stuck on an empty series.
	_, err = s.Sync(ctx, priceReq())
	require.ErrorIs(t, err, upstream.ErrNoData)
	require.Equal(t, 2, fetch.calls())
}

func TestSyncForce(t *testing.T) {
	t.Run("force bypasses the freshness window", func(t *testing.T) {
		fetch := &sliceFetch{records: hourly(250, baseTime)}
		s, _ := newPriceSyncer(t, fetch)
		ctx := context.Background()

		_, err := s.Sync(ctx, priceReq())
		require.NoError(t, err)
		calls := fetch.calls()

		req := priceReq()
		req.Force = true
		res, err := s.Sync(ctx, req)
		require.NoError(t, err)
		require.Equal(t, StatusUpdated, res.UpdateStatus)
		require.Greater(t, fetch.calls(), calls)
	})

	t.Run("force proceeds past a busy lock without stealing it", func(t *testing.T) {
		fetch := &sliceFetch{records: hourly(250, baseTime)}
		s, _ := newPriceSyncer(t, fetch)
		ctx := context.Background()

		_, err := s.Sync(ctx, priceReq())
		require.NoError(t, err)

		_, lockKey := priceKeys()
		_, ok, err := s.Lock.TryAcquire(ctx, lockKey, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		s.Now = func() time.Time { return baseTime.Add(10 * time.Minute) }
		req := priceReq()
		req.Force = true
		res, err := s.Sync(ctx, req)
		require.NoError(t, err)
		require.Equal(t, StatusUpdated, res.UpdateStatus)

		held, err := s.Lock.Held(ctx, lockKey)
		require.NoError(t, err)
		require.True(t, held, "the real holder keeps its lock")
	})
}

func TestSyncWindowFilter(t *testing.T) {
	fetch := &sliceFetch{records: hourly(250, baseTime)}
	s, _ := newPriceSyncer(t, fetch)
	ctx := context.Background()

	_, err := s.Sync(ctx, priceReq())
	require.NoError(t, err)

	req := priceReq()
	req.From = baseTime.Add(-2 * time.Hour).Unix()
	req.To = baseTime.Add(-time.Hour).Unix()
	res, err := s.Sync(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Records, 2, "window endpoints are inclusive")
	require.Equal(t, req.From, res.Records[0].Time)
	require.Equal(t, req.To, res.Records[1].Time)
}

func TestSyncAuditHook(t *testing.T) {
	fetch := &sliceFetch{records: hourly(250, baseTime)}
	s, _ := newPriceSyncer(t, fetch)

	var runs []Run
	s.Audit = func(_ context.Context, run Run) { runs = append(runs, run) }

	_, err := s.Sync(context.Background(), priceReq())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.True(t, runs[0].Full)
	require.Equal(t, 250, runs[0].Fetched)
	require.Equal(t, 250, runs[0].Total)
	require.Equal(t, timeseries.KindPrice, runs[0].Kind)
}

func TestSyncNotConfigured(t *testing.T) {
	var s Syncer[timeseries.PricePoint]
	_, err := s.Sync(context.Background(), priceReq())
	require.Error(t, err)
}

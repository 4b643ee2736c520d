package upstream

import (
	"context"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
)

const (
	defaultPageSize   = 100
	defaultMaxRecords = 10000
)

// PageFunc fetches one page of records at the given offset.
type PageFunc[R timeseries.Record] func(ctx context.Context, offset, limit int) ([]R, error)

// Pager walks an offset-paged upstream endpoint until the series is
// exhausted or the record cap is hit. Each page call is expected to already
// be rate limited and retried by the provider; the pager only decides how
// far to walk and paces consecutive pages.
type Pager[R timeseries.Record] struct {
	// PageSize is the limit passed to each page call. Defaults to 100.
	PageSize int
	// MaxRecords caps the total fetched. Defaults to 10000; negative means no cap.
	MaxRecords int
	// Delay is slept between consecutive pages.
	Delay time.Duration
}

// FetchAll accumulates pages from fetch until a stop condition holds. Any
// page error aborts the whole fetch; no partial result is returned.
func (p Pager[R]) FetchAll(ctx context.Context, fetch PageFunc[R]) ([]R, error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxRecords := p.MaxRecords
	if maxRecords == 0 {
		maxRecords = defaultMaxRecords
	}

	var all []R
	for offset := 0; ; offset += pageSize {
		page, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if !nextPage(len(page), pageSize, len(all), maxRecords) {
			break
		}
		if p.Delay > 0 {
			if err := sleepContext(ctx, p.Delay); err != nil {
				return nil, err
			}
		}
	}
	if maxRecords > 0 && len(all) > maxRecords {
		all = all[:maxRecords]
	}
	return all, nil
}

// nextPage decides whether another page should be requested. A short or
// empty page means the upstream is exhausted; reaching the cap stops the
// walk regardless.
func nextPage(pageLen, pageSize, total, maxRecords int) bool {
	if pageLen == 0 || pageLen < pageSize {
		return false
	}
	if maxRecords > 0 && total >= maxRecords {
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

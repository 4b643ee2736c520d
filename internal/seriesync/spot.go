package seriesync

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cache"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

// SpotResult is the outcome of a point price lookup. Known is false when
// retries were exhausted without an answer; the zero Price must never be
// mistaken for a market price.
type SpotResult struct {
	Price  float64
	Known  bool
	Cached bool
}

// SpotLookup serves the current token price through the shared cache under
// a short TTL. When the upstream stays unreachable past the retry budget it
// degrades to an explicit unknown rather than inventing a number.
type SpotLookup struct {
	Store    *cache.Store
	TTL      cache.TTLSet
	Provider upstream.Provider
}

// Price returns the cached spot price when one is live, otherwise asks the
// provider and caches the answer. Only transient upstream failures degrade
// to unknown; a confirmed no-data or client error propagates.
func (s *SpotLookup) Price(ctx context.Context, chain, address string) (SpotResult, error) {
	if s.Store == nil || s.Provider == nil {
		return SpotResult{}, fmt.Errorf("seriesync: spot lookup not fully configured")
	}
	key := cache.SpotPriceKey(chain, address)

	var price float64
	entry, err := s.Store.Get(ctx, key, &price)
	if err != nil {
		// The cache is an optimisation here; fall through to the provider.
		logx.WithContext(ctx).Errorf("seriesync: spot cache read key=%s err=%v", key, err)
	} else if entry != nil {
		return SpotResult{Price: price, Known: true, Cached: true}, nil
	}

	price, err = s.Provider.SpotPrice(ctx, chain, address)
	if err != nil {
		if upstream.IsTransient(err) {
			logx.WithContext(ctx).Errorf("seriesync: spot degrade key=%s err=%v", key, err)
			return SpotResult{}, nil
		}
		return SpotResult{}, err
	}

	if err := s.Store.Set(ctx, key, price, cache.SpotPriceTTL(s.TTL)); err != nil {
		logx.WithContext(ctx).Errorf("seriesync: spot cache write key=%s err=%v", key, err)
	}
	return SpotResult{Price: price, Known: true}, nil
}

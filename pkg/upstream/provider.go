// Package upstream defines the provider abstraction for third-party market
// data APIs plus the retry and pagination machinery every provider call is
// routed through.
package upstream

import (
	"context"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
)

// Query identifies one page of one series at an upstream provider. From and
// To are unix seconds, both inclusive; Offset/Limit select the page.
type Query struct {
	Chain      string
	Address    string
	Resolution string
	From       int64
	To         int64
	Offset     int
	Limit      int
}

// Provider is one market data upstream. Implementations own their transport,
// auth and rate limiting; callers treat every method as a single opaque
// request that either returns records or a classifiable error.
type Provider interface {
	// Name reports the configured provider name, used in audit records and
	// logs.
	Name() string

	// SpotPrice returns the current USD price for a token.
	SpotPrice(ctx context.Context, chain, address string) (float64, error)

	// PricePage fetches one page of historical token prices.
	PricePage(ctx context.Context, q Query) ([]timeseries.PricePoint, error)

	// CandlePage fetches one page of OHLCV bars for a pool.
	CandlePage(ctx context.Context, q Query) ([]timeseries.Candle, error)

	// SwapPage fetches one page of executed swaps for a pool.
	SwapPage(ctx context.Context, q Query) ([]timeseries.Swap, error)
}

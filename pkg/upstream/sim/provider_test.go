package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

// 1_700_000_400 sits exactly on the minute grid.
func fixedNow() time.Time { return time.Unix(1_700_000_400, 0) }

func newFixed(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	return New(append([]Option{WithNow(fixedNow), WithStep(time.Minute), WithTotal(100)}, opts...)...)
}

func TestSimDeterminism(t *testing.T) {
	p := newFixed(t)
	ctx := context.Background()

	first, err := p.SpotPrice(ctx, "ethereum", "0xToken")
	require.NoError(t, err)
	second, err := p.SpotPrice(ctx, "ethereum", "0xToken")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := p.SpotPrice(ctx, "ethereum", "0xOther")
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestSimPricePage(t *testing.T) {
	p := newFixed(t)
	ctx := context.Background()
	now := fixedNow().Unix()

	q := upstream.Query{Chain: "ethereum", Address: "0xToken", From: now - 600, To: now, Limit: 100}
	records, err := p.PricePage(ctx, q)
	require.NoError(t, err)
	require.Len(t, records, 11) // inclusive minute grid over ten minutes

	for i := 1; i < len(records); i++ {
		require.Equal(t, records[i-1].Time+60, records[i].Time)
	}

	again, err := p.PricePage(ctx, q)
	require.NoError(t, err)
	require.Equal(t, records, again)
}

func TestSimPagination(t *testing.T) {
	p := newFixed(t)
	ctx := context.Background()
	now := fixedNow().Unix()

	q := upstream.Query{Chain: "ethereum", Address: "0xToken", From: now - 3600, To: now}

	q.Limit = 25
	var all []int64
	for offset := 0; ; offset += 25 {
		q.Offset = offset
		pageRecords, err := p.PricePage(ctx, q)
		require.NoError(t, err)
		for _, r := range pageRecords {
			all = append(all, r.Time)
		}
		if len(pageRecords) < 25 {
			break
		}
	}
	require.Len(t, all, 61)
	require.EqualValues(t, now-3600, all[0])
	require.EqualValues(t, now, all[len(all)-1])
}

func TestSimHistoryHorizon(t *testing.T) {
	p := newFixed(t, WithTotal(10))
	ctx := context.Background()
	now := fixedNow().Unix()

	records, err := p.PricePage(ctx, upstream.Query{
		Chain: "ethereum", Address: "0xToken",
		From: now - 86400, To: now, Limit: 1000,
	})
	require.NoError(t, err)
	require.Len(t, records, 10, "history should stop at the configured horizon")
}

func TestSimCandleResolution(t *testing.T) {
	p := newFixed(t)
	ctx := context.Background()
	now := fixedNow().Unix()

	candles, err := p.CandlePage(ctx, upstream.Query{
		Chain: "ethereum", Address: "0xPool", Resolution: "15m",
		From: now - 3600, To: now, Limit: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, candles)
	for _, c := range candles {
		require.Zero(t, c.Time%900, "candles should sit on the resolution grid")
		require.GreaterOrEqual(t, c.High, c.Open)
		require.GreaterOrEqual(t, c.High, c.Close)
		require.LessOrEqual(t, c.Low, c.Open)
		require.LessOrEqual(t, c.Low, c.Close)
	}

	_, err = p.CandlePage(ctx, upstream.Query{Resolution: "7m"})
	require.Error(t, err)
}

func TestSimSwapSides(t *testing.T) {
	p := newFixed(t)
	ctx := context.Background()
	now := fixedNow().Unix()

	swaps, err := p.SwapPage(ctx, upstream.Query{
		Chain: "ethereum", Address: "0xPool", From: now - 300, To: now, Limit: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, swaps)
	for i := 1; i < len(swaps); i++ {
		require.NotEqual(t, swaps[i-1].Side, swaps[i].Side, "sides should alternate on the grid")
	}
}

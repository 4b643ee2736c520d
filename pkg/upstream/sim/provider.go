// Package sim is a deterministic in-process market data provider for
// offline development and tests. The same chain/address pair always yields
// the same series, so assertions can rely on exact values.
package sim

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

const (
	defaultStep  = 60 * time.Second
	defaultTotal = 500
)

// Provider generates synthetic series on a fixed time grid. Records exist
// every Step seconds for the Total most recent grid points; requests outside
// that range come back empty, which exercises the same pagination stop
// conditions a real upstream would.
type Provider struct {
	name  string
	step  time.Duration
	total int
	// now is overridable so tests can pin the grid.
	now func() time.Time
}

// Option customises the simulator.
type Option func(*Provider)

// WithStep changes the grid spacing.
func WithStep(step time.Duration) Option {
	return func(p *Provider) {
		if step > 0 {
			p.step = step
		}
	}
}

// WithTotal changes how many grid points of history exist.
func WithTotal(total int) Option {
	return func(p *Provider) {
		if total > 0 {
			p.total = total
		}
	}
}

// WithNow pins the clock used to anchor the grid.
func WithNow(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New constructs a simulator provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		name:  "sim",
		step:  defaultStep,
		total: defaultTotal,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func init() {
	upstream.RegisterProvider("sim", func(name string, cfg *upstream.ProviderConfig) (upstream.Provider, error) {
		p := New()
		p.name = name
		return p, nil
	})
}

// Name implements upstream.Provider.
func (p *Provider) Name() string { return p.name }

// basePrice derives a stable per-token price level from the resource identity.
func basePrice(chain, address string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(chain) + ":" + strings.ToLower(address)))
	// keep prices in a readable 1..101 band
	return 1 + float64(h.Sum32()%10000)/100
}

// priceAt is the deterministic price curve: a slow sine around the base.
func priceAt(chain, address string, ts int64) float64 {
	base := basePrice(chain, address)
	return base * (1 + 0.05*math.Sin(float64(ts)/1800))
}

// grid returns the timestamps of existing records that fall inside [from, to].
func (p *Provider) grid(from, to int64) []int64 {
	step := int64(p.step / time.Second)
	newest := p.now().Unix() / step * step
	oldest := newest - int64(p.total-1)*step
	if from < oldest {
		from = oldest
	}
	if to > newest || to == 0 {
		to = newest
	}
	if from > to {
		return nil
	}
	first := (from + step - 1) / step * step
	var out []int64
	for ts := first; ts <= to; ts += step {
		out = append(out, ts)
	}
	return out
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// SpotPrice implements upstream.Provider.
func (p *Provider) SpotPrice(_ context.Context, chain, address string) (float64, error) {
	return priceAt(chain, address, p.now().Unix()), nil
}

// PricePage implements upstream.Provider.
func (p *Provider) PricePage(_ context.Context, q upstream.Query) ([]timeseries.PricePoint, error) {
	grid := page(p.grid(q.From, q.To), q.Offset, q.Limit)
	out := make([]timeseries.PricePoint, 0, len(grid))
	for _, ts := range grid {
		out = append(out, timeseries.PricePoint{
			ID:    fmt.Sprintf("%d", ts),
			Time:  ts,
			Price: priceAt(q.Chain, q.Address, ts),
		})
	}
	return out, nil
}

// CandlePage implements upstream.Provider.
func (p *Provider) CandlePage(_ context.Context, q upstream.Query) ([]timeseries.Candle, error) {
	step := p.step
	if q.Resolution != "" {
		d, err := timeseries.ParseResolution(q.Resolution)
		if err != nil {
			return nil, err
		}
		step = d
	}
	gen := &Provider{name: p.name, step: step, total: p.total, now: p.now}
	grid := page(gen.grid(q.From, q.To), q.Offset, q.Limit)
	out := make([]timeseries.Candle, 0, len(grid))
	for _, ts := range grid {
		open := priceAt(q.Chain, q.Address, ts)
		close := priceAt(q.Chain, q.Address, ts+int64(step/time.Second))
		high := math.Max(open, close) * 1.01
		low := math.Min(open, close) * 0.99
		out = append(out, timeseries.Candle{
			ID:     fmt.Sprintf("%d", ts),
			Time:   ts,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1000 + float64(ts%1000),
		})
	}
	return out, nil
}

// SwapPage implements upstream.Provider.
func (p *Provider) SwapPage(_ context.Context, q upstream.Query) ([]timeseries.Swap, error) {
	grid := page(p.grid(q.From, q.To), q.Offset, q.Limit)
	out := make([]timeseries.Swap, 0, len(grid))
	for _, ts := range grid {
		side := "buy"
		if ts/int64(p.step/time.Second)%2 == 0 {
			side = "sell"
		}
		price := priceAt(q.Chain, q.Address, ts)
		out = append(out, timeseries.Swap{
			ID:          fmt.Sprintf("0x%08x:0", uint32(ts)),
			Time:        ts,
			TxHash:      fmt.Sprintf("0x%08x", uint32(ts)),
			Side:        side,
			Price:       price,
			AmountBase:  10,
			AmountQuote: 10 * price,
		})
	}
	return out, nil
}

var _ upstream.Provider = (*Provider)(nil)

package dexscan

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

const (
	defaultProviderTimeout = 30 * time.Second
	spotCacheTTL           = 15 * time.Second
)

// Provider adapts the Dexscan client to the generic upstream.Provider
// contract. Spot prices are held in a short-lived in-process cache so bursts
// of lookups for the same token cost one upstream call.
type Provider struct {
	client     *Client
	timeout    time.Duration
	providerID string

	cacheMu sync.RWMutex
	spots   map[string]cachedSpot
}

type cachedSpot struct {
	Price   float64
	Fetched time.Time
}

type providerConfig struct {
	timeout      time.Duration
	clientConfig []Option
}

// ProviderOption customises the Dexscan provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying Dexscan client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// NewProvider constructs a Dexscan market data provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:  NewClient(cfg.clientConfig...),
		timeout: cfg.timeout,
		spots:   make(map[string]cachedSpot),
	}
}

func init() {
	upstream.RegisterProvider("dexscan", func(name string, cfg *upstream.ProviderConfig) (upstream.Provider, error) {
		clientOptions := []Option{
			WithLimiter(cfg.RateLimit.Limiter()),
			WithRetrier(upstream.NewRetrier(cfg.Retry())),
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, WithBaseURL(cfg.BaseURL))
		}
		if cfg.APIKey != "" {
			clientOptions = append(clientOptions, WithAPIKey(cfg.APIKey))
		}
		opts := []ProviderOption{WithClientOptions(clientOptions...)}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		provider := NewProvider(opts...)
		provider.providerID = name
		return provider, nil
	})
}

// Name implements upstream.Provider.
func (p *Provider) Name() string {
	if strings.TrimSpace(p.providerID) != "" {
		return p.providerID
	}
	return "dexscan"
}

// SpotPrice implements upstream.Provider.
func (p *Provider) SpotPrice(ctx context.Context, chain, address string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	if price, ok := p.loadSpot(chain, address); ok {
		return price, nil
	}
	data, err := p.client.Price(ctx, chain, address)
	if err != nil {
		return 0, err
	}
	p.storeSpot(chain, address, data.Value)
	return data.Value, nil
}

// PricePage implements upstream.Provider.
func (p *Provider) PricePage(ctx context.Context, q upstream.Query) ([]timeseries.PricePoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	items, err := p.client.PriceHistory(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]timeseries.PricePoint, 0, len(items))
	for _, it := range items {
		out = append(out, timeseries.PricePoint{
			ID:    strconv.FormatInt(it.UnixTime, 10),
			Time:  it.UnixTime,
			Price: it.Value,
		})
	}
	return out, nil
}

// CandlePage implements upstream.Provider.
func (p *Provider) CandlePage(ctx context.Context, q upstream.Query) ([]timeseries.Candle, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	items, err := p.client.OHLCV(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]timeseries.Candle, 0, len(items))
	for _, it := range items {
		out = append(out, timeseries.Candle{
			ID:     strconv.FormatInt(it.UnixTime, 10),
			Time:   it.UnixTime,
			Open:   it.Open,
			High:   it.High,
			Low:    it.Low,
			Close:  it.Close,
			Volume: it.Volume,
		})
	}
	return out, nil
}

// SwapPage implements upstream.Provider.
func (p *Provider) SwapPage(ctx context.Context, q upstream.Query) ([]timeseries.Swap, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	items, err := p.client.Trades(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]timeseries.Swap, 0, len(items))
	for _, it := range items {
		out = append(out, timeseries.Swap{
			ID:          fmt.Sprintf("%s:%d", it.TxHash, it.InnerIndex),
			Time:        it.BlockUnixTime,
			TxHash:      it.TxHash,
			Side:        strings.ToLower(it.Side),
			Price:       it.PriceUSD,
			AmountBase:  it.AmountBase,
			AmountQuote: it.AmountQuote,
			Wallet:      it.Owner,
		})
	}
	return out, nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}

func spotKey(chain, address string) string {
	return strings.ToLower(chain) + ":" + strings.ToLower(address)
}

func (p *Provider) loadSpot(chain, address string) (float64, bool) {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	entry, ok := p.spots[spotKey(chain, address)]
	if !ok || time.Since(entry.Fetched) > spotCacheTTL {
		return 0, false
	}
	return entry.Price, true
}

func (p *Provider) storeSpot(chain, address string, price float64) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	if p.spots == nil {
		p.spots = make(map[string]cachedSpot)
	}
	p.spots[spotKey(chain, address)] = cachedSpot{Price: price, Fetched: time.Now()}
}

var _ upstream.Provider = (*Provider)(nil)

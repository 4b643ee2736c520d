// Package timeseries defines the record kinds served by the market data API
// and the pure merge/window algorithms the sync engine runs on them.
package timeseries

// Kind identifies one class of synchronized series.
type Kind string

const (
	KindPrice   Kind = "price"
	KindCandles Kind = "candles"
	KindSwaps   Kind = "swaps"
)

// Record is the constraint shared by every series record kind. RecordID is
// the upstream-unique identity used for dedup; Unix is the record timestamp
// in unix seconds.
type Record interface {
	RecordID() string
	Unix() int64
}

// PricePoint is a single historical price observation for a token.
type PricePoint struct {
	ID    string  `json:"id" msgpack:"id"`
	Time  int64   `json:"time" msgpack:"time"`
	Price float64 `json:"price" msgpack:"price"`
}

func (p PricePoint) RecordID() string { return p.ID }
func (p PricePoint) Unix() int64      { return p.Time }

// Candle is one OHLCV bar for a pool at a fixed resolution. Synthetic marks
// bars generated locally from a spot price rather than reported upstream;
// synthetic bars are never persisted.
type Candle struct {
	ID        string  `json:"id" msgpack:"id"`
	Time      int64   `json:"time" msgpack:"time"`
	Open      float64 `json:"open" msgpack:"open"`
	High      float64 `json:"high" msgpack:"high"`
	Low       float64 `json:"low" msgpack:"low"`
	Close     float64 `json:"close" msgpack:"close"`
	Volume    float64 `json:"volume" msgpack:"volume"`
	Synthetic bool    `json:"synthetic,omitempty" msgpack:"synthetic,omitempty"`
}

func (c Candle) RecordID() string { return c.ID }
func (c Candle) Unix() int64      { return c.Time }

// Swap is one executed trade against a pool.
type Swap struct {
	ID          string  `json:"id" msgpack:"id"`
	Time        int64   `json:"time" msgpack:"time"`
	TxHash      string  `json:"txHash" msgpack:"txHash"`
	Side        string  `json:"side" msgpack:"side"` // buy | sell
	Price       float64 `json:"price" msgpack:"price"`
	AmountBase  float64 `json:"amountBase" msgpack:"amountBase"`
	AmountQuote float64 `json:"amountQuote" msgpack:"amountQuote"`
	Wallet      string  `json:"wallet,omitempty" msgpack:"wallet,omitempty"`
}

func (s Swap) RecordID() string { return s.ID }
func (s Swap) Unix() int64      { return s.Time }

package seriesync

import (
	"strconv"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
)

// maxSyntheticBars caps how many placeholder bars one response can carry;
// when the requested window holds more grid points than this, the newest
// bars win.
const maxSyntheticBars = 1000

// FlatCandles manufactures placeholder bars for a pool that has a live spot
// price but no trade history yet. Every bar repeats the same price with
// zero volume and carries the Synthetic flag, so consumers can always tell
// it apart from market data. The result is served as is and never
// persisted.
func FlatCandles(price float64, from, to int64, step time.Duration) []timeseries.Candle {
	stepSec := int64(step / time.Second)
	if stepSec <= 0 || price <= 0 || to < from || to <= 0 {
		return nil
	}
	first := (from + stepSec - 1) / stepSec * stepSec
	if first < 0 {
		first = 0
	}
	if first > to {
		return nil
	}
	if n := (to-first)/stepSec + 1; n > maxSyntheticBars {
		first += (n - maxSyntheticBars) * stepSec
	}
	out := make([]timeseries.Candle, 0, (to-first)/stepSec+1)
	for ts := first; ts <= to; ts += stepSec {
		out = append(out, timeseries.Candle{
			ID:        strconv.FormatInt(ts, 10),
			Time:      ts,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    0,
			Synthetic: true,
		})
	}
	return out
}

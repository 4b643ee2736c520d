package timeseries

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var resolutions = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// ParseResolution maps a candle resolution label to its bar duration.
func ParseResolution(s string) (time.Duration, error) {
	d, ok := resolutions[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unsupported resolution %q (supported: %s)", s, strings.Join(Resolutions(), ", "))
	}
	return d, nil
}

// Resolutions lists the supported candle resolution labels, shortest first.
func Resolutions() []string {
	out := make([]string, 0, len(resolutions))
	for label := range resolutions {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return resolutions[out[i]] < resolutions[out[j]] })
	return out
}

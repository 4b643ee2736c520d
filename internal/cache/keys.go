package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/internal/config"
)

// Namespace is the Redis key prefix for the aggtrade application.
const Namespace = "aggtrade"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLFreshness TTLClass = "freshness"
	TTLRetention TTLClass = "retention"
	TTLLock      TTLClass = "lock"
	TTLSpot      TTLClass = "spot"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Freshness time.Duration
	Retention time.Duration
	Lock      time.Duration
	Spot      time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Freshness: durationOrDefault(cfg.Freshness, 5*time.Minute),
		Retention: durationOrDefault(cfg.Retention, 365*24*time.Hour),
		Lock:      durationOrDefault(cfg.Lock, 2*time.Minute),
		Spot:      durationOrDefault(cfg.Spot, 30*time.Second),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLFreshness:
		return t.Freshness
	case TTLRetention:
		return t.Retention
	case TTLLock:
		return t.Lock
	case TTLSpot:
		return t.Spot
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class, useful for half/double TTL variants.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Series Keys ------------------------------------------------------------

// SeriesKey addresses one synchronized record series. The resolution part is
// only present for candle series; formatKey drops empty parts so price and
// swap keys stay flat.
func SeriesKey(kind, chain, address, resolution string) string {
	return formatKey("series", kind, strings.ToLower(chain), strings.ToLower(address), strings.ToLower(resolution))
}

// SyncLockKey guards one series against concurrent refreshes.
func SyncLockKey(kind, chain, address, resolution string) string {
	return formatKey("lock", "sync", kind, strings.ToLower(chain), strings.ToLower(address), strings.ToLower(resolution))
}

// SpotPriceKey stores the latest spot price for a token.
func SpotPriceKey(chain, address string) string {
	return formatKey("price", "spot", strings.ToLower(chain), strings.ToLower(address))
}

// --- Warmer Keys ------------------------------------------------------------

// WarmerLastRunKey records when the background warmer last completed.
func WarmerLastRunKey() string {
	return formatKey("warmer", "last_run")
}

// WarmerTargetKey marks a series as warmed during one sweep.
func WarmerTargetKey(kind, chain, address, resolution string) string {
	return formatKey("warmer", "done", kind, strings.ToLower(chain), strings.ToLower(address), strings.ToLower(resolution))
}

// --- TTL Helpers ------------------------------------------------------------

// SeriesTTL returns the long retention TTL series payloads are stored with.
func SeriesTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLRetention)
}

// FreshnessWindow returns how long a stored series is served without a
// refresh attempt. Independent of SeriesTTL.
func FreshnessWindow(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLFreshness)
}

// SyncLockTTL returns the expiry of a sync lock. It bounds how long a crashed
// holder can block other refreshes.
func SyncLockTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLock)
}

// SpotPriceTTL returns the TTL for cached spot prices.
func SpotPriceTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLSpot)
}

// WarmerGuardTTL spaces warmer sweeps; half the freshness window keeps the
// warmer a step ahead of serving traffic.
func WarmerGuardTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLFreshness, 0.5)
}

// FormatCacheKey is exported for dynamic key construction when patterns
// are not covered by helpers.
func FormatCacheKey(parts ...string) string {
	return formatKey(parts...)
}

// BuildKeyWithSuffix appends an arbitrary suffix to an existing key.
func BuildKeyWithSuffix(baseKey, suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		return baseKey
	}
	return fmt.Sprintf("%s:%s", baseKey, strings.TrimSpace(suffix))
}

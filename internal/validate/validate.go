// Package validate checks request parameters before they reach the sync
// engine. Bad input fails here with a typed error the HTTP layer maps to a
// client error, so upstream providers never see malformed queries.
package validate

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
)

// MaxWindowDays bounds the requested window; it matches the longest series
// retention.
const MaxWindowDays = 365

// Error marks a client-fixable input problem.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validate: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

// evmChains lists supported chains whose addresses follow the 0x hex form.
var evmChains = map[string]bool{
	"ethereum":  true,
	"polygon":   true,
	"bsc":       true,
	"arbitrum":  true,
	"base":      true,
	"optimism":  true,
	"avalanche": true,
}

// solanaChains lists supported chains with base58 account addresses.
var solanaChains = map[string]bool{
	"solana": true,
}

// Chain normalizes and whitelists a chain name.
func Chain(chain string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(chain))
	if c == "" {
		return "", invalid("chain", "is required")
	}
	if !evmChains[c] && !solanaChains[c] {
		return "", invalid("chain", fmt.Sprintf("%q is not supported", c))
	}
	return c, nil
}

// Address validates a token or pool address for the given chain and returns
// its canonical form: EIP-55 checksummed for EVM chains, verbatim for
// solana.
func Address(chain, address string) (string, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return "", invalid("address", "is required")
	}
	switch {
	case evmChains[chain]:
		if !common.IsHexAddress(addr) {
			return "", invalid("address", fmt.Sprintf("%q is not a valid %s address", addr, chain))
		}
		return common.HexToAddress(addr).Hex(), nil
	case solanaChains[chain]:
		if !isBase58(addr) || len(addr) < 32 || len(addr) > 44 {
			return "", invalid("address", fmt.Sprintf("%q is not a valid %s address", addr, chain))
		}
		return addr, nil
	default:
		return "", invalid("chain", fmt.Sprintf("%q is not supported", chain))
	}
}

// Resolution checks a candle/price resolution against the supported table.
// An empty value falls back to fallback.
func Resolution(res, fallback string) (string, error) {
	r := strings.ToLower(strings.TrimSpace(res))
	if r == "" {
		r = fallback
	}
	if _, err := timeseries.ParseResolution(r); err != nil {
		return "", invalid("resolution", fmt.Sprintf("%q is not supported", r))
	}
	return r, nil
}

// Days bounds the requested window size. Zero falls back to fallback.
func Days(days, fallback int) (int, error) {
	if days == 0 {
		days = fallback
	}
	if days < 1 {
		return 0, invalid("days", "must be at least 1")
	}
	if days > MaxWindowDays {
		return 0, invalid("days", fmt.Sprintf("must be at most %d", MaxWindowDays))
	}
	return days, nil
}

// base58 alphabet: no 0, O, I or l.
func isBase58(s string) bool {
	for _, r := range s {
		switch {
		case r >= '1' && r <= '9':
		case r >= 'A' && r <= 'H':
		case r >= 'J' && r <= 'N':
		case r >= 'P' && r <= 'Z':
		case r >= 'a' && r <= 'k':
		case r >= 'm' && r <= 'z':
		default:
			return false
		}
	}
	return len(s) > 0
}

// Dev helper for onboarding a new token or pool. Normalizes the address the
// same way the API will, prints the cache keys the series will live under,
// then probes a locally running API instance for the resource.
//
// Usage:
//
//	go run scripts/check_addr.go <chain> <address>
//
// AGGTRADE_API_URL overrides the probed base URL (default http://127.0.0.1:8888).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cache"
	"github.com/incepthink/aggtrade-backend-sub003/internal/config"
	"github.com/incepthink/aggtrade-backend-sub003/internal/validate"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/confkit"

	// Provider registration.
	_ "github.com/incepthink/aggtrade-backend-sub003/pkg/upstream/dexscan"
	_ "github.com/incepthink/aggtrade-backend-sub003/pkg/upstream/sim"
)

func fetchJSON(url string) (map[string]any, string, error) {
	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{"raw": string(b)}, resp.Status, nil
	}
	return out, resp.Status, nil
}

func main() {
	confkit.LoadDotenvOnce()

	if len(os.Args) < 3 {
		fmt.Println("usage: go run scripts/check_addr.go <chain> <address>")
		os.Exit(1)
	}

	chain, err := validate.Chain(os.Args[1])
	if err != nil {
		fmt.Printf("chain rejected: %v\n", err)
		os.Exit(1)
	}
	address, err := validate.Address(chain, os.Args[2])
	if err != nil {
		fmt.Printf("address rejected: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("Chain:              %s\n", chain)
	fmt.Printf("Normalized address: %s\n", address)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("Cache keys:")
	fmt.Printf("  price series (15m): %s\n", cache.SeriesKey("price", chain, address, "15m"))
	fmt.Printf("  candle series (1h): %s\n", cache.SeriesKey("candles", chain, address, "1h"))
	fmt.Printf("  swap series:        %s\n", cache.SeriesKey("swaps", chain, address, ""))
	fmt.Printf("  spot price:         %s\n", cache.SpotPriceKey(chain, address))
	fmt.Println()

	providers, def := config.MustBuildUpstreamProviders()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	if def == "" && len(names) == 1 {
		def = names[0]
	}
	fmt.Printf("Upstream providers: %s (default %s)\n", strings.Join(names, ", "), def)
	fmt.Println()

	base := os.Getenv("AGGTRADE_API_URL")
	if base == "" {
		base = "http://127.0.0.1:8888"
	}
	fmt.Printf("Probing API at %s\n\n", base)

	fmt.Println("--- SPOT PRICE ---")
	spotURL := fmt.Sprintf("%s/api/v1/chains/%s/tokens/%s/price", base, chain, address)
	if m, status, err := fetchJSON(spotURL); err == nil {
		fmt.Printf("Status: %s\n", status)
		if data, ok := m["data"]; ok {
			fmt.Printf("Data: %v\n", data)
		}
		if e, ok := m["error"]; ok {
			fmt.Printf("Error: %v\n", e)
		}
	} else {
		fmt.Printf("Error: %v\n", err)
	}

	fmt.Println("\n--- PRICE HISTORY (1 day) ---")
	histURL := fmt.Sprintf("%s/api/v1/chains/%s/tokens/%s/price-history?days=1", base, chain, address)
	if m, status, err := fetchJSON(histURL); err == nil {
		fmt.Printf("Status: %s\n", status)
		if data, ok := m["data"].(map[string]any); ok {
			if meta, ok := data["metadata"]; ok {
				fmt.Printf("Metadata: %v\n", meta)
			}
			if records, ok := data["records"].([]any); ok {
				fmt.Printf("Records: %d\n", len(records))
			}
		}
		if e, ok := m["error"]; ok {
			fmt.Printf("Error: %v\n", e)
		}
	} else {
		fmt.Printf("Error: %v\n", err)
	}
}

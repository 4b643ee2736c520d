package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/incepthink/aggtrade-backend-sub003/pkg/upstream/sim"
)

func writeMainConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "aggtrade.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeMainConfig(t, dir, `
Name: aggtrade-api
Host: 0.0.0.0
Port: 8889
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsTestEnv() {
		t.Fatalf("expected test env by default, got %q", cfg.Env)
	}
	if cfg.TTL.Freshness != 300 || cfg.TTL.Retention != 31536000 {
		t.Fatalf("unexpected ttl defaults: %+v", cfg.TTL)
	}
	if cfg.TTL.Lock != 120 || cfg.TTL.Spot != 30 {
		t.Fatalf("unexpected lock/spot defaults: %+v", cfg.TTL)
	}
	if cfg.Sync.LookbackDays != 30 {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Sync.SynthesizeCandles {
		t.Fatalf("synthetic candles must be opt-in")
	}
	if cfg.BaseDir() != dir {
		t.Fatalf("baseDir = %q, want %q", cfg.BaseDir(), dir)
	}
}

func TestLoadWithUpstreamSection(t *testing.T) {
	dir := t.TempDir()
	upstreamYAML := []byte(`
default: sim
providers:
  sim:
    type: sim
`)
	if err := os.WriteFile(filepath.Join(dir, "upstream.yaml"), upstreamYAML, 0o600); err != nil {
		t.Fatalf("write upstream.yaml: %v", err)
	}
	path := writeMainConfig(t, dir, `
Name: aggtrade-api
Host: 0.0.0.0
Port: 8889
Upstream:
  File: upstream.yaml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.Value == nil {
		t.Fatalf("upstream section not hydrated")
	}
	if cfg.Upstream.Value.Default != "sim" {
		t.Fatalf("unexpected upstream default: %q", cfg.Upstream.Value.Default)
	}
}

func TestLoadWarmTargets(t *testing.T) {
	dir := t.TempDir()
	path := writeMainConfig(t, dir, `
Name: aggtrade-api
Host: 0.0.0.0
Port: 8889
Sync:
  Warm:
    - Kind: price
      Chain: ethereum
      Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
      Resolution: 15m
    - Kind: swaps
      Chain: ethereum
      Address: "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sync.Warm) != 2 {
		t.Fatalf("expected 2 warm targets, got %d", len(cfg.Sync.Warm))
	}
	if cfg.Sync.Warm[0].Kind != "price" || cfg.Sync.Warm[0].Resolution != "15m" {
		t.Fatalf("unexpected first warm target: %+v", cfg.Sync.Warm[0])
	}
	if cfg.Sync.Warm[1].Kind != "swaps" || cfg.Sync.Warm[1].Resolution != "" {
		t.Fatalf("unexpected second warm target: %+v", cfg.Sync.Warm[1])
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env: "dev",
			TTL: CacheTTL{Freshness: 300, Retention: 31536000, Lock: 120, Spot: 30},
			Sync: SyncConf{
				LookbackDays: 30,
			},
		}
	}

	t.Run("accepts valid config", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects unknown env", func(t *testing.T) {
		cfg := base()
		cfg.Env = "staging"
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "env") {
			t.Fatalf("expected env error, got %v", err)
		}
	})

	t.Run("rejects retention shorter than freshness", func(t *testing.T) {
		cfg := base()
		cfg.TTL.Retention = 60
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "retention") {
			t.Fatalf("expected retention error, got %v", err)
		}
	})

	t.Run("rejects non-positive lookback", func(t *testing.T) {
		cfg := base()
		cfg.Sync.LookbackDays = 0
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "lookback") {
			t.Fatalf("expected lookback error, got %v", err)
		}
	})
}

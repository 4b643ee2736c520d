package upstream

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/confkit"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/ratelimit"
)

// Config describes the set of upstream providers available to the application.
type Config struct {
	Default   string                     `yaml:"default"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents configuration for a single upstream provider.
type ProviderConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Mode    string `yaml:"mode"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`

	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoffRaw string        `yaml:"retry_backoff"`
	RetryBackoff    time.Duration `yaml:"-"`

	PageSize     int           `yaml:"page_size"`
	PageDelayRaw string        `yaml:"page_delay"`
	PageDelay    time.Duration `yaml:"-"`
	MaxRecords   int           `yaml:"max_records"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is the yaml shape of a provider's request budget.
type RateLimitConfig struct {
	Requests      int    `yaml:"requests"`
	IntervalRaw   string `yaml:"interval"`
	Burst         int    `yaml:"burst"`
	MinSpacingRaw string `yaml:"min_spacing"`
	Concurrency   int    `yaml:"concurrency"`

	Interval   time.Duration `yaml:"-"`
	MinSpacing time.Duration `yaml:"-"`
}

// Limiter builds the process-wide limiter for this provider.
func (r RateLimitConfig) Limiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.Config{
		Requests:    r.Requests,
		Interval:    r.Interval,
		Burst:       r.Burst,
		MinSpacing:  r.MinSpacing,
		Concurrency: r.Concurrency,
	})
}

// Retry builds the retry settings for this provider.
func (p *ProviderConfig) Retry() RetryConfig {
	return RetryConfig{MaxRetries: p.MaxRetries, Backoff: p.RetryBackoff}
}

// ProviderBuilder constructs a Provider from configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (Provider, error)

var (
	providerRegistry   = make(map[string]ProviderBuilder)
	providerRegistryMu sync.RWMutex
)

// RegisterProvider registers an upstream provider constructor.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	providerRegistryMu.Lock()
	defer providerRegistryMu.Unlock()
	providerRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupProviderBuilder(typeName string) (ProviderBuilder, bool) {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	builder, ok := providerRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upstream config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads upstream configuration from the default project location and panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/upstream.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upstream config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal upstream config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	for name, provider := range c.Providers {
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[name] = provider
		}
		provider.expandEnv()
		if err := provider.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.APIKey = strings.TrimSpace(os.ExpandEnv(p.APIKey))
	p.Mode = strings.TrimSpace(os.ExpandEnv(p.Mode))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
	p.RetryBackoffRaw = strings.TrimSpace(os.ExpandEnv(p.RetryBackoffRaw))
	p.PageDelayRaw = strings.TrimSpace(os.ExpandEnv(p.PageDelayRaw))
	p.RateLimit.IntervalRaw = strings.TrimSpace(os.ExpandEnv(p.RateLimit.IntervalRaw))
	p.RateLimit.MinSpacingRaw = strings.TrimSpace(os.ExpandEnv(p.RateLimit.MinSpacingRaw))
}

func (p *ProviderConfig) parseDurations(name string) error {
	parse := func(field, raw string, dst *time.Duration) error {
		if raw == "" {
			return nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("upstream provider %s: invalid %s %q: %w", name, field, raw, err)
		}
		if d <= 0 {
			return fmt.Errorf("upstream provider %s: %s must be positive, got %s", name, field, d)
		}
		*dst = d
		return nil
	}
	if err := parse("timeout", p.TimeoutRaw, &p.Timeout); err != nil {
		return err
	}
	if err := parse("retry_backoff", p.RetryBackoffRaw, &p.RetryBackoff); err != nil {
		return err
	}
	if err := parse("page_delay", p.PageDelayRaw, &p.PageDelay); err != nil {
		return err
	}
	if err := parse("rate_limit.interval", p.RateLimit.IntervalRaw, &p.RateLimit.Interval); err != nil {
		return err
	}
	return parse("rate_limit.min_spacing", p.RateLimit.MinSpacingRaw, &p.RateLimit.MinSpacing)
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("upstream config: providers cannot be empty")
	}
	if c.Default != "" {
		if _, ok := c.Providers[c.Default]; !ok {
			return fmt.Errorf("upstream config: default provider %q not defined", c.Default)
		}
	}
	for name, provider := range c.Providers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("upstream config: provider name cannot be empty")
		}
		if err := provider.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) validate(name string) error {
	if p == nil {
		return fmt.Errorf("upstream config: provider %s is nil", name)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf("upstream config: provider %s must specify type", name)
	}
	if _, ok := lookupProviderBuilder(p.Type); !ok {
		return fmt.Errorf("upstream config: provider %s has unsupported type %q", name, p.Type)
	}
	if p.PageSize < 0 || p.MaxRecords < 0 {
		return fmt.Errorf("upstream config: provider %s page_size and max_records must not be negative", name)
	}
	return nil
}

// BuildProviders instantiates upstream providers according to configuration.
func (c *Config) BuildProviders() (map[string]Provider, error) {
	result := make(map[string]Provider, len(c.Providers))
	for name, providerCfg := range c.Providers {
		builder, ok := lookupProviderBuilder(providerCfg.Type)
		if !ok {
			return nil, fmt.Errorf("upstream provider %s: unsupported type %q", name, providerCfg.Type)
		}
		provider, err := builder(name, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("upstream provider %s: %w", name, err)
		}
		result[name] = provider
	}
	return result, nil
}

// DefaultProvider returns the configured default provider from built.
func (c *Config) DefaultProvider(built map[string]Provider) (Provider, error) {
	name := c.Default
	if name == "" && len(built) == 1 {
		for n := range built {
			name = n
		}
	}
	p, ok := built[name]
	if !ok {
		return nil, fmt.Errorf("upstream config: default provider %q not built", name)
	}
	return p, nil
}

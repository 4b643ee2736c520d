package config

import (
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

// MustLoadUpstream loads etc/upstream.yaml from the project root and panics
// on error. It isolates the provider registry so tools and tests that only
// need upstream access skip the full application config.
func MustLoadUpstream() *upstream.Config {
	return upstream.MustLoad()
}

// MustBuildUpstreamProviders loads upstream config from the default path and
// builds provider instances; returns the map and default provider name.
func MustBuildUpstreamProviders() (map[string]upstream.Provider, string) {
	cfg := MustLoadUpstream()
	providers, err := cfg.BuildProviders()
	if err != nil {
		panic(err)
	}
	return providers, cfg.Default
}

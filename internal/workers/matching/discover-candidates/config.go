// internal/workers/matching/discover-candidates/config.go
package discovercandidates

import (
	"time"

	"bdmatch-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Floor is the minimum overall score a candidate needs to be retained.
	Floor int
	// Limit caps the number of candidates returned to the process.
	Limit int
	// Concurrency bounds how many partners are scored at once.
	Concurrency int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		Floor:       50,
		Limit:       50,
		Concurrency: 8,
	}
}

// LoadConfigFrom derives the worker config from the service-level
// matching configuration.
func LoadConfigFrom(matching config.MatchingConfig) *Config {
	cfg := LoadConfig()
	if matching.DiscoveryFloor > 0 {
		cfg.Floor = matching.DiscoveryFloor
	}
	if matching.DiscoveryLimit > 0 {
		cfg.Limit = matching.DiscoveryLimit
	}
	if matching.DiscoveryConcurrency > 0 {
		cfg.Concurrency = matching.DiscoveryConcurrency
	}
	return cfg
}

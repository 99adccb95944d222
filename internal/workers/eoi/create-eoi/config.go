// internal/workers/eoi/create-eoi/config.go
package createeoi

import (
	"time"

	"bdmatch-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// DefaultValidityDays sizes the validity window stamped when an EOI
	// is sent without an explicit one.
	DefaultValidityDays int
	// DiscoveryMessageName is the workflow message published to trigger
	// candidate discovery for company-initiated EOIs.
	DiscoveryMessageName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:              30 * time.Second,
		DefaultValidityDays:  30,
		DiscoveryMessageName: "eoi-discovery-requested",
	}
}

// LoadConfigFrom derives the worker config from the service-level EOI
// configuration.
func LoadConfigFrom(eoi config.EoiConfig) *Config {
	cfg := LoadConfig()
	if eoi.DefaultValidityDays > 0 {
		cfg.DefaultValidityDays = eoi.DefaultValidityDays
	}
	if eoi.DiscoveryMessageName != "" {
		cfg.DiscoveryMessageName = eoi.DiscoveryMessageName
	}
	return cfg
}

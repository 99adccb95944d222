// internal/workers/eoi/respond-eoi/config.go
package respondeoi

import (
	"time"

	"bdmatch-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// MinMessageLength is the minimum length of a response message.
	MinMessageLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		MinMessageLength: 10,
	}
}

// LoadConfigFrom derives the worker config from the service-level EOI
// configuration.
func LoadConfigFrom(eoi config.EoiConfig) *Config {
	cfg := LoadConfig()
	if eoi.MinResponseMessageLength > 0 {
		cfg.MinMessageLength = eoi.MinResponseMessageLength
	}
	return cfg
}

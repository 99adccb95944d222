// internal/workers/matching/calculate-company-match/config.go
package calculatecompanymatch

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

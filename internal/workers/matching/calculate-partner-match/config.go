// internal/workers/matching/calculate-partner-match/config.go
package calculatepartnermatch

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

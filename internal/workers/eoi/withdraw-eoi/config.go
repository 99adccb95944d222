// internal/workers/eoi/withdraw-eoi/config.go
package withdraweoi

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// internal/workers/eoi/search-open-eois/config.go
package searchopeneois

import "time"

type Config struct {
	Timeout time.Duration
	// DefaultPageSize is used when the input names no page size.
	DefaultPageSize int
	// MaxPageSize caps the page size regardless of input.
	MaxPageSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

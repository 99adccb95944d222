// internal/workers/communication/send-eoi-notification/config.go
package sendeoinotification

import (
	"time"

	"bdmatch-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   false,
		FromEmail:    "noreply@bdmatch.io",
	}
}

// LoadConfigFrom derives the worker config from the service-level
// notification configuration.
func LoadConfigFrom(n config.NotificationConfig) *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = n.Email.Enabled
	cfg.SMSEnabled = n.SMS.Enabled
	if n.Email.FromEmail != "" {
		cfg.FromEmail = n.Email.FromEmail
	}
	return cfg
}

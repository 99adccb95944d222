// internal/workers/communication/send-eoi-notification/models.go
package sendeoinotification

import "time"

type Input struct {
	// Channel is "email" or "sms".
	Channel string `json:"channel"`
	// EventType names the EOI lifecycle event being announced, e.g.
	// eoi_sent, eoi_accepted, eoi_rejected, eoi_withdrawn, eoi_expired.
	EventType string `json:"eventType"`
	EoiID     string `json:"eoiId"`
	EoiTitle  string `json:"eoiTitle,omitempty"`

	ToEmail string `json:"toEmail,omitempty"`
	ToPhone string `json:"toPhone,omitempty"`
	// Message overrides the generated body when set.
	Message string `json:"message,omitempty"`
}

type Output struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
	// Skipped is true when the channel is disabled by configuration.
	Skipped bool `json:"skipped,omitempty"`
}

// internal/workers/eoi/send-eoi/models.go
package sendeoi

type Input struct {
	AccessToken string `json:"accessToken"`
	EoiID       string `json:"eoiId"`
	// ValidityDays overrides the configured validity window.
	ValidityDays int `json:"validityDays,omitempty"`
}

type Output struct {
	EoiID              string `json:"eoiId"`
	Status             string `json:"status"`
	ValidFrom          string `json:"validFrom"`
	ExpiresAt          string `json:"expiresAt"`
	DiscoveryTriggered bool   `json:"discoveryTriggered"`
}

// internal/workers/eoi/create-eoi/models.go
package createeoi

type Input struct {
	AccessToken   string `json:"accessToken"`
	InitiatorType string `json:"initiatorType"`
	// BdPartnerID and CompanyID name the two sides of the EOI. The
	// initiator's own side is always taken from the verified identity,
	// never from the payload.
	BdPartnerID string `json:"bdPartnerId,omitempty"`
	CompanyID   string `json:"companyId,omitempty"`
	ProductID   string `json:"productId,omitempty"`

	EoiType     string `json:"eoiType"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	ProposedCommissionRate *float64 `json:"proposedCommissionRate,omitempty"`
	ExpectedDealSize       *float64 `json:"expectedDealSize,omitempty"`
	Exclusivity            bool     `json:"exclusivity,omitempty"`
	Timeline               string   `json:"timeline,omitempty"`

	TargetRegions       []string `json:"targetRegions,omitempty"`
	TargetIndustries    []string `json:"targetIndustries,omitempty"`
	TargetCustomerTypes []string `json:"targetCustomerTypes,omitempty"`

	// SendImmediately skips the draft stage and creates the EOI as sent
	// with a stamped validity window.
	SendImmediately bool `json:"sendImmediately,omitempty"`
	// ValidityDays overrides the configured validity window when sending
	// immediately.
	ValidityDays int `json:"validityDays,omitempty"`
}

type Output struct {
	EoiID              string `json:"eoiId"`
	Status             string `json:"status"`
	InitiatorType      string `json:"initiatorType"`
	BdPartnerID        string `json:"bdPartnerId,omitempty"`
	CompanyID          string `json:"companyId,omitempty"`
	ExpiresAt          string `json:"expiresAt,omitempty"`
	CreatedAt          string `json:"createdAt"`
	DiscoveryTriggered bool   `json:"discoveryTriggered"`
}

// internal/workers/eoi/update-eoi/models.go
package updateeoi

import "time"

type Input struct {
	AccessToken string `json:"accessToken"`
	EoiID       string `json:"eoiId"`

	// MarkUnderReview moves an open EOI into under_review instead of
	// patching draft fields. Only the counterparty may do this.
	MarkUnderReview bool `json:"markUnderReview,omitempty"`

	// Draft patch fields. A nil pointer leaves the stored value alone.
	Title                  *string    `json:"title,omitempty"`
	Description            *string    `json:"description,omitempty"`
	ProposedCommissionRate *float64   `json:"proposedCommissionRate,omitempty"`
	ExpectedDealSize       *float64   `json:"expectedDealSize,omitempty"`
	Exclusivity            *bool      `json:"exclusivity,omitempty"`
	Timeline               *string    `json:"timeline,omitempty"`
	TargetRegions          []string   `json:"targetRegions,omitempty"`
	TargetIndustries       []string   `json:"targetIndustries,omitempty"`
	TargetCustomerTypes    []string   `json:"targetCustomerTypes,omitempty"`
	ValidUntil             *time.Time `json:"validUntil,omitempty"`
}

type Output struct {
	EoiID     string `json:"eoiId"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
}

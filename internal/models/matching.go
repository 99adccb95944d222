// internal/models/matching.go
package models

import "time"

// MatchType is the decision tier assigned to a computed score.
type MatchType string

const (
	MatchTypeAuto    MatchType = "auto"
	MatchTypePartial MatchType = "partial"
	MatchTypeManual  MatchType = "manual"
)

// MatchingScore is a computed, derived, expiring record. Exactly one of
// RequirementID / PreferenceID is set: a score is always one-directional,
// partner-against-requirement or company-against-preference. Rows are
// insert-only; a recompute appends a new row and the old one goes stale
// once ExpiresAt passes.
type MatchingScore struct {
	ID            string `json:"id"`
	BdPartnerID   string `json:"bdPartnerId"`
	CompanyID     string `json:"companyId"`
	RequirementID string `json:"requirementId,omitempty"`
	PreferenceID  string `json:"preferenceId,omitempty"`

	IndustryScore     int `json:"industryScore"`
	RegionScore       int `json:"regionScore"`
	ExperienceScore   int `json:"experienceScore,omitempty"`
	AvailabilityScore int `json:"availabilityScore,omitempty"`
	BusinessTypeScore int `json:"businessTypeScore,omitempty"`
	CommissionScore   int `json:"commissionScore"`

	OverallScore  int       `json:"overallScore"`
	MatchType     MatchType `json:"matchType"`
	IsRecommended bool      `json:"isRecommended"`

	CalculatedAt time.Time `json:"calculatedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// IsExpired reports whether the score is stale at the given instant.
// Stale scores may still be displayed but must not gate recommendations;
// the remediation is recomputation.
func (s *MatchingScore) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

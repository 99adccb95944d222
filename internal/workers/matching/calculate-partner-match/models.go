// internal/workers/matching/calculate-partner-match/models.go
package calculatepartnermatch

type Input struct {
	BdPartnerID   string `json:"bdPartnerId"`
	RequirementID string `json:"requirementId"`
	// Threshold overrides the requirement's own autoMatchingScore for the
	// recommendation decision.
	Threshold *int `json:"threshold,omitempty"`
	// Force skips reuse of a still-valid persisted score.
	Force bool `json:"force,omitempty"`
}

type DimensionScores struct {
	Industry     int `json:"industry"`
	Region       int `json:"region"`
	Experience   int `json:"experience"`
	Availability int `json:"availability"`
	Commission   int `json:"commission"`
}

type Output struct {
	ScoreID       string          `json:"scoreId"`
	BdPartnerID   string          `json:"bdPartnerId"`
	CompanyID     string          `json:"companyId"`
	OverallScore  int             `json:"overallScore"`
	MatchType     string          `json:"matchType"`
	IsRecommended bool            `json:"isRecommended"`
	Dimensions    DimensionScores `json:"dimensions"`
	CalculatedAt  string          `json:"calculatedAt"`
	ExpiresAt     string          `json:"expiresAt"`
	// Reused is true when a still-valid persisted score was returned
	// instead of recomputing.
	Reused bool `json:"reused"`
}

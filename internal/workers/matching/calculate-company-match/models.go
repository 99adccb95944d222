// internal/workers/matching/calculate-company-match/models.go
package calculatecompanymatch

type Input struct {
	CompanyID    string `json:"companyId"`
	PreferenceID string `json:"preferenceId"`
	// Threshold overrides the preference's own minMatchingScore for the
	// recommendation decision.
	Threshold *int `json:"threshold,omitempty"`
	// Force skips reuse of a still-valid persisted score.
	Force bool `json:"force,omitempty"`
}

type DimensionScores struct {
	Industry     int `json:"industry"`
	Region       int `json:"region"`
	BusinessType int `json:"businessType"`
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
	Reused        bool            `json:"reused"`
}

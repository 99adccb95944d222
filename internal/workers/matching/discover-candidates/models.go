// internal/workers/matching/discover-candidates/models.go
package discovercandidates

type Input struct {
	CompanyID string `json:"companyId"`
	// RequirementID pins discovery to one requirement. When empty, the
	// company's newest active requirement is used.
	RequirementID string `json:"requirementId,omitempty"`
	// EoiID is set when discovery was triggered by an expression of
	// interest. It is echoed back for correlation and never dereferenced.
	EoiID string `json:"eoiId,omitempty"`
	Limit int    `json:"limit,omitempty"`
	Floor int    `json:"floor,omitempty"`
}

type Candidate struct {
	BdPartnerID   string `json:"bdPartnerId"`
	ScoreID       string `json:"scoreId"`
	OverallScore  int    `json:"overallScore"`
	MatchType     string `json:"matchType"`
	IsRecommended bool   `json:"isRecommended"`
}

type Output struct {
	CompanyID     string      `json:"companyId"`
	RequirementID string      `json:"requirementId,omitempty"`
	EoiID         string      `json:"eoiId,omitempty"`
	Candidates    []Candidate `json:"candidates"`
	Evaluated     int         `json:"evaluated"`
	Retained      int         `json:"retained"`
	// Skipped is true when the company has no active requirement to
	// discover against.
	Skipped bool `json:"skipped"`
}

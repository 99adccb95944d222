// internal/matching/weights.go
package matching

// Tier boundaries and default recommendation thresholds. The weights are
// injected into the aggregator rather than read from package globals so
// alternate weightings stay testable.
const (
	AutoTierFloor    = 90
	PartialTierFloor = 70

	DefaultRequirementThreshold = 75
	DefaultPreferenceThreshold  = 70

	// FixedPartnerCommissionScore is the placeholder commission score for
	// the partner-against-requirement direction. The profile data model
	// does not yet capture partner-side commission flexibility, so the
	// default strategy returns this constant.
	FixedPartnerCommissionScore = 85

	// FixedCompanyCommissionScore is the same placeholder for the
	// company-against-preference direction.
	FixedCompanyCommissionScore = 80
)

// PartnerWeights weight the partner-against-requirement dimensions.
type PartnerWeights struct {
	Industry     float64
	Region       float64
	Experience   float64
	Availability float64
	Commission   float64
}

// CompanyWeights weight the company-against-preference dimensions.
type CompanyWeights struct {
	Industry     float64
	Region       float64
	BusinessType float64
	Commission   float64
}

// DefaultPartnerWeights returns the production weighting for the
// partner-against-requirement direction.
func DefaultPartnerWeights() PartnerWeights {
	return PartnerWeights{
		Industry:     0.30,
		Region:       0.25,
		Experience:   0.20,
		Availability: 0.15,
		Commission:   0.10,
	}
}

// DefaultCompanyWeights returns the production weighting for the
// company-against-preference direction.
func DefaultCompanyWeights() CompanyWeights {
	return CompanyWeights{
		Industry:     0.35,
		Region:       0.25,
		BusinessType: 0.25,
		Commission:   0.15,
	}
}

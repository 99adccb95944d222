// internal/matching/scoring.go
package matching

import (
	"math"

	"bdmatch-workers/internal/models"
)

// Calculator computes per-dimension match scores. All methods are pure:
// same inputs, same outputs, no lookups and no clock.
type Calculator struct {
	commission CommissionStrategy
}

// NewCalculator returns a calculator using the given commission strategy,
// or the fixed-score default when nil.
func NewCalculator(commission CommissionStrategy) *Calculator {
	if commission == nil {
		commission = fixedCommission{}
	}
	return &Calculator{commission: commission}
}

// CommissionStrategy supplies the commission dimension scores. Partner-side
// commission flexibility is not yet modeled in the profile data, so the
// default strategy returns fixed scores; a real formula plugs in here once
// the data exists.
type CommissionStrategy interface {
	PartnerRequirement(partner *models.BdPartnerProfileView, req *models.CompanyRequirement) int
	CompanyPreference(company *models.CompanyProfileView, pref *models.BdPartnerPreference) int
}

type fixedCommission struct{}

func (fixedCommission) PartnerRequirement(*models.BdPartnerProfileView, *models.CompanyRequirement) int {
	return FixedPartnerCommissionScore
}

func (fixedCommission) CompanyPreference(*models.CompanyProfileView, *models.BdPartnerPreference) int {
	return FixedCompanyCommissionScore
}

// IndustryScore scores the partner's industries against the requirement.
// Required industries are a hard gate: non-empty required set with zero
// overlap scores 0 regardless of preferred overlap. Otherwise required
// coverage contributes up to 70 and preferred coverage up to 30.
func (c *Calculator) IndustryScore(partner *models.BdPartnerProfileView, req *models.CompanyRequirement) int {
	return requiredPreferredScore(partner.Industries(), req.RequiredIndustries, req.PreferredIndustries)
}

// RegionScore scores the partner's market-access regions against the
// requirement with the same 70/30 required/preferred structure and hard
// gate as IndustryScore.
func (c *Calculator) RegionScore(partner *models.BdPartnerProfileView, req *models.CompanyRequirement) int {
	return requiredPreferredScore(partner.Regions(), req.RequiredRegions, req.PreferredRegions)
}

// ExperienceScore scores the partner's best expertise years against the
// requirement floor. Meeting the floor always yields at least 50, scaling
// up to 100; a shortfall is penalized linearly.
func (c *Calculator) ExperienceScore(partner *models.BdPartnerProfileView, req *models.CompanyRequirement) int {
	maxExperience := partner.MaxExperienceYears()
	minRequired := req.MinExperienceYears
	if minRequired <= 0 {
		return 100
	}
	if maxExperience >= minRequired {
		score := int(math.Round(float64(maxExperience) / float64(minRequired) * 50.0 + 50.0))
		if score > 100 {
			return 100
		}
		return score
	}
	return int(math.Round(float64(maxExperience) / float64(minRequired) * 100.0))
}

// AvailabilityScore gives full credit on an exact availability match and
// partial credit (not disqualification) on a mismatch. No required
// availability means full credit.
func (c *Calculator) AvailabilityScore(partner *models.BdPartnerProfileView, req *models.CompanyRequirement) int {
	if req.RequiredAvailability == "" {
		return 100
	}
	if partner.Availability == req.RequiredAvailability {
		return 100
	}
	return 50
}

// CommissionScore delegates to the configured strategy.
func (c *Calculator) CommissionScore(partner *models.BdPartnerProfileView, req *models.CompanyRequirement) int {
	return c.commission.PartnerRequirement(partner, req)
}

// PreferenceIndustryScore is the reverse-direction industry lookup:
// excluded industries disqualify, preferred score full, anything else is
// neutral.
func (c *Calculator) PreferenceIndustryScore(company *models.CompanyProfileView, pref *models.BdPartnerPreference) int {
	if containsString(pref.ExcludedIndustries, company.Industry) {
		return 0
	}
	if containsString(pref.PreferredIndustries, company.Industry) {
		return 100
	}
	return 50
}

// PreferenceRegionScore scores the company's region against the partner's
// preferred regions, with remote-capable partners getting elevated credit
// for non-preferred regions.
func (c *Calculator) PreferenceRegionScore(company *models.CompanyProfileView, pref *models.BdPartnerPreference) int {
	if containsString(pref.PreferredRegions, company.Region) {
		return 100
	}
	if pref.CanWorkRemotely {
		return 75
	}
	return 25
}

// PreferenceBusinessTypeScore gives full credit for a preferred company
// type and neutral credit otherwise.
func (c *Calculator) PreferenceBusinessTypeScore(company *models.CompanyProfileView, pref *models.BdPartnerPreference) int {
	if containsString(pref.PreferredCompanyTypes, company.BusinessType) {
		return 100
	}
	return 50
}

// PreferenceCommissionScore delegates to the configured strategy.
func (c *Calculator) PreferenceCommissionScore(company *models.CompanyProfileView, pref *models.BdPartnerPreference) int {
	return c.commission.CompanyPreference(company, pref)
}

// requiredPreferredScore implements the shared 70/30 structure: required
// coverage is mandatory (zero overlap with a non-empty required set gates
// the whole dimension to 0), preferred coverage adds incremental fit up to
// 30. With no constraints at all the dimension is fully satisfied; when
// required entries exist but no preferred ones do, the dimension is scored
// against the required ceiling alone.
func requiredPreferredScore(have, required, preferred []string) int {
	if len(required) == 0 && len(preferred) == 0 {
		return 100
	}

	haveSet := make(map[string]bool, len(have))
	for _, v := range have {
		haveSet[v] = true
	}

	requiredScore := 70.0
	if len(required) > 0 {
		overlap := countOverlap(haveSet, required)
		if overlap == 0 {
			return 0
		}
		requiredScore = float64(overlap) / float64(len(required)) * 70.0
	}

	preferredScore := 0.0
	if len(preferred) > 0 {
		preferredScore = float64(countOverlap(haveSet, preferred)) / float64(len(preferred)) * 30.0
	}

	return int(math.Round(requiredScore + preferredScore))
}

func countOverlap(have map[string]bool, want []string) int {
	n := 0
	for _, v := range want {
		if have[v] {
			n++
		}
	}
	return n
}

func containsString(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

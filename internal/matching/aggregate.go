// internal/matching/aggregate.go
package matching

import (
	"math"
	"time"

	"github.com/google/uuid"

	"bdmatch-workers/internal/models"
)

// ScoreValidity is how long a persisted score stays usable before readers
// must treat it as stale and recompute.
const ScoreValidity = 30 * 24 * time.Hour

// Aggregator combines dimension scores into one weighted decision. Weights
// and clock are injected; the zero-value clock falls back to time.Now.
type Aggregator struct {
	calc           *Calculator
	partnerWeights PartnerWeights
	companyWeights CompanyWeights
	validity       time.Duration
	now            func() time.Time
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the aggregator's time source.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

// WithPartnerWeights overrides the partner-direction weighting.
func WithPartnerWeights(w PartnerWeights) AggregatorOption {
	return func(a *Aggregator) { a.partnerWeights = w }
}

// WithCompanyWeights overrides the company-direction weighting.
func WithCompanyWeights(w CompanyWeights) AggregatorOption {
	return func(a *Aggregator) { a.companyWeights = w }
}

// WithValidity overrides how long emitted scores stay valid. Non-positive
// durations are ignored and the default validity is kept.
func WithValidity(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.validity = d
		}
	}
}

// NewAggregator builds an aggregator around the given calculator, using
// the default weights unless overridden.
func NewAggregator(calc *Calculator, opts ...AggregatorOption) *Aggregator {
	if calc == nil {
		calc = NewCalculator(nil)
	}
	a := &Aggregator{
		calc:           calc,
		partnerWeights: DefaultPartnerWeights(),
		companyWeights: DefaultCompanyWeights(),
		validity:       ScoreValidity,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ScorePartnerRequirement scores a partner against a company requirement.
// A nil partner or requirement yields no score: absence of data is not
// evidence of poor fit. thresholdOverride, when non-nil, replaces the
// requirement's autoMatchingScore for the recommendation decision.
func (a *Aggregator) ScorePartnerRequirement(
	partner *models.BdPartnerProfileView,
	req *models.CompanyRequirement,
	thresholdOverride *int,
) *models.MatchingScore {
	if partner == nil || req == nil {
		return nil
	}

	industry := a.calc.IndustryScore(partner, req)
	region := a.calc.RegionScore(partner, req)
	experience := a.calc.ExperienceScore(partner, req)
	availability := a.calc.AvailabilityScore(partner, req)
	commission := a.calc.CommissionScore(partner, req)

	overall := int(math.Round(
		float64(industry)*a.partnerWeights.Industry +
			float64(region)*a.partnerWeights.Region +
			float64(experience)*a.partnerWeights.Experience +
			float64(availability)*a.partnerWeights.Availability +
			float64(commission)*a.partnerWeights.Commission))

	threshold := req.AutoMatchingScore
	if threshold <= 0 {
		threshold = DefaultRequirementThreshold
	}
	if thresholdOverride != nil {
		threshold = *thresholdOverride
	}

	calculatedAt := a.now().UTC()
	return &models.MatchingScore{
		ID:                uuid.New().String(),
		BdPartnerID:       partner.ID,
		CompanyID:         req.CompanyID,
		RequirementID:     req.ID,
		IndustryScore:     industry,
		RegionScore:       region,
		ExperienceScore:   experience,
		AvailabilityScore: availability,
		CommissionScore:   commission,
		OverallScore:      overall,
		MatchType:         TierFor(overall),
		IsRecommended:     overall >= threshold,
		CalculatedAt:      calculatedAt,
		ExpiresAt:         calculatedAt.Add(a.validity),
	}
}

// ScoreCompanyPreference scores a company against a partner preference,
// the reverse direction. Same absence semantics as ScorePartnerRequirement.
func (a *Aggregator) ScoreCompanyPreference(
	company *models.CompanyProfileView,
	pref *models.BdPartnerPreference,
	thresholdOverride *int,
) *models.MatchingScore {
	if company == nil || pref == nil {
		return nil
	}

	industry := a.calc.PreferenceIndustryScore(company, pref)
	region := a.calc.PreferenceRegionScore(company, pref)
	businessType := a.calc.PreferenceBusinessTypeScore(company, pref)
	commission := a.calc.PreferenceCommissionScore(company, pref)

	overall := int(math.Round(
		float64(industry)*a.companyWeights.Industry +
			float64(region)*a.companyWeights.Region +
			float64(businessType)*a.companyWeights.BusinessType +
			float64(commission)*a.companyWeights.Commission))

	threshold := pref.MinMatchingScore
	if threshold <= 0 {
		threshold = DefaultPreferenceThreshold
	}
	if thresholdOverride != nil {
		threshold = *thresholdOverride
	}

	calculatedAt := a.now().UTC()
	return &models.MatchingScore{
		ID:                uuid.New().String(),
		BdPartnerID:       pref.BdPartnerID,
		CompanyID:         company.ID,
		PreferenceID:      pref.ID,
		IndustryScore:     industry,
		RegionScore:       region,
		BusinessTypeScore: businessType,
		CommissionScore:   commission,
		OverallScore:      overall,
		MatchType:         TierFor(overall),
		IsRecommended:     overall >= threshold,
		CalculatedAt:      calculatedAt,
		ExpiresAt:         calculatedAt.Add(a.validity),
	}
}

// TierFor maps an overall score to its match tier.
func TierFor(overall int) models.MatchType {
	switch {
	case overall >= AutoTierFloor:
		return models.MatchTypeAuto
	case overall >= PartialTierFloor:
		return models.MatchTypePartial
	default:
		return models.MatchTypeManual
	}
}

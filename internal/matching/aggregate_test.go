// internal/matching/aggregate_test.go
package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdmatch-workers/internal/models"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestScorePartnerRequirement_ScenarioA(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil), WithClock(fixedClock()))

	partner := &models.BdPartnerProfileView{
		ID:     "partner-1",
		UserID: "user-1",
		Expertise: []models.ExpertiseEntry{
			{Industry: "software", ExperienceYears: 8},
		},
		MarketAccess: []models.MarketAccessEntry{
			{Region: "EMEA"},
		},
	}
	req := &models.CompanyRequirement{
		ID:                 "req-1",
		CompanyID:          "company-1",
		RequiredIndustries: []string{"software"},
		RequiredRegions:    []string{"EMEA"},
		MinExperienceYears: 5,
	}

	score := agg.ScorePartnerRequirement(partner, req, nil)
	require.NotNil(t, score)

	assert.Equal(t, 70, score.IndustryScore)
	assert.Equal(t, 70, score.RegionScore)
	assert.Equal(t, 100, score.ExperienceScore)
	assert.Equal(t, 100, score.AvailabilityScore)
	assert.Equal(t, 85, score.CommissionScore)
	assert.Equal(t, 82, score.OverallScore)
	assert.Equal(t, models.MatchTypePartial, score.MatchType)
	assert.True(t, score.IsRecommended) // 82 >= default 75
	assert.Equal(t, score.CalculatedAt.Add(ScoreValidity), score.ExpiresAt)
	assert.Equal(t, "req-1", score.RequirementID)
	assert.Empty(t, score.PreferenceID)
}

func TestScorePartnerRequirement_ScenarioB_GateCapsOverall(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil))

	partner := &models.BdPartnerProfileView{
		ID: "partner-1",
		Expertise: []models.ExpertiseEntry{
			{Industry: "software", ExperienceYears: 20},
		},
		MarketAccess: []models.MarketAccessEntry{{Region: "EMEA"}},
		Availability: models.AvailabilityFullTime,
	}
	req := &models.CompanyRequirement{
		ID:                 "req-1",
		CompanyID:          "company-1",
		RequiredIndustries: []string{"healthcare"},
	}

	score := agg.ScorePartnerRequirement(partner, req, nil)
	require.NotNil(t, score)

	assert.Equal(t, 0, score.IndustryScore)
	// with industry gated to zero the ceiling is 70; never an auto match
	assert.LessOrEqual(t, score.OverallScore, 70)
	assert.NotEqual(t, models.MatchTypeAuto, score.MatchType)
}

func TestScorePartnerRequirement_AbsentInputsYieldNoScore(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil))

	assert.Nil(t, agg.ScorePartnerRequirement(nil, &models.CompanyRequirement{}, nil))
	assert.Nil(t, agg.ScorePartnerRequirement(&models.BdPartnerProfileView{}, nil, nil))
	assert.Nil(t, agg.ScoreCompanyPreference(nil, &models.BdPartnerPreference{}, nil))
	assert.Nil(t, agg.ScoreCompanyPreference(&models.CompanyProfileView{}, nil, nil))
}

func TestScorePartnerRequirement_ThresholdOverride(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil))

	partner := &models.BdPartnerProfileView{
		Expertise:    []models.ExpertiseEntry{{Industry: "software", ExperienceYears: 8}},
		MarketAccess: []models.MarketAccessEntry{{Region: "EMEA"}},
	}
	req := &models.CompanyRequirement{
		RequiredIndustries: []string{"software"},
		RequiredRegions:    []string{"EMEA"},
		MinExperienceYears: 5,
	}

	base := agg.ScorePartnerRequirement(partner, req, nil)
	require.NotNil(t, base)
	assert.True(t, base.IsRecommended)

	strict := 95
	overridden := agg.ScorePartnerRequirement(partner, req, &strict)
	require.NotNil(t, overridden)
	assert.Equal(t, base.OverallScore, overridden.OverallScore)
	assert.False(t, overridden.IsRecommended)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		overall  int
		expected models.MatchType
	}{
		{100, models.MatchTypeAuto},
		{90, models.MatchTypeAuto},
		{89, models.MatchTypePartial},
		{70, models.MatchTypePartial},
		{69, models.MatchTypeManual},
		{0, models.MatchTypeManual},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TierFor(tt.overall), "overall=%d", tt.overall)
	}
}

func TestScoreCompanyPreference(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil), WithClock(fixedClock()))

	company := &models.CompanyProfileView{
		ID:           "company-1",
		Industry:     "software",
		Region:       "EMEA",
		BusinessType: "saas",
	}
	pref := &models.BdPartnerPreference{
		ID:                    "pref-1",
		BdPartnerID:           "partner-1",
		PreferredIndustries:   []string{"software"},
		PreferredRegions:      []string{"EMEA"},
		PreferredCompanyTypes: []string{"saas"},
	}

	score := agg.ScoreCompanyPreference(company, pref, nil)
	require.NotNil(t, score)

	assert.Equal(t, 100, score.IndustryScore)
	assert.Equal(t, 100, score.RegionScore)
	assert.Equal(t, 100, score.BusinessTypeScore)
	assert.Equal(t, 80, score.CommissionScore)
	// 100*0.35 + 100*0.25 + 100*0.25 + 80*0.15 = 97
	assert.Equal(t, 97, score.OverallScore)
	assert.Equal(t, models.MatchTypeAuto, score.MatchType)
	assert.True(t, score.IsRecommended) // default preference threshold 70
	assert.Equal(t, "pref-1", score.PreferenceID)
	assert.Empty(t, score.RequirementID)
}

// Identical snapshots produce identical dimension and overall scores.
func TestScoring_Deterministic(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil), WithClock(fixedClock()))

	partner := &models.BdPartnerProfileView{
		ID: "partner-1",
		Expertise: []models.ExpertiseEntry{
			{Industry: "software", ExperienceYears: 4},
			{Industry: "fintech", ExperienceYears: 7},
		},
		MarketAccess: []models.MarketAccessEntry{{Region: "APAC"}, {Region: "EMEA"}},
		Availability: models.AvailabilityFlexible,
	}
	req := &models.CompanyRequirement{
		ID:                  "req-1",
		CompanyID:           "company-1",
		RequiredIndustries:  []string{"fintech"},
		PreferredIndustries: []string{"software", "retail"},
		RequiredRegions:     []string{"EMEA"},
		MinExperienceYears:  3,
	}

	first := agg.ScorePartnerRequirement(partner, req, nil)
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		next := agg.ScorePartnerRequirement(partner, req, nil)
		require.NotNil(t, next)
		assert.Equal(t, first.IndustryScore, next.IndustryScore)
		assert.Equal(t, first.RegionScore, next.RegionScore)
		assert.Equal(t, first.ExperienceScore, next.ExperienceScore)
		assert.Equal(t, first.AvailabilityScore, next.AvailabilityScore)
		assert.Equal(t, first.CommissionScore, next.CommissionScore)
		assert.Equal(t, first.OverallScore, next.OverallScore)
		assert.Equal(t, first.MatchType, next.MatchType)
	}
}

func TestOverallScoreBounds(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil))

	partners := []*models.BdPartnerProfileView{
		{},
		{
			Expertise:    []models.ExpertiseEntry{{Industry: "a", ExperienceYears: 99}},
			MarketAccess: []models.MarketAccessEntry{{Region: "r"}},
			Availability: models.AvailabilityFullTime,
		},
	}
	reqs := []*models.CompanyRequirement{
		{},
		{RequiredIndustries: []string{"a"}, RequiredRegions: []string{"r"}, RequiredAvailability: models.AvailabilityFullTime},
		{RequiredIndustries: []string{"x", "y", "z"}, MinExperienceYears: 50},
	}

	for _, p := range partners {
		for _, r := range reqs {
			score := agg.ScorePartnerRequirement(p, r, nil)
			require.NotNil(t, score)
			assert.GreaterOrEqual(t, score.OverallScore, 0)
			assert.LessOrEqual(t, score.OverallScore, 100)
		}
	}
}

func TestWithValidity_ControlsExpiry(t *testing.T) {
	agg := NewAggregator(NewCalculator(nil),
		WithClock(fixedClock()),
		WithValidity(7*24*time.Hour))

	partner := &models.BdPartnerProfileView{
		ID:        "partner-1",
		Expertise: []models.ExpertiseEntry{{Industry: "software", ExperienceYears: 8}},
	}
	req := &models.CompanyRequirement{
		ID:                 "req-1",
		CompanyID:          "company-1",
		RequiredIndustries: []string{"software"},
	}

	score := agg.ScorePartnerRequirement(partner, req, nil)
	require.NotNil(t, score)
	assert.Equal(t, score.CalculatedAt.Add(7*24*time.Hour), score.ExpiresAt)

	// Non-positive overrides fall back to the default validity.
	agg = NewAggregator(NewCalculator(nil), WithClock(fixedClock()), WithValidity(0))
	score = agg.ScorePartnerRequirement(partner, req, nil)
	require.NotNil(t, score)
	assert.Equal(t, score.CalculatedAt.Add(ScoreValidity), score.ExpiresAt)
}

// internal/matching/scoring_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bdmatch-workers/internal/models"
)

func partnerWith(industries map[string]int, regions []string, availability string) *models.BdPartnerProfileView {
	p := &models.BdPartnerProfileView{
		ID:           "partner-1",
		UserID:       "user-1",
		IsVerified:   true,
		Availability: availability,
	}
	for industry, years := range industries {
		p.Expertise = append(p.Expertise, models.ExpertiseEntry{
			Industry:        industry,
			ExperienceYears: years,
		})
	}
	for _, region := range regions {
		p.MarketAccess = append(p.MarketAccess, models.MarketAccessEntry{
			Region:       region,
			CustomerType: "enterprise",
		})
	}
	return p
}

func TestIndustryScore(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name      string
		partner   *models.BdPartnerProfileView
		required  []string
		preferred []string
		expected  int
	}{
		{
			name:     "required fully covered, no preferred specified",
			partner:  partnerWith(map[string]int{"software": 8}, nil, ""),
			required: []string{"software"},
			expected: 70,
		},
		{
			name:      "required industries are a hard gate",
			partner:   partnerWith(map[string]int{"software": 8}, nil, ""),
			required:  []string{"healthcare"},
			preferred: []string{"software"},
			expected:  0,
		},
		{
			name:      "partial required coverage",
			partner:   partnerWith(map[string]int{"software": 8}, nil, ""),
			required:  []string{"software", "fintech"},
			preferred: nil,
			expected:  35,
		},
		{
			name:      "preferred adds incremental fit",
			partner:   partnerWith(map[string]int{"software": 8, "fintech": 2}, nil, ""),
			required:  []string{"software"},
			preferred: []string{"fintech", "retail"},
			expected:  85, // 70 + 15
		},
		{
			name:     "nothing specified is a full match",
			partner:  partnerWith(map[string]int{"software": 8}, nil, ""),
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.CompanyRequirement{
				RequiredIndustries:  tt.required,
				PreferredIndustries: tt.preferred,
			}
			assert.Equal(t, tt.expected, calc.IndustryScore(tt.partner, req))
		})
	}
}

func TestRegionScore_HardGate(t *testing.T) {
	calc := NewCalculator(nil)
	partner := partnerWith(nil, []string{"EMEA"}, "")

	req := &models.CompanyRequirement{
		RequiredRegions:  []string{"APAC"},
		PreferredRegions: []string{"EMEA"},
	}
	assert.Equal(t, 0, calc.RegionScore(partner, req))

	req.RequiredRegions = []string{"EMEA"}
	assert.Equal(t, 100, calc.RegionScore(partner, req))
}

func TestExperienceScore(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name        string
		years       int
		minRequired int
		expected    int
	}{
		{"no floor means satisfied", 0, 0, 100},
		{"exactly at floor", 5, 5, 100},
		{"above floor capped at 100", 8, 5, 100},
		{"just above floor", 6, 5, 100}, // round(6/5*50+50) = 110 -> cap
		{"below floor penalized linearly", 2, 5, 40},
		{"well below floor", 1, 10, 10},
		{"zero experience against floor", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partner := partnerWith(map[string]int{"software": tt.years}, nil, "")
			req := &models.CompanyRequirement{MinExperienceYears: tt.minRequired}
			assert.Equal(t, tt.expected, calc.ExperienceScore(partner, req))
		})
	}
}

func TestAvailabilityScore(t *testing.T) {
	calc := NewCalculator(nil)
	partner := partnerWith(nil, nil, models.AvailabilityFullTime)

	assert.Equal(t, 100, calc.AvailabilityScore(partner, &models.CompanyRequirement{}))
	assert.Equal(t, 100, calc.AvailabilityScore(partner, &models.CompanyRequirement{
		RequiredAvailability: models.AvailabilityFullTime,
	}))
	// mismatch is partial credit, not disqualifying
	assert.Equal(t, 50, calc.AvailabilityScore(partner, &models.CompanyRequirement{
		RequiredAvailability: models.AvailabilityPartTime,
	}))
}

func TestCommissionScore_FixedPlaceholders(t *testing.T) {
	calc := NewCalculator(nil)

	partner := partnerWith(map[string]int{"software": 5}, nil, "")
	req := &models.CompanyRequirement{}
	assert.Equal(t, FixedPartnerCommissionScore, calc.CommissionScore(partner, req))

	company := &models.CompanyProfileView{Industry: "software"}
	pref := &models.BdPartnerPreference{}
	assert.Equal(t, FixedCompanyCommissionScore, calc.PreferenceCommissionScore(company, pref))
}

func TestPreferenceIndustryScore(t *testing.T) {
	calc := NewCalculator(nil)
	pref := &models.BdPartnerPreference{
		PreferredIndustries: []string{"software"},
		ExcludedIndustries:  []string{"gambling"},
	}

	tests := []struct {
		industry string
		expected int
	}{
		{"gambling", 0},
		{"software", 100},
		{"retail", 50},
	}

	for _, tt := range tests {
		company := &models.CompanyProfileView{Industry: tt.industry}
		assert.Equal(t, tt.expected, calc.PreferenceIndustryScore(company, pref), tt.industry)
	}
}

// An excluded industry can never score full, even when a malformed
// preference lists it on both sides: exclusion wins.
func TestPreferenceIndustryScore_ExclusionWins(t *testing.T) {
	calc := NewCalculator(nil)
	pref := &models.BdPartnerPreference{
		PreferredIndustries: []string{"gambling"},
		ExcludedIndustries:  []string{"gambling"},
	}
	company := &models.CompanyProfileView{Industry: "gambling"}
	assert.NotEqual(t, 100, calc.PreferenceIndustryScore(company, pref))
	assert.Equal(t, 0, calc.PreferenceIndustryScore(company, pref))
}

func TestPreferenceRegionScore(t *testing.T) {
	calc := NewCalculator(nil)

	company := &models.CompanyProfileView{Region: "LATAM"}

	assert.Equal(t, 100, calc.PreferenceRegionScore(company, &models.BdPartnerPreference{
		PreferredRegions: []string{"LATAM"},
	}))
	assert.Equal(t, 75, calc.PreferenceRegionScore(company, &models.BdPartnerPreference{
		PreferredRegions: []string{"EMEA"},
		CanWorkRemotely:  true,
	}))
	assert.Equal(t, 25, calc.PreferenceRegionScore(company, &models.BdPartnerPreference{
		PreferredRegions: []string{"EMEA"},
	}))
}

func TestPreferenceBusinessTypeScore(t *testing.T) {
	calc := NewCalculator(nil)
	pref := &models.BdPartnerPreference{PreferredCompanyTypes: []string{"saas"}}

	assert.Equal(t, 100, calc.PreferenceBusinessTypeScore(&models.CompanyProfileView{BusinessType: "saas"}, pref))
	assert.Equal(t, 50, calc.PreferenceBusinessTypeScore(&models.CompanyProfileView{BusinessType: "agency"}, pref))
}

// All dimension scores stay within [0,100] across a sweep of inputs.
func TestDimensionScoreBounds(t *testing.T) {
	calc := NewCalculator(nil)

	partners := []*models.BdPartnerProfileView{
		partnerWith(nil, nil, ""),
		partnerWith(map[string]int{"software": 50}, []string{"EMEA", "APAC"}, models.AvailabilityFlexible),
		partnerWith(map[string]int{"a": 1, "b": 2, "c": 3}, []string{"NA"}, models.AvailabilityPartTime),
	}
	reqs := []*models.CompanyRequirement{
		{},
		{RequiredIndustries: []string{"a", "b"}, PreferredIndustries: []string{"c"}, MinExperienceYears: 20},
		{RequiredRegions: []string{"NA", "EMEA", "APAC"}, RequiredAvailability: models.AvailabilityFullTime},
	}

	for _, p := range partners {
		for _, r := range reqs {
			for _, score := range []int{
				calc.IndustryScore(p, r),
				calc.RegionScore(p, r),
				calc.ExperienceScore(p, r),
				calc.AvailabilityScore(p, r),
				calc.CommissionScore(p, r),
			} {
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
			}
		}
	}
}

// internal/models/partner.go
package models

// Availability values carried on a BD partner profile.
const (
	AvailabilityFullTime = "full_time"
	AvailabilityPartTime = "part_time"
	AvailabilityFlexible = "flexible"
)

// ExpertiseEntry is one industry a partner has worked in.
type ExpertiseEntry struct {
	Industry        string `json:"industry"`
	ExperienceYears int    `json:"experienceYears"`
	IsPrimary       bool   `json:"isPrimary"`
}

// MarketAccessEntry describes a region the partner can reach and how strongly.
type MarketAccessEntry struct {
	Region         string `json:"region"`
	CustomerType   string `json:"customerType"`
	InfluenceLevel string `json:"influenceLevel"`
}

// BdPartnerProfileView is the fully assembled partner profile handed to the
// matching engine. The store joins expertise and market access before the
// calculator ever sees the profile; the calculator never performs lookups.
type BdPartnerProfileView struct {
	ID           string              `json:"id"`
	UserID       string              `json:"userId"`
	IsVerified   bool                `json:"isVerified"`
	Availability string              `json:"availability"`
	Expertise    []ExpertiseEntry    `json:"expertise"`
	MarketAccess []MarketAccessEntry `json:"marketAccess"`
}

// Industries returns the distinct set of industries from expertise entries.
func (p *BdPartnerProfileView) Industries() []string {
	seen := make(map[string]bool, len(p.Expertise))
	out := make([]string, 0, len(p.Expertise))
	for _, e := range p.Expertise {
		if e.Industry == "" || seen[e.Industry] {
			continue
		}
		seen[e.Industry] = true
		out = append(out, e.Industry)
	}
	return out
}

// Regions returns the distinct set of regions from market access entries.
func (p *BdPartnerProfileView) Regions() []string {
	seen := make(map[string]bool, len(p.MarketAccess))
	out := make([]string, 0, len(p.MarketAccess))
	for _, m := range p.MarketAccess {
		if m.Region == "" || seen[m.Region] {
			continue
		}
		seen[m.Region] = true
		out = append(out, m.Region)
	}
	return out
}

// MaxExperienceYears returns the highest experience across all expertise
// entries, 0 when the partner has none recorded.
func (p *BdPartnerProfileView) MaxExperienceYears() int {
	max := 0
	for _, e := range p.Expertise {
		if e.ExperienceYears > max {
			max = e.ExperienceYears
		}
	}
	return max
}

// internal/models/company.go
package models

import "fmt"

// CompanyProfileView is the company-side profile used by the reverse
// (company against partner preference) scoring direction.
type CompanyProfileView struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	Region       string `json:"region"`
	BusinessType string `json:"businessType"`
	IsVerified   bool   `json:"isVerified"`
}

// Product is a sellable product or service owned by one company.
type Product struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
}

// CompanyRequirement enumerates what a company needs from a BD partner.
// Consumed read-only by the matching engine.
type CompanyRequirement struct {
	ID                   string   `json:"id"`
	CompanyID            string   `json:"companyId"`
	RequiredIndustries   []string `json:"requiredIndustries"`
	PreferredIndustries  []string `json:"preferredIndustries"`
	RequiredRegions      []string `json:"requiredRegions"`
	PreferredRegions     []string `json:"preferredRegions"`
	MinExperienceYears   int      `json:"minExperienceYears"`
	RequiredAvailability string   `json:"requiredAvailability"`
	CommissionRateMin    *float64 `json:"commissionRateMin,omitempty"`
	CommissionRateMax    *float64 `json:"commissionRateMax,omitempty"`
	AutoMatchingScore    int      `json:"autoMatchingScore"`
	IsActive             bool     `json:"isActive"`
}

// Validate enforces the requirement-level invariants.
func (r *CompanyRequirement) Validate() error {
	if r.CommissionRateMin != nil && r.CommissionRateMax != nil &&
		*r.CommissionRateMin > *r.CommissionRateMax {
		return fmt.Errorf("commissionRateMin %.2f exceeds commissionRateMax %.2f",
			*r.CommissionRateMin, *r.CommissionRateMax)
	}
	return nil
}

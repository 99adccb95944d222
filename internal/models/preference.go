// internal/models/preference.go
package models

import "fmt"

// BdPartnerPreference mirrors a company requirement in reverse: what kinds
// of companies a partner wants to represent.
type BdPartnerPreference struct {
	ID                    string   `json:"id"`
	BdPartnerID           string   `json:"bdPartnerId"`
	PreferredIndustries   []string `json:"preferredIndustries"`
	ExcludedIndustries    []string `json:"excludedIndustries"`
	PreferredRegions      []string `json:"preferredRegions"`
	CanWorkRemotely       bool     `json:"canWorkRemotely"`
	PreferredCompanyTypes []string `json:"preferredCompanyTypes"`
	MinMatchingScore      int      `json:"minMatchingScore"`
}

// Validate enforces that no industry is both preferred and excluded.
func (p *BdPartnerPreference) Validate() error {
	excluded := make(map[string]bool, len(p.ExcludedIndustries))
	for _, ind := range p.ExcludedIndustries {
		excluded[ind] = true
	}
	for _, ind := range p.PreferredIndustries {
		if excluded[ind] {
			return fmt.Errorf("industry %q is both preferred and excluded", ind)
		}
	}
	return nil
}

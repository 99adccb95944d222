// internal/models/identity.go
package models

// Identity is the resolved caller identity: the authenticated user plus
// whichever marketplace profiles belong to that user. Either profile id
// may be empty when the user has not completed that side's registration.
type Identity struct {
	UserID      string `json:"userId"`
	Email       string `json:"email,omitempty"`
	BdPartnerID string `json:"bdPartnerId,omitempty"`
	CompanyID   string `json:"companyId,omitempty"`
}

// ProfileIDFor returns the caller's profile id for the given side, empty
// when the caller has no profile on that side.
func (i Identity) ProfileIDFor(t InitiatorType) string {
	if t == InitiatorCompany {
		return i.CompanyID
	}
	return i.BdPartnerID
}

// HasSide reports whether the caller owns a profile on the given side.
func (i Identity) HasSide(t InitiatorType) bool {
	return i.ProfileIDFor(t) != ""
}

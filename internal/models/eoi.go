// internal/models/eoi.go
package models

import "time"

// InitiatorType identifies which side of the marketplace opened an EOI.
type InitiatorType string

const (
	InitiatorBdPartner InitiatorType = "bd_partner"
	InitiatorCompany   InitiatorType = "company"
)

// Counterparty returns the opposite side.
func (t InitiatorType) Counterparty() InitiatorType {
	if t == InitiatorBdPartner {
		return InitiatorCompany
	}
	return InitiatorBdPartner
}

// EoiStatus is the EOI lifecycle state.
type EoiStatus string

const (
	EoiStatusDraft       EoiStatus = "draft"
	EoiStatusSent        EoiStatus = "sent"
	EoiStatusUnderReview EoiStatus = "under_review"
	EoiStatusAccepted    EoiStatus = "accepted"
	EoiStatusRejected    EoiStatus = "rejected"
	EoiStatusWithdrawn   EoiStatus = "withdrawn"
	EoiStatusExpired     EoiStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed.
func (s EoiStatus) IsTerminal() bool {
	switch s {
	case EoiStatusAccepted, EoiStatusRejected, EoiStatusWithdrawn, EoiStatusExpired:
		return true
	}
	return false
}

// IsOpenForResponse reports whether the counterparty may still respond.
// under_review is an administrative sub-state of "open" and is treated
// exactly like sent for authorization purposes.
func (s EoiStatus) IsOpenForResponse() bool {
	return s == EoiStatusSent || s == EoiStatusUnderReview
}

// Initiator is the resolved owner of an EOI: the side named by
// InitiatorType together with that side's profile id. Modeling this as a
// small value type avoids inferring roles from nullable foreign keys.
type Initiator struct {
	Type      InitiatorType `json:"type"`
	ProfileID string        `json:"profileId"`
}

// Eoi is the central workflow entity of the marketplace.
type Eoi struct {
	ID            string        `json:"id"`
	BdPartnerID   string        `json:"bdPartnerId,omitempty"`
	CompanyID     string        `json:"companyId,omitempty"`
	InitiatorType InitiatorType `json:"initiatorType"`
	ProductID     string        `json:"productId,omitempty"`
	EoiType       string        `json:"eoiType"`
	Status        EoiStatus     `json:"status"`

	Title       string `json:"title"`
	Description string `json:"description"`

	ProposedCommissionRate *float64 `json:"proposedCommissionRate,omitempty"`
	ExpectedDealSize       *float64 `json:"expectedDealSize,omitempty"`
	Exclusivity            bool     `json:"exclusivity"`
	Timeline               string   `json:"timeline,omitempty"`

	TargetRegions       []string `json:"targetRegions,omitempty"`
	TargetIndustries    []string `json:"targetIndustries,omitempty"`
	TargetCustomerTypes []string `json:"targetCustomerTypes,omitempty"`

	ResponseMessage string     `json:"responseMessage,omitempty"`
	ResponseDate    *time.Time `json:"responseDate,omitempty"`
	ReviewedBy      string     `json:"reviewedBy,omitempty"`

	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner resolves the initiator side of the EOI.
func (e *Eoi) Owner() Initiator {
	if e.InitiatorType == InitiatorCompany {
		return Initiator{Type: InitiatorCompany, ProfileID: e.CompanyID}
	}
	return Initiator{Type: InitiatorBdPartner, ProfileID: e.BdPartnerID}
}

// IsPubliclyVisible reports whether the EOI may appear in open search:
// only sent/under_review EOIs that have not yet expired.
func (e *Eoi) IsPubliclyVisible(now time.Time) bool {
	if !e.Status.IsOpenForResponse() {
		return false
	}
	if e.ExpiresAt != nil && !e.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Communication message types appended on EOI transitions.
const (
	MessageTypeAcceptance = "acceptance"
	MessageTypeRejection  = "rejection"
)

// EoiCommunication is an immutable audit/message record appended when an
// EOI transitions via response. Rows are never mutated.
type EoiCommunication struct {
	ID          string    `json:"id"`
	EoiID       string    `json:"eoiId"`
	FromUserID  string    `json:"fromUserId"`
	ToUserID    string    `json:"toUserId"`
	MessageType string    `json:"messageType"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

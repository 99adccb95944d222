// internal/workers/eoi/respond-eoi/models.go
package respondeoi

type Input struct {
	AccessToken string `json:"accessToken"`
	EoiID       string `json:"eoiId"`
	// Decision is "accept" or "reject".
	Decision string `json:"decision"`
	Message  string `json:"message"`
}

type Output struct {
	EoiID           string `json:"eoiId"`
	Status          string `json:"status"`
	ResponseDate    string `json:"responseDate"`
	CommunicationID string `json:"communicationId,omitempty"`
}

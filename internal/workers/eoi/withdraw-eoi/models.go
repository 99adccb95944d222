// internal/workers/eoi/withdraw-eoi/models.go
package withdraweoi

type Input struct {
	AccessToken string `json:"accessToken"`
	EoiID       string `json:"eoiId"`
	Reason      string `json:"reason,omitempty"`
}

type Output struct {
	EoiID     string `json:"eoiId"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
}

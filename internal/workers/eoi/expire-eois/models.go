// internal/workers/eoi/expire-eois/models.go
package expireeois

type Input struct {
	// AsOf overrides the sweep reference time, RFC3339. Empty means now.
	AsOf string `json:"asOf,omitempty"`
}

type Output struct {
	ExpiredCount int64  `json:"expiredCount"`
	SweptAt      string `json:"sweptAt"`
}

// internal/workers/eoi/search-open-eois/models.go
package searchopeneois

type Pagination struct {
	From int `json:"from,omitempty"`
	Size int `json:"size,omitempty"`
}

type Input struct {
	Keywords         string     `json:"keywords,omitempty"`
	EoiType          string     `json:"eoiType,omitempty"`
	InitiatorType    string     `json:"initiatorType,omitempty"`
	TargetRegions    []string   `json:"targetRegions,omitempty"`
	TargetIndustries []string   `json:"targetIndustries,omitempty"`
	Pagination       Pagination `json:"pagination,omitempty"`
}

type Output struct {
	Total   int64                    `json:"total"`
	Results []map[string]interface{} `json:"results"`
	From    int                      `json:"from"`
	Size    int                      `json:"size"`
}

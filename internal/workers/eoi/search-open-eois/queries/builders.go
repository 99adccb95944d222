package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

// EoiIndex is the search index holding EOI documents.
const EoiIndex = "eois"

// OpenEoisQuery searches the publicly visible EOIs: open for response and
// not yet expired. All filters are optional narrowing on top of that.
type OpenEoisQuery struct {
	Index            string
	Keywords         string
	EoiType          string
	InitiatorType    string
	TargetRegions    []string
	TargetIndustries []string
	Now              time.Time
	Pagination       struct {
		From int
		Size int
	}
}

// BuildOpenEoisQuery builds the search request for open EOIs.
func BuildOpenEoisQuery(eq OpenEoisQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"terms": map[string]interface{}{"status": []string{"sent", "under_review"}},
		},
	}

	if eq.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  eq.Keywords,
				"fields": []string{"title^3", "description^2", "eoi_type"},
				"type":   "best_fields",
			},
		})
	}
	if eq.EoiType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"eoi_type": eq.EoiType},
		})
	}
	if eq.InitiatorType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"initiator_type": eq.InitiatorType},
		})
	}
	if len(eq.TargetRegions) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"target_regions": eq.TargetRegions},
		})
	}
	if len(eq.TargetIndustries) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"target_industries": eq.TargetIndustries},
		})
	}

	boolQuery := map[string]interface{}{
		"filter": filterClauses,
		// An absent expires_at means the EOI never expires.
		"must_not": []interface{}{
			map[string]interface{}{
				"range": map[string]interface{}{
					"expires_at": map[string]interface{}{
						"lte": eq.Now.UTC().Format(time.RFC3339),
					},
				},
			},
		},
	}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{eq.Index},
		Body:  strings.NewReader(string(body)),
		From:  &eq.Pagination.From,
		Size:  &eq.Pagination.Size,
	}

	return &req, nil
}

// SearchResult is the decoded hit set of an open-EOI search.
type SearchResult struct {
	Total int64
	Items []map[string]interface{}
}

// Execute runs the open-EOI search and decodes the hits.
func Execute(ctx context.Context, esClient *elasticsearch.Client, eq OpenEoisQuery) (*SearchResult, error) {
	req, err := BuildOpenEoisQuery(eq)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("open eoi search failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected search response shape")
	}

	result := &SearchResult{}
	if total, ok := hits["total"].(map[string]interface{}); ok {
		if value, ok := total["value"].(float64); ok {
			result.Total = int64(value)
		}
	}

	rawHits, _ := hits["hits"].([]interface{})
	for _, hit := range rawHits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		if source, ok := doc["_source"].(map[string]interface{}); ok {
			result.Items = append(result.Items, source)
		}
	}

	return result, nil
}

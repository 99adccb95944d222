package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

// PartnerIndex is the search index holding BD partner profiles.
const PartnerIndex = "bd_partner_profiles"

// VerifiedPartnersQuery enumerates verified partners, optionally narrowed
// to industries or regions the requirement cares about. Narrowing is an
// optimization only; retention is decided by the computed score, not by
// the search filter.
type VerifiedPartnersQuery struct {
	Index      string
	Industries []string
	Regions    []string
	Pagination struct {
		From int
		Size int
	}
}

// BuildVerifiedPartnersQuery builds the search request for verified
// partner enumeration.
func BuildVerifiedPartnersQuery(eq VerifiedPartnersQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"is_verified": true},
		},
	}

	shouldClauses := []interface{}{}
	if len(eq.Industries) > 0 {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"terms": map[string]interface{}{"expertise.industry": eq.Industries},
		})
	}
	if len(eq.Regions) > 0 {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"terms": map[string]interface{}{"market_access.region": eq.Regions},
		})
	}

	boolQuery := map[string]interface{}{"filter": filterClauses}
	if len(shouldClauses) > 0 {
		boolQuery["should"] = shouldClauses
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
		"_source": []string{"id"},
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

// FetchVerifiedPartnerIDs runs the enumeration query and returns the
// matching partner ids.
func FetchVerifiedPartnerIDs(ctx context.Context, esClient *elasticsearch.Client, eq VerifiedPartnersQuery) ([]string, error) {
	req, err := BuildVerifiedPartnersQuery(eq)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("partner enumeration failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected search response shape")
	}
	rawHits, _ := hits["hits"].([]interface{})

	var ids []string
	for _, hit := range rawHits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		if source, ok := doc["_source"].(map[string]interface{}); ok {
			if id, ok := source["id"].(string); ok && id != "" {
				ids = append(ids, id)
				continue
			}
		}
		if id, ok := doc["_id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

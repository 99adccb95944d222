package queries

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	raw, err := io.ReadAll(body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func boolQueryOf(t *testing.T, decoded map[string]interface{}) map[string]interface{} {
	query, ok := decoded["query"].(map[string]interface{})
	require.True(t, ok)
	boolQuery, ok := query["bool"].(map[string]interface{})
	require.True(t, ok)
	return boolQuery
}

func TestBuildOpenEoisQuery_RequiresIndex(t *testing.T) {
	_, err := BuildOpenEoisQuery(OpenEoisQuery{})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildOpenEoisQuery_AlwaysFiltersOpenStatuses(t *testing.T) {
	eq := OpenEoisQuery{Index: EoiIndex, Now: time.Now()}
	eq.Pagination.Size = 20

	req, err := BuildOpenEoisQuery(eq)
	require.NoError(t, err)

	boolQuery := boolQueryOf(t, decodeBody(t, req.Body))

	filters, ok := boolQuery["filter"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, filters)

	statusFilter := filters[0].(map[string]interface{})["terms"].(map[string]interface{})
	statuses := statusFilter["status"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"sent", "under_review"}, statuses)

	// Expired EOIs are excluded; missing expires_at passes.
	mustNot, ok := boolQuery["must_not"].([]interface{})
	require.True(t, ok)
	require.Len(t, mustNot, 1)
	rangeClause := mustNot[0].(map[string]interface{})["range"].(map[string]interface{})
	assert.Contains(t, rangeClause, "expires_at")
}

func TestBuildOpenEoisQuery_KeywordsBecomeMultiMatch(t *testing.T) {
	eq := OpenEoisQuery{Index: EoiIndex, Keywords: "reseller europe", Now: time.Now()}
	eq.Pagination.Size = 20

	req, err := BuildOpenEoisQuery(eq)
	require.NoError(t, err)

	boolQuery := boolQueryOf(t, decodeBody(t, req.Body))

	must, ok := boolQuery["must"].([]interface{})
	require.True(t, ok)
	require.Len(t, must, 1)
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "reseller europe", multiMatch["query"])
}

func TestBuildOpenEoisQuery_OptionalFilters(t *testing.T) {
	eq := OpenEoisQuery{
		Index:            EoiIndex,
		EoiType:          "partnership",
		InitiatorType:    "company",
		TargetRegions:    []string{"europe"},
		TargetIndustries: []string{"software"},
		Now:              time.Now(),
	}
	eq.Pagination.Size = 20

	req, err := BuildOpenEoisQuery(eq)
	require.NoError(t, err)

	boolQuery := boolQueryOf(t, decodeBody(t, req.Body))
	filters := boolQuery["filter"].([]interface{})

	// status + eoi_type + initiator_type + regions + industries
	assert.Len(t, filters, 5)
}

func TestBuildOpenEoisQuery_Pagination(t *testing.T) {
	eq := OpenEoisQuery{Index: EoiIndex, Now: time.Now()}
	eq.Pagination.From = 40
	eq.Pagination.Size = 20

	req, err := BuildOpenEoisQuery(eq)
	require.NoError(t, err)

	require.NotNil(t, req.From)
	require.NotNil(t, req.Size)
	assert.Equal(t, 40, *req.From)
	assert.Equal(t, 20, *req.Size)
	assert.Equal(t, []string{EoiIndex}, req.Index)
}

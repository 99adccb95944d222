// internal/workers/matching/discover-candidates/handler_test.go
package discovercandidates

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/matching"
	"bdmatch-workers/internal/models"
	"bdmatch-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrency is pinned to 1 so sqlmock's ordered expectations hold.
func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	cfg := &Config{
		Timeout:     30 * time.Second,
		Floor:       50,
		Limit:       50,
		Concurrency: 1,
	}
	handler := NewHandler(
		cfg,
		store.NewProfileStore(db, nil, log, time.Minute),
		store.NewRequirementStore(db, log),
		store.NewScoreStore(db, log),
		matching.NewAggregator(nil),
		nil,
		log,
	)
	return handler, mock, func() { db.Close() }
}

func expectRequirementByID(mock sqlmock.Sqlmock) {
	requiredInd, _ := json.Marshal([]string{"software"})
	empty, _ := json.Marshal([]string{})
	requiredReg, _ := json.Marshal([]string{"europe"})
	mock.ExpectQuery(`SELECT\s+id, company_id`).
		WithArgs("req-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "required_industries", "preferred_industries",
			"required_regions", "preferred_regions", "min_experience_years",
			"required_availability", "commission_rate_min", "commission_rate_max",
			"auto_matching_score", "is_active",
		}).AddRow("req-001", "company-001", requiredInd, empty, requiredReg, empty,
			5, "full_time", nil, nil, 0, true))
}

func expectPartnerList(mock sqlmock.Sqlmock, ids ...string) {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT id FROM bd_partner_profiles WHERE is_verified`).
		WillReturnRows(rows)
}

func expectProfile(mock sqlmock.Sqlmock, id, industry, region string) {
	expertise, _ := json.Marshal([]models.ExpertiseEntry{
		{Industry: industry, ExperienceYears: 7, IsPrimary: true},
	})
	marketAccess, _ := json.Marshal([]models.MarketAccessEntry{
		{Region: region, CustomerType: "enterprise", InfluenceLevel: "high"},
	})
	mock.ExpectQuery(`SELECT id, user_id, is_verified`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "is_verified", "availability", "expertise", "market_access",
		}).AddRow(id, "user-"+id, true, "full_time", expertise, marketAccess))
}

func TestExecute_RetainsAboveFloorOnly(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectRequirementByID(mock)
	expectPartnerList(mock, "partner-001", "partner-002")
	// partner-001 fits the requirement and is persisted.
	expectProfile(mock, "partner-001", "software", "europe")
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// partner-002 misses both hard gates and lands below the floor.
	expectProfile(mock, "partner-002", "retail", "asia")

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:     "company-001",
		RequirementID: "req-001",
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, 2, output.Evaluated)
	assert.Equal(t, 1, output.Retained)
	require.Len(t, output.Candidates, 1)
	assert.Equal(t, "partner-001", output.Candidates[0].BdPartnerID)
	assert.Equal(t, 82, output.Candidates[0].OverallScore)
	assert.Equal(t, "partial", output.Candidates[0].MatchType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_TieBreaksOnPartnerID(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectRequirementByID(mock)
	// Enumeration order deliberately reversed relative to the tie-break.
	expectPartnerList(mock, "partner-b", "partner-a")
	expectProfile(mock, "partner-b", "software", "europe")
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectProfile(mock, "partner-a", "software", "europe")
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:     "company-001",
		RequirementID: "req-001",
	})

	require.NoError(t, err)
	require.Len(t, output.Candidates, 2)
	assert.Equal(t, "partner-a", output.Candidates[0].BdPartnerID)
	assert.Equal(t, "partner-b", output.Candidates[1].BdPartnerID)
}

func TestExecute_LimitTruncatesAfterSort(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectRequirementByID(mock)
	expectPartnerList(mock, "partner-a", "partner-b")
	expectProfile(mock, "partner-a", "software", "europe")
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectProfile(mock, "partner-b", "software", "europe")
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:     "company-001",
		RequirementID: "req-001",
		Limit:         1,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Retained)
	require.Len(t, output.Candidates, 1)
	assert.Equal(t, "partner-a", output.Candidates[0].BdPartnerID)
}

func TestExecute_NoActiveRequirementSkips(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT\s+id, company_id`).
		WithArgs("company-idle").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID: "company-idle",
	})

	require.NoError(t, err)
	assert.True(t, output.Skipped)
	assert.Empty(t, output.Candidates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ScoreInsertFailureKeepsCandidate(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectRequirementByID(mock)
	expectPartnerList(mock, "partner-001")
	expectProfile(mock, "partner-001", "software", "europe")
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnError(context.DeadlineExceeded)

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:     "company-001",
		RequirementID: "req-001",
	})

	require.NoError(t, err)
	require.Len(t, output.Candidates, 1)
	assert.Equal(t, "partner-001", output.Candidates[0].BdPartnerID)
}

func TestExecute_MissingCompany(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()

	output, err := handler.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.Nil(t, output)
}

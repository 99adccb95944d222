// internal/workers/matching/calculate-company-match/handler_test.go
package calculatecompanymatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/matching"
	"bdmatch-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	handler := NewHandler(
		LoadConfig(),
		store.NewProfileStore(db, nil, log, time.Minute),
		store.NewPreferenceStore(db, log),
		store.NewScoreStore(db, log),
		matching.NewAggregator(nil),
		log,
	)
	return handler, mock, func() { db.Close() }
}

func expectNoValidScore(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT id, bd_partner_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

func expectCompanyProfile(mock sqlmock.Sqlmock, industry, region, businessType string) {
	mock.ExpectQuery(`SELECT id, user_id, name`).
		WithArgs("company-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "industry", "region", "business_type", "is_verified",
		}).AddRow("company-001", "user-010", "Acme GmbH", industry, region, businessType, true))
}

func expectPreference(mock sqlmock.Sqlmock, minScore int) {
	preferredInd, _ := json.Marshal([]string{"software"})
	excluded, _ := json.Marshal([]string{"gambling"})
	preferredReg, _ := json.Marshal([]string{"europe"})
	companyTypes, _ := json.Marshal([]string{"b2b"})
	mock.ExpectQuery(`SELECT\s+id, bd_partner_id, preferred_industries`).
		WithArgs("pref-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bd_partner_id", "preferred_industries", "excluded_industries",
			"preferred_regions", "can_work_remotely", "preferred_company_types",
			"min_matching_score",
		}).AddRow("pref-001", "partner-001", preferredInd, excluded, preferredReg,
			true, companyTypes, minScore))
}

func TestExecute_FullPreferenceMatch(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectCompanyProfile(mock, "software", "europe", "b2b")
	expectPreference(mock, 0)
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:    "company-001",
		PreferenceID: "pref-001",
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, 100, output.Dimensions.Industry)
	assert.Equal(t, 100, output.Dimensions.Region)
	assert.Equal(t, 100, output.Dimensions.BusinessType)
	assert.Equal(t, 80, output.Dimensions.Commission)
	assert.Equal(t, 97, output.OverallScore)
	assert.Equal(t, "auto", output.MatchType)
	assert.True(t, output.IsRecommended)
	assert.Equal(t, "partner-001", output.BdPartnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NeutralCompanyScoresLow(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectCompanyProfile(mock, "logistics", "asia", "b2c")
	expectPreference(mock, 0)
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:    "company-001",
		PreferenceID: "pref-001",
	})

	require.NoError(t, err)
	assert.Equal(t, 50, output.Dimensions.Industry)
	// Remote-capable partner keeps a non-preferred region above the floor.
	assert.Equal(t, 75, output.Dimensions.Region)
	assert.Equal(t, 50, output.Dimensions.BusinessType)
	assert.Equal(t, 61, output.OverallScore)
	assert.Equal(t, "manual", output.MatchType)
	assert.False(t, output.IsRecommended)
}

func TestExecute_ExcludedIndustryGatesDimension(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectCompanyProfile(mock, "gambling", "europe", "b2b")
	expectPreference(mock, 0)
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:    "company-001",
		PreferenceID: "pref-001",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Dimensions.Industry)
}

func TestExecute_ReusesValidScore(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, bd_partner_id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bd_partner_id", "company_id", "requirement_id", "preference_id",
			"industry_score", "region_score", "experience_score", "availability_score",
			"business_type_score", "commission_score", "overall_score", "match_type",
			"is_recommended", "calculated_at", "expires_at",
		}).AddRow("score-002", "partner-001", "company-001", "", "pref-001",
			100, 100, 0, 0, 100, 80, 97, "auto", true,
			now.Add(-time.Hour), now.Add(24*time.Hour)))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:    "company-001",
		PreferenceID: "pref-001",
	})

	require.NoError(t, err)
	assert.True(t, output.Reused)
	assert.Equal(t, "score-002", output.ScoreID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_PreferenceNotFound(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectCompanyProfile(mock, "software", "europe", "b2b")
	mock.ExpectQuery(`SELECT\s+id, bd_partner_id, preferred_industries`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:    "company-001",
		PreferenceID: "missing",
	})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePreferenceNotFound, stdErr.Code)
}

func TestExecute_MissingInput(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()

	output, err := handler.Execute(context.Background(), &Input{CompanyID: "company-001"})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestExecute_ContradictoryPreferenceRejected(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectCompanyProfile(mock, "software", "europe", "b2b")

	preferred, _ := json.Marshal([]string{"software"})
	excluded, _ := json.Marshal([]string{"software"})
	regions, _ := json.Marshal([]string{"europe"})
	companyTypes, _ := json.Marshal([]string{"b2b"})
	mock.ExpectQuery(`SELECT\s+id, bd_partner_id, preferred_industries`).
		WithArgs("pref-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bd_partner_id", "preferred_industries", "excluded_industries",
			"preferred_regions", "can_work_remotely", "preferred_company_types",
			"min_matching_score",
		}).AddRow("pref-001", "partner-001", preferred, excluded, regions,
			true, companyTypes, 0))

	output, err := handler.Execute(context.Background(), &Input{
		CompanyID:    "company-001",
		PreferenceID: "pref-001",
	})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

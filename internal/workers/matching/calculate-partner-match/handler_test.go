// internal/workers/matching/calculate-partner-match/handler_test.go
package calculatepartnermatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/matching"
	"bdmatch-workers/internal/models"
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
		store.NewRequirementStore(db, log),
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

func expectPartnerProfile(mock sqlmock.Sqlmock) {
	expertise, _ := json.Marshal([]models.ExpertiseEntry{
		{Industry: "software", ExperienceYears: 7, IsPrimary: true},
	})
	marketAccess, _ := json.Marshal([]models.MarketAccessEntry{
		{Region: "europe", CustomerType: "enterprise", InfluenceLevel: "high"},
	})
	mock.ExpectQuery(`SELECT id, user_id, is_verified`).
		WithArgs("partner-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "is_verified", "availability", "expertise", "market_access",
		}).AddRow("partner-001", "user-001", true, "full_time", expertise, marketAccess))
}

func expectRequirement(mock sqlmock.Sqlmock, autoScore int) {
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
			5, "full_time", nil, nil, autoScore, true))
}

func TestExecute_ComputesAndPersistsScore(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectPartnerProfile(mock)
	expectRequirement(mock, 0)
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		BdPartnerID:   "partner-001",
		RequirementID: "req-001",
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, 70, output.Dimensions.Industry)
	assert.Equal(t, 70, output.Dimensions.Region)
	assert.Equal(t, 100, output.Dimensions.Experience)
	assert.Equal(t, 100, output.Dimensions.Availability)
	assert.Equal(t, 85, output.Dimensions.Commission)
	assert.Equal(t, 82, output.OverallScore)
	assert.Equal(t, "partial", output.MatchType)
	assert.True(t, output.IsRecommended)
	assert.False(t, output.Reused)
	assert.NotEmpty(t, output.ScoreID)
	assert.NoError(t, mock.ExpectationsWereMet())
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
		}).AddRow("score-001", "partner-001", "company-001", "req-001", "",
			70, 70, 100, 100, 0, 85, 82, "partial", true,
			now.Add(-time.Hour), now.Add(24*time.Hour)))

	output, err := handler.Execute(context.Background(), &Input{
		BdPartnerID:   "partner-001",
		RequirementID: "req-001",
	})

	require.NoError(t, err)
	assert.True(t, output.Reused)
	assert.Equal(t, "score-001", output.ScoreID)
	assert.Equal(t, 82, output.OverallScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ForceRecomputes(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	// No stale-score lookup when forced.
	expectPartnerProfile(mock)
	expectRequirement(mock, 0)
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		BdPartnerID:   "partner-001",
		RequirementID: "req-001",
		Force:         true,
	})

	require.NoError(t, err)
	assert.False(t, output.Reused)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ThresholdOverride(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectPartnerProfile(mock)
	expectRequirement(mock, 0)
	mock.ExpectExec(`INSERT INTO matching_scores`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	threshold := 90
	output, err := handler.Execute(context.Background(), &Input{
		BdPartnerID:   "partner-001",
		RequirementID: "req-001",
		Threshold:     &threshold,
	})

	require.NoError(t, err)
	assert.Equal(t, 82, output.OverallScore)
	assert.False(t, output.IsRecommended)
}

func TestExecute_MissingInput(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()

	output, err := handler.Execute(context.Background(), &Input{BdPartnerID: "partner-001"})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestExecute_PartnerNotFound(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	mock.ExpectQuery(`SELECT id, user_id, is_verified`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	output, err := handler.Execute(context.Background(), &Input{
		BdPartnerID:   "missing",
		RequirementID: "req-001",
	})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeProfileNotFound, stdErr.Code)
}

func TestExecute_InvertedCommissionBandRejected(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectNoValidScore(mock)
	expectPartnerProfile(mock)

	requiredInd, _ := json.Marshal([]string{"software"})
	empty, _ := json.Marshal([]string{})
	mock.ExpectQuery(`SELECT\s+id, company_id`).
		WithArgs("req-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "required_industries", "preferred_industries",
			"required_regions", "preferred_regions", "min_experience_years",
			"required_availability", "commission_rate_min", "commission_rate_max",
			"auto_matching_score", "is_active",
		}).AddRow("req-001", "company-001", requiredInd, empty, empty, empty,
			0, "", 20.0, 10.0, 0, true))

	output, err := handler.Execute(context.Background(), &Input{
		BdPartnerID:   "partner-001",
		RequirementID: "req-001",
	})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

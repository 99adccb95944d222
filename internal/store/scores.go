package store

import (
	"context"
	"database/sql"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/models"
)

// ScoreStore persists computed matching scores. The table is insert-only:
// recomputation appends a new row and readers pick the newest valid one.
type ScoreStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewScoreStore(db *sql.DB, log logger.Logger) *ScoreStore {
	return &ScoreStore{db: db, log: log}
}

// Insert appends one score row.
func (s *ScoreStore) Insert(ctx context.Context, score *models.MatchingScore) error {
	query := `
		INSERT INTO matching_scores (
			id, bd_partner_id, company_id, requirement_id, preference_id,
			industry_score, region_score, experience_score, availability_score,
			business_type_score, commission_score, overall_score, match_type,
			is_recommended, calculated_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.db.ExecContext(ctx, query,
		score.ID,
		score.BdPartnerID,
		score.CompanyID,
		nullableString(score.RequirementID),
		nullableString(score.PreferenceID),
		score.IndustryScore,
		score.RegionScore,
		score.ExperienceScore,
		score.AvailabilityScore,
		score.BusinessTypeScore,
		score.CommissionScore,
		score.OverallScore,
		string(score.MatchType),
		score.IsRecommended,
		score.CalculatedAt,
		score.ExpiresAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// LatestValidForRequirement returns the newest non-expired score for the
// partner/requirement pair, nil when none exists.
func (s *ScoreStore) LatestValidForRequirement(ctx context.Context, bdPartnerID, requirementID string, now time.Time) (*models.MatchingScore, error) {
	query := scoreSelect + `
		WHERE bd_partner_id = $1 AND requirement_id = $2 AND expires_at > $3
		ORDER BY calculated_at DESC
		LIMIT 1`
	return s.queryOne(ctx, query, bdPartnerID, requirementID, now)
}

// LatestValidForPreference returns the newest non-expired score for the
// company/preference pair, nil when none exists.
func (s *ScoreStore) LatestValidForPreference(ctx context.Context, companyID, preferenceID string, now time.Time) (*models.MatchingScore, error) {
	query := scoreSelect + `
		WHERE company_id = $1 AND preference_id = $2 AND expires_at > $3
		ORDER BY calculated_at DESC
		LIMIT 1`
	return s.queryOne(ctx, query, companyID, preferenceID, now)
}

const scoreSelect = `
	SELECT id, bd_partner_id, company_id,
	       COALESCE(requirement_id, ''), COALESCE(preference_id, ''),
	       industry_score, region_score, experience_score, availability_score,
	       business_type_score, commission_score, overall_score, match_type,
	       is_recommended, calculated_at, expires_at
	FROM matching_scores`

func (s *ScoreStore) queryOne(ctx context.Context, query string, args ...interface{}) (*models.MatchingScore, error) {
	var score models.MatchingScore
	var matchType string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&score.ID,
		&score.BdPartnerID,
		&score.CompanyID,
		&score.RequirementID,
		&score.PreferenceID,
		&score.IndustryScore,
		&score.RegionScore,
		&score.ExperienceScore,
		&score.AvailabilityScore,
		&score.BusinessTypeScore,
		&score.CommissionScore,
		&score.OverallScore,
		&matchType,
		&score.IsRecommended,
		&score.CalculatedAt,
		&score.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_latest_score", err)
	}

	score.MatchType = models.MatchType(matchType)
	return &score, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/models"
)

// RequirementStore reads company requirements for the matching engine.
type RequirementStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewRequirementStore(db *sql.DB, log logger.Logger) *RequirementStore {
	return &RequirementStore{db: db, log: log}
}

const requirementColumns = `
	id, company_id, required_industries, preferred_industries,
	required_regions, preferred_regions, min_experience_years,
	COALESCE(required_availability, ''), commission_rate_min,
	commission_rate_max, COALESCE(auto_matching_score, 0), is_active`

// GetRequirement returns one requirement by id.
func (s *RequirementStore) GetRequirement(ctx context.Context, id string) (*models.CompanyRequirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM company_requirements WHERE id = $1`

	req, err := scanRequirement(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewRequirementNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_requirement", err)
	}
	return req, nil
}

// GetActiveRequirementForCompany returns the company's newest active
// requirement, nil when the company has none. Discovery treats a missing
// requirement as an absent result, not a failure.
func (s *RequirementStore) GetActiveRequirementForCompany(ctx context.Context, companyID string) (*models.CompanyRequirement, error) {
	query := `SELECT ` + requirementColumns + `
		FROM company_requirements
		WHERE company_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	req, err := scanRequirement(s.db.QueryRowContext(ctx, query, companyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_active_requirement", err)
	}
	return req, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequirement(row rowScanner) (*models.CompanyRequirement, error) {
	var req models.CompanyRequirement
	var requiredInd, preferredInd, requiredReg, preferredReg []byte
	var commissionMin, commissionMax sql.NullFloat64

	err := row.Scan(
		&req.ID,
		&req.CompanyID,
		&requiredInd,
		&preferredInd,
		&requiredReg,
		&preferredReg,
		&req.MinExperienceYears,
		&req.RequiredAvailability,
		&commissionMin,
		&commissionMax,
		&req.AutoMatchingScore,
		&req.IsActive,
	)
	if err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		raw  []byte
		dest *[]string
	}{
		{requiredInd, &req.RequiredIndustries},
		{preferredInd, &req.PreferredIndustries},
		{requiredReg, &req.RequiredRegions},
		{preferredReg, &req.PreferredRegions},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
				return nil, err
			}
		}
	}

	if commissionMin.Valid {
		req.CommissionRateMin = &commissionMin.Float64
	}
	if commissionMax.Valid {
		req.CommissionRateMax = &commissionMax.Float64
	}

	return &req, nil
}

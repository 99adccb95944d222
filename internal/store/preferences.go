package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/models"
)

// PreferenceStore reads BD partner preferences for the reverse scoring
// direction.
type PreferenceStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPreferenceStore(db *sql.DB, log logger.Logger) *PreferenceStore {
	return &PreferenceStore{db: db, log: log}
}

const preferenceColumns = `
	id, bd_partner_id, preferred_industries, excluded_industries,
	preferred_regions, can_work_remotely, preferred_company_types,
	COALESCE(min_matching_score, 0)`

// GetPreference returns one preference by id.
func (s *PreferenceStore) GetPreference(ctx context.Context, id string) (*models.BdPartnerPreference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM bd_partner_preferences WHERE id = $1`

	pref, err := scanPreference(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewPreferenceNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_preference", err)
	}
	return pref, nil
}

// GetActivePreferenceForPartner returns the partner's newest preference, nil
// when none exists.
func (s *PreferenceStore) GetActivePreferenceForPartner(ctx context.Context, bdPartnerID string) (*models.BdPartnerPreference, error) {
	query := `SELECT ` + preferenceColumns + `
		FROM bd_partner_preferences
		WHERE bd_partner_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	pref, err := scanPreference(s.db.QueryRowContext(ctx, query, bdPartnerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_active_preference", err)
	}
	return pref, nil
}

func scanPreference(row rowScanner) (*models.BdPartnerPreference, error) {
	var pref models.BdPartnerPreference
	var preferredInd, excludedInd, preferredReg, companyTypes []byte

	err := row.Scan(
		&pref.ID,
		&pref.BdPartnerID,
		&preferredInd,
		&excludedInd,
		&preferredReg,
		&pref.CanWorkRemotely,
		&companyTypes,
		&pref.MinMatchingScore,
	)
	if err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		raw  []byte
		dest *[]string
	}{
		{preferredInd, &pref.PreferredIndustries},
		{excludedInd, &pref.ExcludedIndustries},
		{preferredReg, &pref.PreferredRegions},
		{companyTypes, &pref.PreferredCompanyTypes},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
				return nil, err
			}
		}
	}

	return &pref, nil
}

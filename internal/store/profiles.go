// Package store provides the Postgres/Redis persistence layer shared by the
// matching and EOI workers. Profiles are read through a cache-aside Redis
// layer; everything else goes straight to Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bdmatch-workers/internal/common/database"
	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/models"
)

// ProfileStore reads partner and company profiles, products, and caller
// identities. Profile reads are cached; cache failures are logged and the
// read falls through to Postgres.
type ProfileStore struct {
	db    *sql.DB
	cache *database.RedisClient
	log   logger.Logger
	ttl   time.Duration
}

func NewProfileStore(db *sql.DB, cache *database.RedisClient, log logger.Logger, ttl time.Duration) *ProfileStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileStore{db: db, cache: cache, log: log, ttl: ttl}
}

func bdPartnerCacheKey(id string) string {
	return fmt.Sprintf("profile:bd_partner:%s", id)
}

func companyCacheKey(id string) string {
	return fmt.Sprintf("profile:company:%s", id)
}

// GetBdPartnerProfile returns the assembled partner profile view, expertise
// and market access included.
func (s *ProfileStore) GetBdPartnerProfile(ctx context.Context, id string) (*models.BdPartnerProfileView, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, bdPartnerCacheKey(id)); err == nil {
			var profile models.BdPartnerProfileView
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return &profile, nil
			}
		}
	}

	query := `
		SELECT id, user_id, is_verified, COALESCE(availability, ''), expertise, market_access
		FROM bd_partner_profiles
		WHERE id = $1`

	var profile models.BdPartnerProfileView
	var expertiseJSON, marketAccessJSON []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.IsVerified,
		&profile.Availability,
		&expertiseJSON,
		&marketAccessJSON,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewProfileNotFoundError("bd_partner", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_bd_partner_profile", err)
	}

	if len(expertiseJSON) > 0 {
		if err := json.Unmarshal(expertiseJSON, &profile.Expertise); err != nil {
			return nil, errors.NewQueryExecutionFailedError("decode_expertise", err)
		}
	}
	if len(marketAccessJSON) > 0 {
		if err := json.Unmarshal(marketAccessJSON, &profile.MarketAccess); err != nil {
			return nil, errors.NewQueryExecutionFailedError("decode_market_access", err)
		}
	}

	s.cacheProfile(ctx, bdPartnerCacheKey(id), &profile)
	return &profile, nil
}

// GetCompanyProfile returns the company profile view.
func (s *ProfileStore) GetCompanyProfile(ctx context.Context, id string) (*models.CompanyProfileView, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, companyCacheKey(id)); err == nil {
			var profile models.CompanyProfileView
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return &profile, nil
			}
		}
	}

	query := `
		SELECT id, user_id, name, COALESCE(industry, ''), COALESCE(region, ''),
		       COALESCE(business_type, ''), is_verified
		FROM company_profiles
		WHERE id = $1`

	var profile models.CompanyProfileView
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Industry,
		&profile.Region,
		&profile.BusinessType,
		&profile.IsVerified,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewProfileNotFoundError("company", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_company_profile", err)
	}

	s.cacheProfile(ctx, companyCacheKey(id), &profile)
	return &profile, nil
}

// GetProduct returns one product row.
func (s *ProfileStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT id, company_id, name, is_active FROM products WHERE id = $1`

	var product models.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.CompanyID,
		&product.Name,
		&product.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewProductNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_product", err)
	}
	return &product, nil
}

// ListVerifiedPartnerIDs enumerates verified partners for discovery. This is
// the Postgres path; the discovery worker prefers Elasticsearch and falls
// back here when the search cluster is unavailable.
func (s *ProfileStore) ListVerifiedPartnerIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM bd_partner_profiles WHERE is_verified = true ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_verified_partners", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan_verified_partner", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate_verified_partners", err)
	}
	return ids, nil
}

// GetIdentityByUserID resolves the marketplace profiles owned by a user.
func (s *ProfileStore) GetIdentityByUserID(ctx context.Context, userID string) (*models.Identity, error) {
	query := `
		SELECT u.id, COALESCE(u.email, ''),
		       COALESCE(bp.id, ''), COALESCE(cp.id, '')
		FROM users u
		LEFT JOIN bd_partner_profiles bp ON bp.user_id = u.id
		LEFT JOIN company_profiles cp ON cp.user_id = u.id
		WHERE u.id = $1`

	var identity models.Identity
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&identity.UserID,
		&identity.Email,
		&identity.BdPartnerID,
		&identity.CompanyID,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewUnauthorizedError(fmt.Sprintf("no user record for subject %s", userID))
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_identity", err)
	}
	return &identity, nil
}

// InvalidateBdPartnerProfile drops the cached partner profile.
func (s *ProfileStore) InvalidateBdPartnerProfile(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, bdPartnerCacheKey(id)); err != nil {
		s.log.Warn("Failed to invalidate partner profile cache", map[string]interface{}{
			"bdPartnerId": id,
			"error":       err.Error(),
		})
	}
}

func (s *ProfileStore) cacheProfile(ctx context.Context, key string, profile interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		s.log.Warn("Failed to cache profile", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

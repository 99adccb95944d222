package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/models"

	"github.com/lib/pq"
)

// EoiStore persists expressions of interest. Status transitions are written
// conditionally (guarded UPDATEs) so that two concurrent responders cannot
// both win.
type EoiStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewEoiStore(db *sql.DB, log logger.Logger) *EoiStore {
	return &EoiStore{db: db, log: log}
}

// Create inserts a new EOI row.
func (s *EoiStore) Create(ctx context.Context, eoi *models.Eoi) error {
	targetRegions, err := json.Marshal(eoi.TargetRegions)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	targetIndustries, err := json.Marshal(eoi.TargetIndustries)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	targetCustomerTypes, err := json.Marshal(eoi.TargetCustomerTypes)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	query := `
		INSERT INTO eois (
			id, bd_partner_id, company_id, initiator_type, product_id, eoi_type,
			status, title, description, proposed_commission_rate,
			expected_deal_size, exclusivity, timeline, target_regions,
			target_industries, target_customer_types, valid_from, valid_until,
			expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		          $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err = s.db.ExecContext(ctx, query,
		eoi.ID,
		nullableString(eoi.BdPartnerID),
		nullableString(eoi.CompanyID),
		string(eoi.InitiatorType),
		nullableString(eoi.ProductID),
		eoi.EoiType,
		string(eoi.Status),
		eoi.Title,
		eoi.Description,
		eoi.ProposedCommissionRate,
		eoi.ExpectedDealSize,
		eoi.Exclusivity,
		nullableString(eoi.Timeline),
		targetRegions,
		targetIndustries,
		targetCustomerTypes,
		eoi.ValidFrom,
		eoi.ValidUntil,
		eoi.ExpiresAt,
		eoi.CreatedAt,
		eoi.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const eoiSelect = `
	SELECT id, COALESCE(bd_partner_id, ''), COALESCE(company_id, ''),
	       initiator_type, COALESCE(product_id, ''), eoi_type, status,
	       title, COALESCE(description, ''), proposed_commission_rate,
	       expected_deal_size, exclusivity, COALESCE(timeline, ''),
	       target_regions, target_industries, target_customer_types,
	       COALESCE(response_message, ''), response_date,
	       COALESCE(reviewed_by, ''), valid_from, valid_until, expires_at,
	       created_at, updated_at
	FROM eois`

// GetByID returns one EOI.
func (s *EoiStore) GetByID(ctx context.Context, id string) (*models.Eoi, error) {
	eoi, err := scanEoi(s.db.QueryRowContext(ctx, eoiSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewEoiNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_eoi", err)
	}
	return eoi, nil
}

// UpdateDraft patches the mutable fields of a draft EOI. Returns the number
// of rows changed: zero means the EOI is no longer a draft (or is gone).
func (s *EoiStore) UpdateDraft(ctx context.Context, eoi *models.Eoi) (int64, error) {
	targetRegions, err := json.Marshal(eoi.TargetRegions)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("encode_target_regions", err)
	}
	targetIndustries, err := json.Marshal(eoi.TargetIndustries)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("encode_target_industries", err)
	}
	targetCustomerTypes, err := json.Marshal(eoi.TargetCustomerTypes)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("encode_target_customer_types", err)
	}

	query := `
		UPDATE eois SET
			title = $2, description = $3, proposed_commission_rate = $4,
			expected_deal_size = $5, exclusivity = $6, timeline = $7,
			target_regions = $8, target_industries = $9,
			target_customer_types = $10, valid_until = $11, updated_at = $12
		WHERE id = $1 AND status = 'draft'`

	res, err := s.db.ExecContext(ctx, query,
		eoi.ID,
		eoi.Title,
		eoi.Description,
		eoi.ProposedCommissionRate,
		eoi.ExpectedDealSize,
		eoi.Exclusivity,
		nullableString(eoi.Timeline),
		targetRegions,
		targetIndustries,
		targetCustomerTypes,
		eoi.ValidUntil,
		eoi.UpdatedAt,
	)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("update_draft_eoi", err)
	}
	return res.RowsAffected()
}

// MarkSent transitions a draft into sent, stamping the validity window.
// Returns zero rows when the EOI was not a draft.
func (s *EoiStore) MarkSent(ctx context.Context, id string, validFrom time.Time, validUntil, expiresAt *time.Time, now time.Time) (int64, error) {
	query := `
		UPDATE eois SET
			status = 'sent', valid_from = $2, valid_until = $3,
			expires_at = $4, updated_at = $5
		WHERE id = $1 AND status = 'draft'`

	res, err := s.db.ExecContext(ctx, query, id, validFrom, validUntil, expiresAt, now)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("mark_eoi_sent", err)
	}
	return res.RowsAffected()
}

// TransitionStatus conditionally moves an EOI from any of the given statuses
// to the target status. Zero rows means another writer won or the guard did
// not hold; the caller decides whether that is INVALID_STATE.
func (s *EoiStore) TransitionStatus(ctx context.Context, id string, from []models.EoiStatus, to models.EoiStatus, now time.Time) (int64, error) {
	fromStrs := make([]string, len(from))
	for i, st := range from {
		fromStrs[i] = string(st)
	}

	query := `
		UPDATE eois SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)`

	res, err := s.db.ExecContext(ctx, query, id, string(to), now, pq.Array(fromStrs))
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("transition_eoi_status", err)
	}
	return res.RowsAffected()
}

// RecordResponse accepts or rejects an open EOI in one guarded write. Zero
// rows means the EOI was already closed by a concurrent responder.
func (s *EoiStore) RecordResponse(ctx context.Context, id string, to models.EoiStatus, message, reviewedBy string, now time.Time) (int64, error) {
	query := `
		UPDATE eois SET
			status = $2, response_message = $3, response_date = $4,
			reviewed_by = $5, updated_at = $4
		WHERE id = $1 AND status IN ('sent', 'under_review')`

	res, err := s.db.ExecContext(ctx, query, id, string(to), message, now, reviewedBy)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("record_eoi_response", err)
	}
	return res.RowsAffected()
}

// ExpireOpen bulk-expires every open EOI whose expiry has passed. Returns
// the number of rows expired.
func (s *EoiStore) ExpireOpen(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE eois SET status = 'expired', updated_at = $1
		WHERE status IN ('sent', 'under_review')
		  AND expires_at IS NOT NULL AND expires_at <= $1`

	res, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("expire_open_eois", err)
	}
	return res.RowsAffected()
}

func scanEoi(row rowScanner) (*models.Eoi, error) {
	var eoi models.Eoi
	var initiatorType, status string
	var commissionRate, dealSize sql.NullFloat64
	var targetRegions, targetIndustries, targetCustomerTypes []byte
	var responseDate, validFrom, validUntil, expiresAt sql.NullTime

	err := row.Scan(
		&eoi.ID,
		&eoi.BdPartnerID,
		&eoi.CompanyID,
		&initiatorType,
		&eoi.ProductID,
		&eoi.EoiType,
		&status,
		&eoi.Title,
		&eoi.Description,
		&commissionRate,
		&dealSize,
		&eoi.Exclusivity,
		&eoi.Timeline,
		&targetRegions,
		&targetIndustries,
		&targetCustomerTypes,
		&eoi.ResponseMessage,
		&responseDate,
		&eoi.ReviewedBy,
		&validFrom,
		&validUntil,
		&expiresAt,
		&eoi.CreatedAt,
		&eoi.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	eoi.InitiatorType = models.InitiatorType(initiatorType)
	eoi.Status = models.EoiStatus(status)

	if commissionRate.Valid {
		eoi.ProposedCommissionRate = &commissionRate.Float64
	}
	if dealSize.Valid {
		eoi.ExpectedDealSize = &dealSize.Float64
	}

	for _, pair := range []struct {
		raw  []byte
		dest *[]string
	}{
		{targetRegions, &eoi.TargetRegions},
		{targetIndustries, &eoi.TargetIndustries},
		{targetCustomerTypes, &eoi.TargetCustomerTypes},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
				return nil, err
			}
		}
	}

	if responseDate.Valid {
		eoi.ResponseDate = &responseDate.Time
	}
	if validFrom.Valid {
		eoi.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		eoi.ValidUntil = &validUntil.Time
	}
	if expiresAt.Valid {
		eoi.ExpiresAt = &expiresAt.Time
	}

	return &eoi, nil
}

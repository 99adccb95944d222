// internal/workers/eoi/respond-eoi/handler_test.go
package respondeoi

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	userID string
}

func (v *stubVerifier) ResolveUserID(ctx context.Context, token string) (string, error) {
	return v.userID, nil
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	profiles := store.NewProfileStore(db, nil, log, time.Minute)
	handler := NewHandler(
		LoadConfig(),
		store.NewIdentityResolver(&stubVerifier{userID: "user-002"}, profiles),
		profiles,
		store.NewEoiStore(db, log),
		store.NewCommunicationStore(db, log),
		log,
	)
	return handler, mock, func() { db.Close() }
}

func expectIdentity(mock sqlmock.Sqlmock, bdPartnerID, companyID string) {
	mock.ExpectQuery(`SELECT u.id`).
		WithArgs("user-002").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "bd_partner_id", "company_id"}).
			AddRow("user-002", "responder@example.com", bdPartnerID, companyID))
}

func expectEoi(mock sqlmock.Sqlmock, status, initiatorType, bdPartnerID, companyID string) {
	empty, _ := json.Marshal([]string{})
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, COALESCE\(bd_partner_id`).
		WithArgs("eoi-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bd_partner_id", "company_id", "initiator_type", "product_id",
			"eoi_type", "status", "title", "description", "proposed_commission_rate",
			"expected_deal_size", "exclusivity", "timeline", "target_regions",
			"target_industries", "target_customer_types", "response_message",
			"response_date", "reviewed_by", "valid_from", "valid_until", "expires_at",
			"created_at", "updated_at",
		}).AddRow("eoi-001", bdPartnerID, companyID, initiatorType, "",
			"partnership", status, "Channel partner wanted", "", nil,
			nil, false, "", empty, empty, empty, "",
			nil, "", nil, nil, nil, now, now))
}

func expectOwnerCompanyProfile(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT id, user_id, name`).
		WithArgs("company-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "industry", "region", "business_type", "is_verified",
		}).AddRow("company-001", "user-010", "Acme GmbH", "software", "europe", "b2b", true))
}

func acceptInput() *Input {
	return &Input{
		AccessToken: "token",
		EoiID:       "eoi-001",
		Decision:    DecisionAccept,
		Message:     "Happy to move forward with this partnership.",
	}
}

func TestExecute_AcceptRecordsResponseAndCommunication(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectIdentity(mock, "partner-001", "")
	expectEoi(mock, "sent", "company", "partner-001", "company-001")
	mock.ExpectExec(`UPDATE eois SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectOwnerCompanyProfile(mock)
	mock.ExpectExec(`INSERT INTO eoi_communications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), acceptInput())

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "accepted", output.Status)
	assert.NotEmpty(t, output.ResponseDate)
	assert.NotEmpty(t, output.CommunicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RejectFromUnderReview(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectIdentity(mock, "partner-001", "")
	expectEoi(mock, "under_review", "company", "partner-001", "company-001")
	mock.ExpectExec(`UPDATE eois SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectOwnerCompanyProfile(mock)
	mock.ExpectExec(`INSERT INTO eoi_communications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	input := acceptInput()
	input.Decision = DecisionReject
	input.Message = "Not a fit for our current portfolio, sorry."

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "rejected", output.Status)
}

func TestExecute_InitiatorCannotRespond(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	// Caller is the initiating company itself.
	expectIdentity(mock, "", "company-001")
	expectEoi(mock, "sent", "company", "partner-001", "company-001")

	output, err := handler.Execute(context.Background(), acceptInput())

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, stdErr.Code)
}

func TestExecute_WrongAddresseeForbidden(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	// EOI is addressed to partner-001, caller owns partner-999.
	expectIdentity(mock, "partner-999", "")
	expectEoi(mock, "sent", "company", "partner-001", "company-001")

	_, err := handler.Execute(context.Background(), acceptInput())

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, stdErr.Code)
}

func TestExecute_ClosedEoiIsInvalidState(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectIdentity(mock, "partner-001", "")
	expectEoi(mock, "accepted", "company", "partner-001", "company-001")

	_, err := handler.Execute(context.Background(), acceptInput())

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidState, stdErr.Code)
}

func TestExecute_ConcurrentResponderLosesGuard(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectIdentity(mock, "partner-001", "")
	expectEoi(mock, "sent", "company", "partner-001", "company-001")
	mock.ExpectExec(`UPDATE eois SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := handler.Execute(context.Background(), acceptInput())

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidState, stdErr.Code)
}

func TestExecute_ShortMessageRejected(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()

	input := acceptInput()
	input.Message = "ok"

	output, err := handler.Execute(context.Background(), input)

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestExecute_CommunicationFailureKeepsTransition(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectIdentity(mock, "partner-001", "")
	expectEoi(mock, "sent", "company", "partner-001", "company-001")
	mock.ExpectExec(`UPDATE eois SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectOwnerCompanyProfile(mock)
	mock.ExpectExec(`INSERT INTO eoi_communications`).
		WillReturnError(context.DeadlineExceeded)

	output, err := handler.Execute(context.Background(), acceptInput())

	require.NoError(t, err)
	assert.Equal(t, "accepted", output.Status)
	assert.Empty(t, output.CommunicationID)
}

func TestExecute_UnsweptExpiredEoiIsInvalidState(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	expectIdentity(mock, "partner-001", "")

	// Still "sent" in the table but past expires_at: the sweep has not
	// run yet, so the guard must close the window itself.
	empty, _ := json.Marshal([]string{})
	now := time.Now().UTC()
	expired := now.Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, COALESCE\(bd_partner_id`).
		WithArgs("eoi-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bd_partner_id", "company_id", "initiator_type", "product_id",
			"eoi_type", "status", "title", "description", "proposed_commission_rate",
			"expected_deal_size", "exclusivity", "timeline", "target_regions",
			"target_industries", "target_customer_types", "response_message",
			"response_date", "reviewed_by", "valid_from", "valid_until", "expires_at",
			"created_at", "updated_at",
		}).AddRow("eoi-001", "partner-001", "company-001", "company", "",
			"partnership", "sent", "Channel partner wanted", "", nil,
			nil, false, "", empty, empty, empty, "",
			nil, "", nil, nil, expired, now, now))

	_, err := handler.Execute(context.Background(), acceptInput())

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidState, stdErr.Code)
}

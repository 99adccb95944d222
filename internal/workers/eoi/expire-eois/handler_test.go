// internal/workers/eoi/expire-eois/handler_test.go
package expireeois

import (
	"context"
	"testing"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	handler := NewHandler(LoadConfig(), store.NewEoiStore(db, log), log)
	return handler, mock, func() { db.Close() }
}

func TestExecute_SweepsExpiredEois(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE eois SET status = 'expired'`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, int64(3), output.ExpiredCount)
	assert.NotEmpty(t, output.SweptAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NothingToExpire(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE eois SET status = 'expired'`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, int64(0), output.ExpiredCount)
}

func TestExecute_ExplicitAsOf(t *testing.T) {
	handler, mock, cleanup := newTestHandler(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE eois SET status = 'expired'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		AsOf: "2026-08-01T00:00:00Z",
	})

	require.NoError(t, err)
	assert.Equal(t, "2026-08-01T00:00:00Z", output.SweptAt)
}

func TestExecute_BadAsOfRejected(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()

	output, err := handler.Execute(context.Background(), &Input{AsOf: "yesterday"})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

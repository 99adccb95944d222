// internal/workers/eoi/search-open-eois/handler_test.go
package searchopeneois

import (
	"context"
	"testing"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_NoSearchClusterFails(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSearchQueryFailed, stdErr.Code)
}

func TestPageSize(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	assert.Equal(t, 20, handler.pageSize(0))
	assert.Equal(t, 20, handler.pageSize(-5))
	assert.Equal(t, 35, handler.pageSize(35))
	assert.Equal(t, 100, handler.pageSize(500))
}

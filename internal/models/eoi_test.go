// internal/models/eoi_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEoiStatusLifecycle(t *testing.T) {
	for _, s := range []EoiStatus{EoiStatusAccepted, EoiStatusRejected, EoiStatusWithdrawn, EoiStatusExpired} {
		assert.True(t, s.IsTerminal(), string(s))
		assert.False(t, s.IsOpenForResponse(), string(s))
	}
	for _, s := range []EoiStatus{EoiStatusDraft, EoiStatusSent, EoiStatusUnderReview} {
		assert.False(t, s.IsTerminal(), string(s))
	}
	assert.True(t, EoiStatusSent.IsOpenForResponse())
	assert.True(t, EoiStatusUnderReview.IsOpenForResponse())
	assert.False(t, EoiStatusDraft.IsOpenForResponse())
}

func TestIsPubliclyVisible(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&Eoi{Status: EoiStatusSent}).IsPubliclyVisible(now))
	assert.True(t, (&Eoi{Status: EoiStatusUnderReview, ExpiresAt: &future}).IsPubliclyVisible(now))

	// Open by status but already past its window.
	assert.False(t, (&Eoi{Status: EoiStatusSent, ExpiresAt: &past}).IsPubliclyVisible(now))
	assert.False(t, (&Eoi{Status: EoiStatusSent, ExpiresAt: &now}).IsPubliclyVisible(now))

	assert.False(t, (&Eoi{Status: EoiStatusDraft}).IsPubliclyVisible(now))
	assert.False(t, (&Eoi{Status: EoiStatusWithdrawn, ExpiresAt: &future}).IsPubliclyVisible(now))
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiryEnd(t *testing.T) {
	end, err := ExpiryEnd("01/25")
	require.NoError(t, err)
	// First instant after the last calendar day of January 2025.
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), end)

	end, err = ExpiryEnd("12/25")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestExpiryEndRejectsMalformed(t *testing.T) {
	for _, expiry := range []string{"", "13/25", "00/25", "1/25", "01-25", "01/2025", "aa/bb"} {
		_, err := ExpiryEnd(expiry)
		assert.Error(t, err, "expiry %q", expiry)
	}
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expiry  string
		now     time.Time
		expired bool
	}{
		{"mid-month of expiry month", "06/25", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), false},
		{"last second of expiry month", "06/25", time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC), false},
		{"first instant after month end", "06/25", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"long past", "01/20", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"far future", "12/40", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), false},
		{"malformed counts as expired", "garbage", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, IsExpired(tt.expiry, tt.now))
		})
	}
}

func TestRefreshStatus(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	active := &Card{Expiry: "12/30", Status: StatusActive}
	status, changed := RefreshStatus(active, now)
	assert.Equal(t, StatusActive, status)
	assert.False(t, changed)

	blocked := &Card{Expiry: "12/30", Status: StatusBlocked}
	status, changed = RefreshStatus(blocked, now)
	assert.Equal(t, StatusBlocked, status)
	assert.False(t, changed)

	stale := &Card{Expiry: "06/25", Status: StatusActive}
	status, changed = RefreshStatus(stale, now)
	assert.Equal(t, StatusExpired, status)
	assert.True(t, changed)

	staleBlocked := &Card{Expiry: "06/25", Status: StatusBlocked}
	status, changed = RefreshStatus(staleBlocked, now)
	assert.Equal(t, StatusExpired, status)
	assert.True(t, changed)
}

func TestRefreshStatusIdempotentOnExpired(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	card := &Card{Expiry: "06/25", Status: StatusActive}

	status, changed := RefreshStatus(card, now)
	require.Equal(t, StatusExpired, status)
	require.True(t, changed)
	card.Status = status

	// A second pass reports the same terminal state with nothing to persist.
	status, changed = RefreshStatus(card, now)
	assert.Equal(t, StatusExpired, status)
	assert.False(t, changed)
}

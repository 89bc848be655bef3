package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankcards/internal/apperr"
)

func TestOrderByClause(t *testing.T) {
	tests := []struct {
		sortBy    string
		direction string
		want      string
	}{
		{"id", "asc", "id ASC"},
		{"createdAt", "desc", "created_at DESC"},
		{"balance", "ASC", "balance ASC"},
		{"status", "Desc", "status DESC"},
	}
	for _, tt := range tests {
		clause, err := OrderByClause(tt.sortBy, tt.direction)
		require.NoError(t, err)
		assert.Equal(t, tt.want, clause)
	}
}

func TestOrderByClauseRejectsUnknownInput(t *testing.T) {
	// Anything outside the allow-list must fail validation instead of
	// reaching the SQL string.
	_, err := OrderByClause("holder", "asc")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = OrderByClause("created_at; DROP TABLE cards", "asc")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = OrderByClause("id", "sideways")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

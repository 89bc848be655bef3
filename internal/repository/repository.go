// Package repository provides database operations backed by PostgreSQL.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"bankcards/internal/apperr"
)

// sortColumns is the allow-list of card sort fields. Sort input is mapped
// through it and never interpolated into SQL directly.
var sortColumns = map[string]string{
	"id":        "id",
	"createdAt": "created_at",
	"balance":   "balance",
	"status":    "status",
}

// OrderByClause maps a caller-supplied sort field and direction to a SQL
// ORDER BY fragment. Unknown fields and directions fail validation.
func OrderByClause(sortBy, direction string) (string, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		return "", apperr.Validationf("unknown sort field %q", sortBy)
	}
	switch strings.ToLower(direction) {
	case "asc":
		return column + " ASC", nil
	case "desc":
		return column + " DESC", nil
	}
	return "", apperr.Validationf("sort direction must be asc or desc, got %q", direction)
}

// wrapDBError translates driver errors into the error taxonomy. Unique
// violations become conflicts, lock waits and deadlocks become retryable
// contention, everything else is a storage failure.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return apperr.Conflictf("duplicate value")
		case "55P03", "40P01": // lock_not_available, deadlock_detected
			return fmt.Errorf("%w: %s", apperr.ErrContention, op)
		}
	}
	return apperr.Storagef("%s: %v", op, err)
}

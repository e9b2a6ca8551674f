package store

import (
	"errors"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by the data access layer. Services translate
// these into the API error taxonomy.
var (
	// ErrNotFound means the queried row does not exist within the caller's
	// visibility filter
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means an insert violated a uniqueness constraint
	ErrDuplicate = errors.New("duplicate")
)

// isUniqueViolation detects a uniqueness-constraint failure for either
// supported driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

package service

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// isUniqueConstraintViolation reports whether err (possibly wrapped) is a
// SQLite unique or primary-key constraint violation, the only race the
// Ingestion Service's per-event fallback treats as accepted-duplicate rather
// than rejected.
func isUniqueConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

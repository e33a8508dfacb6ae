package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

type (
	// DuplicateKey is returned when an insert violates a unique constraint.
	DuplicateKey struct {
		Table string
		Key   string
	}

	MissingUniqueIndex struct {
		Table  string
		Column string
	}
)

func (d DuplicateKey) Error() string {
	return fmt.Sprintf("duplicate key %v on table %v", d.Key, d.Table)
}

func (DuplicateKey) Is(target error) bool {
	_, ok := target.(DuplicateKey)
	return ok
}

func (m MissingUniqueIndex) Error() string {
	return fmt.Sprintf("table %v must have an unique index on %v", m.Table, m.Column)
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.Code == sqlite3.ErrConstraint &&
		(sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

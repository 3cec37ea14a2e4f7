package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no visible row. Callers
	// cannot distinguish absence from rows hidden by tenant scoping.
	ErrNotFound = errors.New("not found")
	// ErrMultipleRows is returned by single-row lookups that matched more than one row.
	ErrMultipleRows = errors.New("multiple rows")
	// ErrDuplicate wraps unique constraint violations.
	ErrDuplicate = errors.New("duplicate")
)

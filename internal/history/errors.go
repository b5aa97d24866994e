package history

import "errors"

var (
	// ErrNotFound indicates no entry matched the requested id or prefix.
	ErrNotFound = errors.New("history entry not found")
	// ErrAmbiguousID indicates an id prefix matched more than one entry.
	ErrAmbiguousID = errors.New("history id prefix is ambiguous")
	// ErrSchemaMismatch indicates the database was written by a different schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

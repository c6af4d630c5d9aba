package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so handlers can translate them into domain errors.
//
// - ErrNotFound: row with the requested identity does not exist
// - ErrAlreadyUsed: name or title is already taken by another row
// - ErrConflict: a store constraint (foreign key, restrict) rejected the write
// - ErrUnavailable: the store could not be reached or timed out
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

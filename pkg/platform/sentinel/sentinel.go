package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors; stores never
// decide HTTP semantics.
//
//   - ErrNotFound: the row/record does not exist
//   - ErrConflict: the requested transition is illegal given current state
//     (double entry, exit without an open entry)
//   - ErrInvalidState: entity exists but is in the wrong state for the operation
//   - ErrUnavailable: backing resource temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

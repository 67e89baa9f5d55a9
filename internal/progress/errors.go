package progress

import "errors"

var (
	// ErrInvalidUpdate marks a rejected update: empty ids or scores outside [0,100].
	ErrInvalidUpdate = errors.New("invalid progress update")
	// ErrNotFound is returned when a user has no record for a module.
	ErrNotFound = errors.New("progress record not found")
	// ErrStorage is the single failure class for anything that goes wrong in a
	// store. Callers are expected to resubmit.
	ErrStorage = errors.New("progress storage failure")
)

package repositories

import "errors"

var (
	// ErrNotFound maps sql.ErrNoRows for single-row lookups.
	ErrNotFound = errors.New("not found")
	// ErrNotPending is returned by terminal-state transitions when the row is
	// no longer pending (already approved/rejected, or gone).
	ErrNotPending = errors.New("submission is not pending")
)

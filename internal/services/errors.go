// internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"
)

// The error taxonomy the request layer maps onto HTTP statuses.
// Validation and eligibility failures are detected before any mutation and
// never leave partial state behind.

// ValidationError: malformed or missing input. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// EligibilityError: a lifecycle guard failed (task expired, limit reached,
// collectible already claimed or not available today). Worded for end users.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string { return e.Reason }

// ConflictError: a transition raced an already-terminal submission.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// ErrNotFound: the referenced task/submission/user does not exist.
var ErrNotFound = errors.New("not found")

// ErrUpstreamTimeout: the data store blew its budget. Reads fall back to a
// stale cache entry when one exists; otherwise the caller may retry.
var ErrUpstreamTimeout = errors.New("data store timed out")

// UpstreamError: the store answered with a definitive error. Not retried
// blindly - a retry could double-apply a mutation.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("data store error: %v", e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func eligibilityf(format string, args ...interface{}) error {
	return &EligibilityError{Reason: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// upstream classifies a raw repository error into the taxonomy.
func upstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	return &UpstreamError{Err: err}
}

// isTimeout reports whether a read may fall back to stale cache data.
func isTimeout(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, context.DeadlineExceeded)
}

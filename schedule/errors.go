/*
errors.go - Error taxonomy for the scheduling core

PURPOSE:
  Three error kinds cross the core's boundary:
  - InvalidInput: malformed people/tasks/stores/dates; never retried
  - RepositoryFailure: the storage layer could not satisfy a read/write;
    retry policy belongs to the facade, not the core
  - Cancelled: the caller's context fired between day iterations or
    backtracking branches

  Infeasibility is NOT an error. An unsatisfiable day is a normal outcome,
  reported through HorizonSchedule.Feasible and the deficit lists.

USAGE:
  if schedule.IsInvalidInput(err) { ... 400 ... }
  if schedule.IsCancelled(err)    { ... caller decided to stop ... }

SEE ALSO:
  - factory: wraps parse failures as InputError
  - api/handlers.go: maps kinds to HTTP statuses
*/
package schedule

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput marks malformed payloads: missing fields, non-positive
	// requirement counts, unparseable dates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRepository marks a storage-layer failure surfaced through the
	// Repository interface.
	ErrRepository = errors.New("repository failure")

	// ErrCancelled marks cooperative cancellation of a solve. Days committed
	// before the signal stay committed.
	ErrCancelled = errors.New("solve cancelled")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InputError reports which field of which payload was malformed.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// RepositoryError wraps a storage failure with the operation that failed.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return ErrRepository }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsRepositoryFailure(err error) bool {
	return errors.Is(err, ErrRepository)
}

// IsCancelled covers both the core's sentinel and raw context errors.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// cancelErr wraps a context error in the core's sentinel.
func cancelErr(ctx context.Context) error {
	return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
}

/*
repo.go - Storage contract consumed by the core

PURPOSE:
  The narrow interface the scheduling core needs from persistence. The core
  never retries repository failures; it wraps them as RepositoryError and
  surfaces them. Implementations live outside this package (store/sqlite).

DATE CONVENTIONS:
  Dates crossing this boundary are calendar days (ISO-8601 in storage);
  epochs are integer seconds in UTC; skill sets are unordered.

SEE ALSO:
  - store/sqlite/sqlite.go: the SQLite implementation
  - api/handlers.go: composes repository reads with the driver
*/
package schedule

import "context"

// =============================================================================
// PTO RECORD STATES
// =============================================================================

type PTOStatus string

const (
	PTOPending  PTOStatus = "pending"
	PTOApproved PTOStatus = "approved"
	PTODenied   PTOStatus = "denied"
)

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository enumerates departments, materializes people and tasks, and
// keeps the global PTO ledger. Departments are scheduled in isolation.
type Repository interface {
	// ListDepartments returns all department names.
	ListDepartments(ctx context.Context) ([]string, error)

	// ListPeople returns the people of one department, skills materialized.
	ListPeople(ctx context.Context, department string) ([]Person, error)

	// ListTasksOverlapping returns tasks whose active interval intersects
	// [start, end] for the department.
	ListTasksOverlapping(ctx context.Context, department string, start, end Date) ([]Task, error)

	// ReadPTO returns the approved absences in [start, end] as a PTO map.
	// Pending and denied records are not visible to scheduling.
	ReadPTO(ctx context.Context, start, end Date) (PTOMap, error)

	// WritePTO idempotently upserts records keyed (person, day).
	WritePTO(ctx context.Context, person PersonID, days []Date, status PTOStatus) error

	// DeletePTO idempotently removes records keyed (person, day).
	DeletePTO(ctx context.Context, person PersonID, days []Date) error
}

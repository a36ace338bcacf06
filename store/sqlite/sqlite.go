/*
Package sqlite provides the SQLite-backed schedule.Repository.

PURPOSE:
  Persists the scheduling universe (departments, people with skills, tasks
  with per-skill requirements) and the global PTO ledger. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  schedule.Repository: department/people/task reads, PTO ledger writes

KEY TABLES:
  departments:       Department names
  people:            Person records, keyed by id
  person_skills:     Skill membership, one row per (person, skill)
  tasks:             Task intervals as epoch seconds
  task_requirements: Per-skill headcount, one row per (task, skill)
  pto_records:       PTO ledger keyed (person_id, day), with status

PTO VISIBILITY:
  Only rows with status 'approved' feed scheduling. Pending requests exist
  for admission control; denied rows are kept for auditability. Upserts are
  idempotent on (person_id, day).

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - schedule/repo.go: Interface definition
  - api/handlers.go: Composes repository reads with the horizon driver
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/shift-engine/schedule"
)

// Store implements schedule.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ schedule.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL REFERENCES departments(name)
	);

	CREATE INDEX IF NOT EXISTS idx_people_department
		ON people(department);

	CREATE TABLE IF NOT EXISTS person_skills (
		person_id TEXT NOT NULL REFERENCES people(id),
		skill TEXT NOT NULL,
		PRIMARY KEY (person_id, skill)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL REFERENCES departments(name),
		start_ts INTEGER NOT NULL,
		end_ts INTEGER NOT NULL,
		CHECK (end_ts > start_ts)
	);

	-- Interval-overlap reads are the hot path
	CREATE INDEX IF NOT EXISTS idx_tasks_department_interval
		ON tasks(department, start_ts, end_ts);

	CREATE TABLE IF NOT EXISTS task_requirements (
		task_id TEXT NOT NULL REFERENCES tasks(id),
		skill TEXT NOT NULL,
		count INTEGER NOT NULL CHECK (count > 0),
		PRIMARY KEY (task_id, skill)
	);

	-- One row per (person, day); status transitions happen via upsert
	CREATE TABLE IF NOT EXISTS pto_records (
		person_id TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'denied')),
		PRIMARY KEY (person_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_pto_day_status
		ON pto_records(day, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DEPARTMENTS AND PEOPLE
// =============================================================================

// ListDepartments returns all department names, sorted.
func (s *Store) ListDepartments(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM departments ORDER BY name`)
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "list departments", Err: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan department", Err: err}
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "list departments", Err: err}
	}
	return out, nil
}

// ListPeople returns the people of one department with skills materialized.
func (s *Store) ListPeople(ctx context.Context, department string) ([]schedule.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM people WHERE department = ? ORDER BY id`, department)
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "list people", Err: err}
	}
	defer rows.Close()

	var people []schedule.Person
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan person", Err: err}
		}
		people = append(people, schedule.Person{
			ID:     schedule.PersonID(id),
			Name:   name,
			Skills: schedule.NewSkillSet(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "list people", Err: err}
	}

	for i := range people {
		skills, err := s.skillsOf(ctx, people[i].ID)
		if err != nil {
			return nil, err
		}
		people[i].Skills = skills
	}
	return people, nil
}

func (s *Store) skillsOf(ctx context.Context, person schedule.PersonID) (schedule.SkillSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill FROM person_skills WHERE person_id = ?`, string(person))
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "read skills", Err: err}
	}
	defer rows.Close()

	set := schedule.NewSkillSet()
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan skill", Err: err}
		}
		set[skill] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "read skills", Err: err}
	}
	return set, nil
}

// =============================================================================
// TASKS
// =============================================================================

// ListTasksOverlapping returns tasks whose interval intersects [start, end].
// The comparison uses UTC day bounds; a task ending exactly at a day's start
// is not active on that day.
func (s *Store) ListTasksOverlapping(ctx context.Context, department string, start, end schedule.Date) ([]schedule.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cal := schedule.FixedOffsetCalendar(0)
	lo, _ := cal.DayBounds(start)
	_, hi := cal.DayBounds(end)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, start_ts, end_ts FROM tasks
		 WHERE department = ? AND start_ts < ? AND end_ts > ?
		 ORDER BY id`, department, hi, lo)
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "list tasks", Err: err}
	}
	defer rows.Close()

	var tasks []schedule.Task
	for rows.Next() {
		var t schedule.Task
		var id string
		if err := rows.Scan(&id, &t.Name, &t.StartTS, &t.EndTS); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan task", Err: err}
		}
		t.ID = schedule.TaskID(id)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "list tasks", Err: err}
	}

	for i := range tasks {
		reqs, err := s.requirementsOf(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Requirements = reqs
	}
	return tasks, nil
}

func (s *Store) requirementsOf(ctx context.Context, task schedule.TaskID) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill, count FROM task_requirements WHERE task_id = ?`, string(task))
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "read requirements", Err: err}
	}
	defer rows.Close()

	reqs := make(map[string]int)
	for rows.Next() {
		var skill string
		var count int
		if err := rows.Scan(&skill, &count); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan requirement", Err: err}
		}
		reqs[skill] = count
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "read requirements", Err: err}
	}
	return reqs, nil
}

// =============================================================================
// PTO LEDGER
// =============================================================================

// ReadPTO returns the approved absences in [start, end] as a PTO map.
func (s *Store) ReadPTO(ctx context.Context, start, end schedule.Date) (schedule.PTOMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id, day FROM pto_records
		 WHERE status = 'approved' AND day >= ? AND day <= ?`,
		start.String(), end.String())
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "read pto", Err: err}
	}
	defer rows.Close()

	out := schedule.PTOMap{}
	for rows.Next() {
		var pid, raw string
		if err := rows.Scan(&pid, &raw); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan pto", Err: err}
		}
		day, err := schedule.ParseDate(raw)
		if err != nil {
			return nil, &schedule.RepositoryError{Op: "parse pto day", Err: err}
		}
		out.Add(day, schedule.PersonID(pid))
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "read pto", Err: err}
	}
	return out, nil
}

// ListPTO returns all ledger rows with a given status, person ids sorted per
// day. Used by the API surface to show pending requests.
func (s *Store) ListPTO(ctx context.Context, status schedule.PTOStatus) (schedule.PortablePTO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id, day FROM pto_records WHERE status = ?`, string(status))
	if err != nil {
		return nil, &schedule.RepositoryError{Op: "list pto", Err: err}
	}
	defer rows.Close()

	out := schedule.PortablePTO{}
	for rows.Next() {
		var pid, day string
		if err := rows.Scan(&pid, &day); err != nil {
			return nil, &schedule.RepositoryError{Op: "scan pto", Err: err}
		}
		out[day] = append(out[day], pid)
	}
	if err := rows.Err(); err != nil {
		return nil, &schedule.RepositoryError{Op: "list pto", Err: err}
	}
	for day := range out {
		sort.Strings(out[day])
	}
	return out, nil
}

// WritePTO idempotently upserts records keyed (person, day). Re-writing an
// existing (person, day) moves it to the new status.
func (s *Store) WritePTO(ctx context.Context, person schedule.PersonID, days []schedule.Date, status schedule.PTOStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &schedule.RepositoryError{Op: "write pto", Err: err}
	}
	defer tx.Rollback()

	for _, day := range days {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO pto_records (person_id, day, status) VALUES (?, ?, ?)
			 ON CONFLICT(person_id, day) DO UPDATE SET status = excluded.status`,
			string(person), day.String(), string(status))
		if err != nil {
			return &schedule.RepositoryError{Op: "write pto", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &schedule.RepositoryError{Op: "write pto", Err: err}
	}
	return nil
}

// DeletePTO idempotently removes records keyed (person, day).
func (s *Store) DeletePTO(ctx context.Context, person schedule.PersonID, days []schedule.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &schedule.RepositoryError{Op: "delete pto", Err: err}
	}
	defer tx.Rollback()

	for _, day := range days {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM pto_records WHERE person_id = ? AND day = ?`,
			string(person), day.String())
		if err != nil {
			return &schedule.RepositoryError{Op: "delete pto", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &schedule.RepositoryError{Op: "delete pto", Err: err}
	}
	return nil
}

// =============================================================================
// SEEDING
// =============================================================================

// SaveDepartment inserts a department if it does not exist.
func (s *Store) SaveDepartment(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO departments (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return &schedule.RepositoryError{Op: "save department", Err: err}
	}
	return nil
}

// SavePerson upserts a person and replaces their skill rows.
func (s *Store) SavePerson(ctx context.Context, department string, p schedule.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &schedule.RepositoryError{Op: "save person", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO people (id, name, department) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, department = excluded.department`,
		string(p.ID), p.Name, department)
	if err != nil {
		return &schedule.RepositoryError{Op: "save person", Err: err}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM person_skills WHERE person_id = ?`, string(p.ID)); err != nil {
		return &schedule.RepositoryError{Op: "save person", Err: err}
	}
	for _, skill := range p.Skills.Sorted() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO person_skills (person_id, skill) VALUES (?, ?)`,
			string(p.ID), skill); err != nil {
			return &schedule.RepositoryError{Op: "save person", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &schedule.RepositoryError{Op: "save person", Err: err}
	}
	return nil
}

// SaveTask upserts a task and replaces its requirement rows.
func (s *Store) SaveTask(ctx context.Context, department string, t schedule.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &schedule.RepositoryError{Op: "save task", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, name, department, start_ts, end_ts) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			start_ts = excluded.start_ts,
			end_ts = excluded.end_ts`,
		string(t.ID), t.Name, department, t.StartTS, t.EndTS)
	if err != nil {
		return &schedule.RepositoryError{Op: "save task", Err: err}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM task_requirements WHERE task_id = ?`, string(t.ID)); err != nil {
		return &schedule.RepositoryError{Op: "save task", Err: err}
	}
	for skill, count := range t.Requirements {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_requirements (task_id, skill, count) VALUES (?, ?, ?)`,
			string(t.ID), skill, count); err != nil {
			return &schedule.RepositoryError{Op: "save task", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &schedule.RepositoryError{Op: "save task", Err: err}
	}
	return nil
}

// Reset clears all tables. Intended for tests and scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM pto_records;
		DELETE FROM task_requirements;
		DELETE FROM tasks;
		DELETE FROM person_skills;
		DELETE FROM people;
		DELETE FROM departments;
	`)
	if err != nil {
		return &schedule.RepositoryError{Op: "reset", Err: err}
	}
	return nil
}

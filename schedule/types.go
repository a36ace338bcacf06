/*
Package schedule is the workforce scheduling core.

PURPOSE:
  For each calendar day in a planning horizon, decide which people are
  assigned to which active tasks so that every task's per-skill headcount is
  met exactly, subject to hard constraints:
  - one task per person per day
  - at most 5 worked days in any 7 consecutive calendar days
  - no assignments on approved PTO days

KEY CONCEPTS IN THIS FILE (types.go):
  - Person: identifier, display name, skill set, prior-week workload
  - Task: identifier, half-open active interval, daily per-skill headcounts
  - Assignment: (day, person, task) plus the skills contributed
  - DaySchedule / HorizonSchedule: solver output
  - PTOMap: per-day sets of absent people

DESIGN PRINCIPLES:
  1. Immutability: Person and Task are read-only inputs to a solve
  2. Identifiers, not pointers: schedules reference people and tasks by id,
     keeping the output an acyclic tree
  3. Determinism: byte-identical inputs produce byte-identical schedules;
     every ordering in this package is a total order

SEE ALSO:
  - daysolver.go: single-day constraint solver
  - driver.go: horizon iteration and commit sequencing
  - planstore.go: the rolling-window ledger
*/
package schedule

import (
	"sort"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PersonID string
type TaskID string

// =============================================================================
// SKILL SET
// =============================================================================

// SkillSet is an unordered collection of case-sensitive skill tags.
type SkillSet map[string]struct{}

func NewSkillSet(skills ...string) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}

func (ss SkillSet) Has(skill string) bool {
	_, ok := ss[skill]
	return ok
}

// Sorted returns the tags in ascending order, for deterministic output.
func (ss SkillSet) Sorted() []string {
	out := make([]string, 0, len(ss))
	for s := range ss {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// PERSON
// =============================================================================

// Person is a schedulable worker. PreworkedInLast6 counts how many of the six
// days immediately preceding the horizon start the person already worked,
// clamped to [0, 5] at parse time.
type Person struct {
	ID               PersonID
	Name             string
	Skills           SkillSet
	PreworkedInLast6 int
}

// =============================================================================
// TASK
// =============================================================================

// Task is active over the half-open interval [StartTS, EndTS) on the absolute
// timeline. Requirements are daily per-skill headcounts, identical for every
// active day.
type Task struct {
	ID           TaskID
	Name         string
	StartTS      int64
	EndTS        int64
	Requirements map[string]int
}

// ActiveOn reports whether the task's interval intersects day d's local
// bounds: start_ts < end_of_day AND end_ts > start_of_day.
func (t Task) ActiveOn(cal Calendar, d Date) bool {
	dayStart, dayEnd := cal.DayBounds(d)
	return t.StartTS < dayEnd && t.EndTS > dayStart
}

// TotalRequired is the summed headcount across skills.
func (t Task) TotalRequired() int {
	total := 0
	for _, c := range t.Requirements {
		total += c
	}
	return total
}

// RequiredSkills returns the requirement keys in ascending order.
func (t Task) RequiredSkills() []string {
	out := make([]string, 0, len(t.Requirements))
	for s := range t.Requirements {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// PTO MAP
// =============================================================================

// PTOMap lists, per calendar day, the people who must not be assigned.
type PTOMap map[Date]map[PersonID]struct{}

func (m PTOMap) Add(day Date, person PersonID) {
	set, ok := m[day]
	if !ok {
		set = make(map[PersonID]struct{})
		m[day] = set
	}
	set[person] = struct{}{}
}

// OnDay returns the absent set for a day; nil when nobody is absent.
func (m PTOMap) OnDay(day Date) map[PersonID]struct{} {
	return m[day]
}

func (m PTOMap) Contains(day Date, person PersonID) bool {
	_, ok := m[day][person]
	return ok
}

// Clone returns an independent deep copy.
func (m PTOMap) Clone() PTOMap {
	out := make(PTOMap, len(m))
	for day, set := range m {
		for pid := range set {
			out.Add(day, pid)
		}
	}
	return out
}

// Merge unions other into m. A day may list several people.
func (m PTOMap) Merge(other PTOMap) {
	for day, set := range other {
		for pid := range set {
			m.Add(day, pid)
		}
	}
}

// =============================================================================
// ASSIGNMENTS AND SCHEDULES
// =============================================================================

// Assignment places one person on one task for one day, with the ordered
// tuple of skills that person contributes.
type Assignment struct {
	Day               Date     `json:"day"`
	PersonID          PersonID `json:"person_id"`
	TaskID            TaskID   `json:"task_id"`
	SkillsContributed []string `json:"skills_contributed"`
}

// TaskCoverage is one day's coverage record for one task: per required skill,
// the people covering it (length equals the required count), plus the reverse
// index person -> skills contributed. People keeps the assignment order so
// flattening survives a JSON round trip.
type TaskCoverage struct {
	TaskID        TaskID                `json:"task_id"`
	TaskName      string                `json:"task_name"`
	SkillCoverage map[string][]PersonID `json:"skill_coverage"`
	Contributions map[PersonID][]string `json:"people_contributions"`
	People        []PersonID            `json:"people"`
}

// AssignedPeople returns the people on this task in assignment order.
func (tc TaskCoverage) AssignedPeople() []PersonID {
	return tc.People
}

// DaySchedule is the ordered list of per-task coverage records for one day.
// Days with no active tasks (or skipped future days) carry no records.
type DaySchedule struct {
	Date     Date           `json:"date"`
	Coverage []TaskCoverage `json:"assignments"`
}

// Assignments flattens the coverage records into Assignment values, tasks in
// record order, people in assignment order.
func (ds DaySchedule) Assignments() []Assignment {
	var out []Assignment
	for _, tc := range ds.Coverage {
		for _, pid := range tc.People {
			skills := tc.Contributions[pid]
			out = append(out, Assignment{
				Day:               ds.Date,
				PersonID:          pid,
				TaskID:            tc.TaskID,
				SkillsContributed: append([]string(nil), skills...),
			})
		}
	}
	return out
}

// DeficitReport maps task display name -> skill -> uncovered count for an
// infeasible day. Only positive residuals appear.
type DeficitReport map[string]map[string]int

// DayDeficit pairs an infeasible day with its residual deficits.
type DayDeficit struct {
	Date     Date          `json:"date"`
	Deficits DeficitReport `json:"deficits"`
}

// HorizonSchedule is the result of driving a full horizon. Feasible is the
// authoritative signal; when false, Violations names every failed day and
// the day schedules may have been blanked (source-compatible behavior).
type HorizonSchedule struct {
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	TZ          string        `json:"tz"`
	CurrentTS   int64         `json:"current_ts"`
	AllowFuture bool          `json:"allow_future"`
	Feasible    bool          `json:"feasible"`
	Violations  []string      `json:"violations"`
	Days        []DaySchedule `json:"days"`
	Unsatisfied []DayDeficit  `json:"unsatisfied,omitempty"`
}

// Assignments flattens all days in order.
func (hs *HorizonSchedule) Assignments() []Assignment {
	var out []Assignment
	for _, ds := range hs.Days {
		out = append(out, ds.Assignments()...)
	}
	return out
}

// =============================================================================
// DETERMINISTIC INPUT ORDERING
// =============================================================================

// SortPeople orders people by id ascending. Solver and driver apply this to
// every people slice they receive so insertion order never leaks into output.
func SortPeople(people []Person) []Person {
	out := append([]Person(nil), people...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortTasks orders tasks by id ascending.
func SortTasks(tasks []Task) []Task {
	out := append([]Task(nil), tasks...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

/*
driver.go - Horizon iteration and commit sequencing

PURPOSE:
  Drives the DaySolver across a horizon of consecutive days, committing each
  successful day into the PlanStore so the rolling window tightens as the
  horizon advances. Day N+1 always observes the post-commit state of day N.

PER-DAY SEQUENCE:
  1. Active tasks for the day (none -> empty DaySchedule)
  2. Future days are skipped when AllowFuture is false (empty DaySchedule,
     no commit)
  3. Solve
  4. Success: commit assignments, append the day's coverage
  5. Failure: record a violation string, append an empty DaySchedule,
     keep going

VARIANTS:
  ScheduleWeek  seven days from a Monday; returns partial assignments and
                per-day deficits without blanking
  ScheduleMonth Monday-anchored weeks covering a calendar month
  BuildHorizon  assembles a HorizonSchedule for (start, span); when the
                horizon is infeasible all day schedules are blanked and
                Feasible + Violations are the authoritative signal

PREWORK:
  A person's PreworkedInLast6 is expressed by preloading the store with the
  days immediately preceding the horizon start, so the first in-horizon days
  see real window pressure rather than a synthetic counter.

SEE ALSO:
  - daysolver.go: the per-day search
  - admission.go: re-runs this driver on a cloned store
*/
package schedule

import (
	"context"
	"fmt"
	"log"
	"time"
)

// =============================================================================
// HORIZON DRIVER
// =============================================================================

type HorizonDriver struct {
	Calendar    Calendar
	People      []Person
	Tasks       []Task
	Store       *PlanStore
	PTO         PTOMap
	CurrentTS   int64
	AllowFuture bool
	Verbose     bool
}

// NewHorizonDriver normalizes the inputs into deterministic order. A nil
// store gets a fresh one; a nil PTO map is treated as empty.
func NewHorizonDriver(cal Calendar, people []Person, tasks []Task, store *PlanStore, pto PTOMap, currentTS int64, allowFuture bool) *HorizonDriver {
	if store == nil {
		store = NewPlanStore()
	}
	if pto == nil {
		pto = PTOMap{}
	}
	return &HorizonDriver{
		Calendar:    cal,
		People:      SortPeople(people),
		Tasks:       SortTasks(tasks),
		Store:       store,
		PTO:         pto,
		CurrentTS:   currentTS,
		AllowFuture: allowFuture,
	}
}

// SeedPrework preloads each person's PreworkedInLast6 into the oldest slots
// of the six-day tail before horizonStart, so the window pressure drains by
// one with each day the horizon advances.
func (d *HorizonDriver) SeedPrework(horizonStart Date) {
	for _, p := range d.People {
		n := p.PreworkedInLast6
		if n < 0 {
			n = 0
		}
		if n > 5 {
			n = 5
		}
		for i := 0; i < n; i++ {
			d.Store.AddDay(p.ID, horizonStart.AddDays(-6+i))
		}
	}
}

// activeTasksOn filters and pre-orders the tasks active on day.
func (d *HorizonDriver) activeTasksOn(day Date) []Task {
	var active []Task
	for _, t := range d.Tasks {
		if t.ActiveOn(d.Calendar, day) {
			active = append(active, t)
		}
	}
	return OrderTasks(active, d.People)
}

// ScheduleDay runs one day and commits on success. The violation string for
// a failed day is returned alongside the result; the caller aggregates.
func (d *HorizonDriver) ScheduleDay(ctx context.Context, day Date) (DaySchedule, *DayDeficit, string, error) {
	if err := ctx.Err(); err != nil {
		return DaySchedule{}, nil, "", cancelErr(ctx)
	}

	empty := DaySchedule{Date: day}

	dayStart, _ := d.Calendar.DayBounds(day)
	if !d.AllowFuture && dayStart > d.CurrentTS {
		if d.Verbose {
			log.Printf("[Driver] %s: skipping future day", day)
		}
		return empty, nil, "", nil
	}

	active := d.activeTasksOn(day)
	if len(active) == 0 {
		return empty, nil, "", nil
	}

	solver := &DaySolver{Calendar: d.Calendar, Store: d.Store, Verbose: d.Verbose}
	result, err := solver.Solve(ctx, day, d.People, active, d.PTO.OnDay(day))
	if err != nil {
		return DaySchedule{}, nil, "", err
	}
	if !result.Feasible {
		violation := fmt.Sprintf("%s: could not satisfy all active tasks within constraints", day)
		return empty, &DayDeficit{Date: day, Deficits: result.Deficits}, violation, nil
	}

	ds := DaySchedule{Date: day, Coverage: result.Coverage}
	d.Store.Commit(ds.Assignments())
	return ds, nil, "", nil
}

// =============================================================================
// WEEK AND MONTH VARIANTS
// =============================================================================

// ScheduleWeek runs the seven days of the Monday-anchored week containing
// weekStart. Assignments from successful days are returned even when other
// days fail; deficits list every failed day.
func (d *HorizonDriver) ScheduleWeek(ctx context.Context, weekStart Date) ([]Assignment, []DayDeficit, error) {
	monday := MondayOnOrBefore(weekStart)
	var (
		assignments []Assignment
		deficits    []DayDeficit
	)
	for i := 0; i < 7; i++ {
		ds, deficit, _, err := d.ScheduleDay(ctx, monday.AddDays(i))
		if err != nil {
			return nil, nil, err
		}
		assignments = append(assignments, ds.Assignments()...)
		if deficit != nil {
			deficits = append(deficits, *deficit)
		}
	}
	return assignments, deficits, nil
}

// ScheduleMonth iterates Monday-anchored weeks from the Monday on/before the
// first of the month through the week containing the last of the month.
func (d *HorizonDriver) ScheduleMonth(ctx context.Context, year int, month time.Month) ([]Assignment, []DayDeficit, error) {
	first, last := MonthSpan(year, month)
	var (
		assignments []Assignment
		deficits    []DayDeficit
	)
	for cur := MondayOnOrBefore(first); !cur.After(last); cur = cur.AddDays(7) {
		a, u, err := d.ScheduleWeek(ctx, cur)
		if err != nil {
			return nil, nil, err
		}
		assignments = append(assignments, a...)
		deficits = append(deficits, u...)
	}
	return assignments, deficits, nil
}

// BuildHorizon assembles a HorizonSchedule for spanDays consecutive days
// starting at startDay. If any day fails, the returned schedule blanks every
// day's coverage; Feasible and Violations carry the decision.
func (d *HorizonDriver) BuildHorizon(ctx context.Context, startDay Date, spanDays int) (*HorizonSchedule, error) {
	if spanDays < 0 {
		return nil, &InputError{Field: "span_days", Reason: "must be non-negative"}
	}

	var (
		days        []DaySchedule
		violations  []string
		unsatisfied []DayDeficit
	)
	for i := 0; i < spanDays; i++ {
		ds, deficit, violation, err := d.ScheduleDay(ctx, startDay.AddDays(i))
		if err != nil {
			return nil, err
		}
		days = append(days, ds)
		if deficit != nil {
			unsatisfied = append(unsatisfied, *deficit)
		}
		if violation != "" {
			violations = append(violations, violation)
		}
	}

	feasible := len(violations) == 0
	if !feasible {
		for i := range days {
			days[i].Coverage = nil
		}
	}

	return &HorizonSchedule{
		Start:       d.Calendar.DayStart(startDay),
		End:         d.Calendar.DayStart(startDay.AddDays(spanDays)),
		TZ:          d.Calendar.Loc.String(),
		CurrentTS:   d.CurrentTS,
		AllowFuture: d.AllowFuture,
		Feasible:    feasible,
		Violations:  violations,
		Days:        days,
		Unsatisfied: unsatisfied,
	}, nil
}

/*
scenarios.go - Demo dataset seeding

PURPOSE:
  Seeds the repository with a self-contained demo dataset so the service
  is explorable without any external data. The dataset mixes a clinical
  department (ER/ICU shifts) with an engineering department (sprints and
  maintenance windows), which exercises multi-skill people, scarce skills,
  and tasks of very different lengths.

SCENARIOS:
  hospital: the full two-department dataset (default)
  minimal:  three people, one task; handy for smoke checks

DATE ANCHORING:
  Task intervals are anchored relative to a reference Monday so the demo
  always has active tasks "this month" regardless of when it is loaded.

SEE ALSO:
  - handlers.go: POST /api/scenarios/load
  - cmd/server/main.go: the seed command
*/
package api

import (
	"context"
	"time"

	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/store/sqlite"
)

// Scenario names accepted by LoadDemoScenario.
const (
	ScenarioHospital = "hospital"
	ScenarioMinimal  = "minimal"
)

const (
	deptClinical    = "clinical"
	deptEngineering = "engineering"
)

// LoadDemoScenario resets the store and seeds the named scenario.
func LoadDemoScenario(ctx context.Context, store *sqlite.Store, name string) error {
	switch name {
	case ScenarioHospital, ScenarioMinimal:
	default:
		return &schedule.InputError{Field: "scenario", Reason: "unknown scenario " + name}
	}

	if err := store.Reset(ctx); err != nil {
		return err
	}

	anchor := schedule.MondayOnOrBefore(schedule.DateOf(time.Now().UTC()))
	if name == ScenarioMinimal {
		return seedMinimal(ctx, store, anchor)
	}
	return seedHospital(ctx, store, anchor)
}

func seedHospital(ctx context.Context, store *sqlite.Store, anchor schedule.Date) error {
	type seedPerson struct {
		dept   string
		id     string
		name   string
		skills []string
	}
	people := []seedPerson{
		{deptClinical, "p1", "Alex Chen", []string{"RN", "Triage"}},
		{deptClinical, "p2", "Priya Singh", []string{"MD", "ER"}},
		{deptClinical, "p3", "Diego Ramirez", []string{"RN", "ICU"}},
		{deptEngineering, "p4", "Fatima Ali", []string{"DevOps", "Python"}},
		{deptEngineering, "p5", "Liam O'Connor", []string{"Python", "Frontend"}},
		{deptClinical, "p6", "Janelle Brooks", []string{"RN", "MD"}},
		{deptEngineering, "p7", "Sofia Rossi", []string{"Frontend", "UX"}},
		{deptEngineering, "p8", "Marcus Lee", []string{"DevOps", "Network"}},
		{deptEngineering, "p9", "Hannah Park", []string{"Python", "Data"}},
		{deptClinical, "p10", "Omar Nasser", []string{"MD", "ICU"}},
		{deptClinical, "p11", "Grace Kim", []string{"RN", "ICU"}},
		{deptEngineering, "p12", "Noah Patel", []string{"Python", "DevOps"}},
		{deptClinical, "p13", "Ava Martinez", []string{"RN"}},
		{deptEngineering, "p14", "Ethan Zhao", []string{"Frontend", "UX"}},
		{deptEngineering, "p15", "Maya Kapoor", []string{"Data", "Python"}},
	}

	cal := schedule.FixedOffsetCalendar(0)
	span := func(fromDays, toDays int) (int64, int64) {
		lo, _ := cal.DayBounds(anchor.AddDays(fromDays))
		_, hi := cal.DayBounds(anchor.AddDays(toDays))
		return lo, hi
	}

	type seedTask struct {
		dept     string
		id       string
		name     string
		from, to int // day offsets from the anchor Monday, inclusive
		reqs     map[string]int
	}
	tasks := []seedTask{
		{deptClinical, "t1", "ER Day Shift", -28, 60, map[string]int{"RN": 2, "MD": 1}},
		{deptClinical, "t2", "ICU Night", -9, 17, map[string]int{"RN": 1, "ICU": 1}},
		{deptEngineering, "t3", "Data Migration", 0, 4, map[string]int{"Python": 2, "DevOps": 1}},
		{deptEngineering, "t4", "Frontend Sprint", 0, 6, map[string]int{"Frontend": 2, "UX": 1}},
		{deptEngineering, "t5", "Network Maintenance", 3, 5, map[string]int{"Network": 1, "DevOps": 1}},
	}

	for _, dep := range []string{deptClinical, deptEngineering} {
		if err := store.SaveDepartment(ctx, dep); err != nil {
			return err
		}
	}
	for _, sp := range people {
		p := schedule.Person{
			ID:     schedule.PersonID(sp.id),
			Name:   sp.name,
			Skills: schedule.NewSkillSet(sp.skills...),
		}
		if err := store.SavePerson(ctx, sp.dept, p); err != nil {
			return err
		}
	}
	for _, st := range tasks {
		lo, hi := span(st.from, st.to)
		t := schedule.Task{
			ID:           schedule.TaskID(st.id),
			Name:         st.name,
			StartTS:      lo,
			EndTS:        hi,
			Requirements: st.reqs,
		}
		if err := store.SaveTask(ctx, st.dept, t); err != nil {
			return err
		}
	}

	// One approved absence so the ledger is non-empty out of the box.
	return store.WritePTO(ctx, "p13", []schedule.Date{anchor.AddDays(2)}, schedule.PTOApproved)
}

func seedMinimal(ctx context.Context, store *sqlite.Store, anchor schedule.Date) error {
	if err := store.SaveDepartment(ctx, deptClinical); err != nil {
		return err
	}
	people := []schedule.Person{
		{ID: "p1", Name: "Alex Chen", Skills: schedule.NewSkillSet("RN")},
		{ID: "p2", Name: "Priya Singh", Skills: schedule.NewSkillSet("MD")},
		{ID: "p3", Name: "Diego Ramirez", Skills: schedule.NewSkillSet("RN", "MD")},
	}
	for _, p := range people {
		if err := store.SavePerson(ctx, deptClinical, p); err != nil {
			return err
		}
	}

	cal := schedule.FixedOffsetCalendar(0)
	lo, _ := cal.DayBounds(anchor)
	_, hi := cal.DayBounds(anchor.AddDays(6))
	return store.SaveTask(ctx, deptClinical, schedule.Task{
		ID:           "t1",
		Name:         "Ward Shift",
		StartTS:      lo,
		EndTS:        hi,
		Requirements: map[string]int{"RN": 1, "MD": 1},
	})
}

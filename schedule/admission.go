/*
admission.go - PTO admission control

PURPOSE:
  Decides whether a candidate absence request can be approved: with the
  person removed from the candidate days, does every affected day remain
  feasible?

PROCEDURE:
  1. Merge baseline PTO, the candidate's days, and any cohort pending days
     into one map (union semantics; a day may list several people)
  2. Span the Monday-anchored weeks touching the candidate days
  3. Clone the starting PlanStore (the live store is never mutated)
  4. Drive each week; aggregate per-day deficits
  5. Feasible iff the aggregate is empty

MODES:
  "Fresh" vs "strict" is purely the caller's choice of BaseStore: an empty
  store asks "can others cover, ignoring history?"; a prepopulated store
  asks "can others cover given everyone's recent workload?". This layer is
  agnostic.

SEE ALSO:
  - driver.go: the week variant used per affected week
*/
package schedule

import (
	"context"
	"sort"
)

// =============================================================================
// ADMISSION CHECK
// =============================================================================

// AdmissionRequest is a candidate absence to evaluate.
type AdmissionRequest struct {
	PersonID    PersonID
	Days        []Date
	People      []Person
	Tasks       []Task
	BaselinePTO PTOMap // already-approved absences; may be nil
	CohortPTO   PTOMap // other persons' pending days; may be nil
	BaseStore   *PlanStore
	CurrentTS   int64
}

// AdmissionResult reports the decision with full supporting detail.
type AdmissionResult struct {
	PersonID    PersonID     `json:"pto_person_id"`
	Days        []Date       `json:"pto_days"`
	Feasible    bool         `json:"feasible"`
	Unsatisfied []DayDeficit `json:"unsatisfied"`
	Assignments []Assignment `json:"assignments"`
	CombinedPTO PortablePTO  `json:"combined_pto_map"`
}

// CheckAdmission evaluates the request. An empty candidate day list is
// trivially feasible. Infeasibility is a decision, not an error; errors
// are reserved for invalid input and cancellation.
func CheckAdmission(ctx context.Context, cal Calendar, req AdmissionRequest) (*AdmissionResult, error) {
	if req.PersonID == "" {
		return nil, &InputError{Field: "person_id", Reason: "required"}
	}
	if len(req.Days) == 0 {
		return &AdmissionResult{
			PersonID: req.PersonID,
			Feasible: true,
		}, nil
	}

	merged := PTOMap{}
	if req.BaselinePTO != nil {
		merged.Merge(req.BaselinePTO)
	}
	if req.CohortPTO != nil {
		merged.Merge(req.CohortPTO)
	}
	candidate := dedupeDays(req.Days)
	for _, d := range candidate {
		merged.Add(d, req.PersonID)
	}

	store := req.BaseStore
	if store == nil {
		store = NewPlanStore()
	}
	store = store.Clone()

	// Admission probes future weeks by construction.
	driver := NewHorizonDriver(cal, req.People, req.Tasks, store, merged, req.CurrentTS, true)

	var (
		assignments []Assignment
		unsatisfied []DayDeficit
	)
	first := MondayOnOrBefore(candidate[0])
	last := MondayOnOrBefore(candidate[len(candidate)-1])
	for wk := first; !wk.After(last); wk = wk.AddDays(7) {
		a, u, err := driver.ScheduleWeek(ctx, wk)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a...)
		unsatisfied = append(unsatisfied, u...)
	}

	return &AdmissionResult{
		PersonID:    req.PersonID,
		Days:        candidate,
		Feasible:    len(unsatisfied) == 0,
		Unsatisfied: unsatisfied,
		Assignments: assignments,
		CombinedPTO: merged.ToPortable(),
	}, nil
}

// dedupeDays sorts and deduplicates candidate days.
func dedupeDays(days []Date) []Date {
	seen := make(map[Date]struct{}, len(days))
	var out []Date
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

/*
daysolver.go - Single-day constraint solver

PURPOSE:
  Given one day's people, active tasks, PlanStore view, and PTO set, produce
  either a set of per-person assignments satisfying every invariant, or a
  structured deficit report saying exactly which (task, skill) headcounts
  could not be covered.

ALGORITHM:
  Deterministic backtracking over (task, skill) subgoals.
  - Subgoal choice: largest remaining deficit first; ties broken by task
    name ascending, then skill ascending (most-constrained-first bias).
  - Candidate ranking: multi-cover descending (how many still-deficient
    skills of the task the person covers at once), then prior-six-day usage
    ascending (least-recently-worked first), then person name ascending,
    with id ascending as the unique final key.
  - A tentative assignment decrements every still-deficient skill the person
    covers on that task, then is re-checked against the rolling cap before
    recursing; failures undo completely.
  Every assignment strictly reduces total deficit and nothing is reassigned
  without an undo, so the search tree is finite.

TASK PRE-ORDERING:
  Active tasks are pre-ordered by skill rarity before the solve: score(t) =
  sum over required skills of count/supply, computed with exact decimals so
  the ordering never depends on float rounding. The pre-order fixes the
  order of the day's coverage records; the subgoal choice inside the search
  is unaffected.

CANCELLATION:
  The caller's context is checked on every branch entry; cancellation
  surfaces as ErrCancelled with no partial output.

SEE ALSO:
  - planstore.go: CanAssign two-phase semantics
  - driver.go: commits successful days
*/
package schedule

import (
	"context"
	"log"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY SOLVER
// =============================================================================

type DaySolver struct {
	Calendar Calendar
	Store    *PlanStore

	// Verbose enables per-day solver logging.
	Verbose bool
}

// DayResult is the outcome of one day's solve. Feasible=false carries the
// residual deficits; it is a normal outcome, not an error.
type DayResult struct {
	Date     Date
	Feasible bool
	Coverage []TaskCoverage
	Deficits DeficitReport
}

// Assignments flattens a feasible result, tasks in coverage order, people in
// assignment order.
func (r *DayResult) Assignments() []Assignment {
	ds := DaySchedule{Date: r.Date, Coverage: r.Coverage}
	return ds.Assignments()
}

// Solve attempts one day. tasks must already be filtered to the day's active
// set; OrderTasks is applied internally so callers may pass any order.
func (s *DaySolver) Solve(ctx context.Context, day Date, people []Person, tasks []Task, pto map[PersonID]struct{}) (*DayResult, error) {
	ordered := OrderTasks(tasks, people)
	st := &solveState{
		solver:   s,
		day:      day,
		people:   SortPeople(people),
		tasks:    ordered,
		pto:      pto,
		deficits: make(map[TaskID]map[string]int, len(ordered)),
		assigned: make(map[PersonID]TaskID),
		coverage: make(map[TaskID]*TaskCoverage, len(ordered)),
	}
	for _, t := range ordered {
		def := make(map[string]int, len(t.Requirements))
		for skill, count := range t.Requirements {
			if count > 0 {
				def[skill] = count
			}
		}
		st.deficits[t.ID] = def
		st.coverage[t.ID] = &TaskCoverage{
			TaskID:        t.ID,
			TaskName:      t.Name,
			SkillCoverage: make(map[string][]PersonID),
			Contributions: make(map[PersonID][]string),
		}
		for skill := range def {
			st.coverage[t.ID].SkillCoverage[skill] = []PersonID{}
		}
	}

	ok, err := st.search(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		if s.Verbose {
			log.Printf("[Solver] %s: infeasible, residual %v", day, st.residual())
		}
		return &DayResult{Date: day, Feasible: false, Deficits: st.residual()}, nil
	}

	records := make([]TaskCoverage, 0, len(ordered))
	for _, t := range ordered {
		records = append(records, *st.coverage[t.ID])
	}
	return &DayResult{Date: day, Feasible: true, Coverage: records}, nil
}

// =============================================================================
// SEARCH STATE
// =============================================================================

type solveState struct {
	solver   *DaySolver
	day      Date
	people   []Person
	tasks    []Task
	pto      map[PersonID]struct{}
	deficits map[TaskID]map[string]int
	assigned map[PersonID]TaskID
	coverage map[TaskID]*TaskCoverage
}

// nextNeed picks the (task, skill) subgoal with the largest deficit;
// ties break by task name ascending, then skill ascending.
func (st *solveState) nextNeed() (Task, string, bool) {
	var (
		bestTask  Task
		bestSkill string
		bestNeed  int
		found     bool
	)
	for _, t := range st.tasks {
		for _, skill := range sortedKeys(st.deficits[t.ID]) {
			need := st.deficits[t.ID][skill]
			if need <= 0 {
				continue
			}
			if !found || need > bestNeed ||
				(need == bestNeed && (t.Name < bestTask.Name ||
					(t.Name == bestTask.Name && skill < bestSkill))) {
				bestTask, bestSkill, bestNeed, found = t, skill, need, true
			}
		}
	}
	return bestTask, bestSkill, found
}

// candidatesFor ranks the eligible people for covering skill on task.
func (st *solveState) candidatesFor(task Task, skill string) []Person {
	var out []Person
	for _, p := range st.people {
		if _, absent := st.pto[p.ID]; absent {
			continue
		}
		if _, busy := st.assigned[p.ID]; busy {
			continue
		}
		if !p.Skills.Has(skill) {
			continue
		}
		// Defensive: the skill check above implies this, but the filter is
		// kept so a future requirement-key mismatch cannot slip through.
		if !st.hasAnyRequiredSkill(p, task) {
			continue
		}
		if !st.solver.Store.CanAssign(p.ID, st.day, false) {
			continue
		}
		out = append(out, p)
	}

	type rank struct {
		multi  int
		recent int
	}
	ranks := make(map[PersonID]rank, len(out))
	for _, p := range out {
		ranks[p.ID] = rank{
			multi:  st.multiCover(p, task),
			recent: st.solver.Store.CountInWindow(p.ID, st.day.AddDays(-6), st.day.AddDays(-1)),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := ranks[out[i].ID], ranks[out[j].ID]
		if ri.multi != rj.multi {
			return ri.multi > rj.multi
		}
		if ri.recent != rj.recent {
			return ri.recent < rj.recent
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (st *solveState) hasAnyRequiredSkill(p Person, task Task) bool {
	for skill := range task.Requirements {
		if p.Skills.Has(skill) {
			return true
		}
	}
	return false
}

// multiCover counts the distinct still-deficient skills of task that p could
// cover simultaneously.
func (st *solveState) multiCover(p Person, task Task) int {
	n := 0
	for skill, need := range st.deficits[task.ID] {
		if need > 0 && p.Skills.Has(skill) {
			n++
		}
	}
	return n
}

func (st *solveState) search(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, cancelErr(ctx)
	}

	task, skill, found := st.nextNeed()
	if !found {
		return true, nil
	}

	for _, cand := range st.candidatesFor(task, skill) {
		covered := st.tentativeAssign(cand, task)
		if !st.solver.Store.CanAssign(cand.ID, st.day, true) {
			st.undo(cand, task, covered)
			continue
		}
		ok, err := st.search(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		st.undo(cand, task, covered)
	}
	return false, nil
}

// tentativeAssign puts cand on task, decrementing every still-deficient
// required skill cand possesses, and returns the covered skills in the order
// they were decremented (sorted, so undo and output are deterministic).
func (st *solveState) tentativeAssign(cand Person, task Task) []string {
	var covered []string
	for _, skill := range sortedKeys(st.deficits[task.ID]) {
		if st.deficits[task.ID][skill] > 0 && cand.Skills.Has(skill) {
			st.deficits[task.ID][skill]--
			covered = append(covered, skill)
		}
	}
	st.assigned[cand.ID] = task.ID
	tc := st.coverage[task.ID]
	tc.People = append(tc.People, cand.ID)
	tc.Contributions[cand.ID] = covered
	for _, skill := range covered {
		tc.SkillCoverage[skill] = append(tc.SkillCoverage[skill], cand.ID)
	}
	return covered
}

func (st *solveState) undo(cand Person, task Task, covered []string) {
	for _, skill := range covered {
		st.deficits[task.ID][skill]++
	}
	delete(st.assigned, cand.ID)
	tc := st.coverage[task.ID]
	tc.People = tc.People[:len(tc.People)-1]
	delete(tc.Contributions, cand.ID)
	for _, skill := range covered {
		lst := tc.SkillCoverage[skill]
		tc.SkillCoverage[skill] = lst[:len(lst)-1]
	}
}

// residual extracts the positive deficits keyed by task display name.
func (st *solveState) residual() DeficitReport {
	report := make(DeficitReport)
	for _, t := range st.tasks {
		for skill, need := range st.deficits[t.ID] {
			if need <= 0 {
				continue
			}
			if report[t.Name] == nil {
				report[t.Name] = make(map[string]int)
			}
			report[t.Name][skill] = need
		}
	}
	return report
}

// =============================================================================
// TASK PRE-ORDERING
// =============================================================================

/// OrderTasks orders a day's active tasks scarcest-first: rarity score
// descending, then end timestamp ascending, then id ascending. The score of
// a task is the sum over its required skills of requirement/supply, computed
// exactly.
func OrderTasks(tasks []Task, people []Person) []Task {
	supply := make(map[string]int)
	for _, p := range people {
		for skill := range p.Skills {
			supply[skill]++
		}
	}
	scores := make(map[TaskID]decimal.Decimal, len(tasks))
	for _, t := range tasks {
		score := decimal.Zero
		for skill, count := range t.Requirements {
			sup := supply[skill]
			if sup < 1 {
				sup = 1
			}
			score = score.Add(decimal.NewFromInt(int64(count)).Div(decimal.NewFromInt(int64(sup))))
		}
		scores[t.ID] = score
	}

	out := append([]Task(nil), tasks...)
	sort.Slice(out, func(i, j int) bool {
		cmp := scores[out[i].ID].Cmp(scores[out[j].ID])
		if cmp != 0 {
			return cmp > 0
		}
		if out[i].EndTS != out[j].EndTS {
			return out[i].EndTS < out[j].EndTS
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

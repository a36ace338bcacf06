package schedule_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testCal = schedule.FixedOffsetCalendar(0)

func person(id, name string, skills ...string) schedule.Person {
	return schedule.Person{
		ID:     schedule.PersonID(id),
		Name:   name,
		Skills: schedule.NewSkillSet(skills...),
	}
}

// task builds a task active on the inclusive day range [from, to].
func task(id, name string, from, to schedule.Date, reqs map[string]int) schedule.Task {
	lo, _ := testCal.DayBounds(from)
	_, hi := testCal.DayBounds(to)
	return schedule.Task{
		ID:           schedule.TaskID(id),
		Name:         name,
		StartTS:      lo,
		EndTS:        hi,
		Requirements: reqs,
	}
}

func solveDay(t *testing.T, day schedule.Date, people []schedule.Person, tasks []schedule.Task, store *schedule.PlanStore, pto map[schedule.PersonID]struct{}) *schedule.DayResult {
	t.Helper()
	if store == nil {
		store = schedule.NewPlanStore()
	}
	solver := &schedule.DaySolver{Calendar: testCal, Store: store}
	result, err := solver.Solve(context.Background(), day, people, tasks, pto)
	require.NoError(t, err)
	return result
}

// =============================================================================
// FEASIBLE SOLVES
// =============================================================================

func TestDaySolver_CoversExactHeadcounts(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "MD"),
		person("p3", "Diego", "RN"),
	}
	tasks := []schedule.Task{
		task("t1", "ER Day Shift", day, day, map[string]int{"RN": 2, "MD": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	require.True(t, result.Feasible)
	require.Len(t, result.Coverage, 1)

	tc := result.Coverage[0]
	assert.Len(t, tc.SkillCoverage["RN"], 2)
	assert.Len(t, tc.SkillCoverage["MD"], 1)

	ok, errs := schedule.ValidateDays(testCal, people, tasks,
		[]schedule.DaySchedule{{Date: day, Coverage: result.Coverage}}, nil)
	assert.True(t, ok, errs)
}

func TestDaySolver_MultiSkillPersonCoversBothAtOnce(t *testing.T) {
	// GIVEN: one person holding both required skills, requirement 1 each
	// THEN: that single person covers the whole task
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{person("p6", "Janelle", "RN", "MD")}
	tasks := []schedule.Task{
		task("t1", "Ward Shift", day, day, map[string]int{"RN": 1, "MD": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	require.True(t, result.Feasible)
	tc := result.Coverage[0]
	assert.Equal(t, []schedule.PersonID{"p6"}, tc.AssignedPeople())
	assert.ElementsMatch(t, []string{"MD", "RN"}, tc.Contributions["p6"])
}

func TestDaySolver_MultiCoverPreferred(t *testing.T) {
	// p3 covers both deficient skills at once, so the solver should take p3
	// even though p1/p2 sort earlier by id.
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "MD"),
		person("p3", "Janelle", "RN", "MD"),
	}
	tasks := []schedule.Task{
		task("t1", "Ward Shift", day, day, map[string]int{"RN": 1, "MD": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	require.True(t, result.Feasible)
	assert.Equal(t, []schedule.PersonID{"p3"}, result.Coverage[0].AssignedPeople())
}

func TestDaySolver_LeastRecentlyWorkedBreaksTies(t *testing.T) {
	// Same skills, but p1 worked the last three days and p2 did not.
	day := schedule.MustDate("2025-09-29")
	store := schedule.NewPlanStore()
	for i := 1; i <= 3; i++ {
		store.AddDay("p1", day.AddDays(-i))
	}

	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "RN"),
	}
	tasks := []schedule.Task{
		task("t1", "Ward Shift", day, day, map[string]int{"RN": 1}),
	}

	result := solveDay(t, day, people, tasks, store, nil)
	require.True(t, result.Feasible)
	assert.Equal(t, []schedule.PersonID{"p2"}, result.Coverage[0].AssignedPeople())
}

func TestDaySolver_NameBreaksFinalTie(t *testing.T) {
	// Equal skills and equal history: the candidate with the earlier name
	// wins, even when the other sorts first by id.
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p2", "Zoe", "RN"),
		person("p9", "Adam", "RN"),
	}
	tasks := []schedule.Task{
		task("t1", "Ward Shift", day, day, map[string]int{"RN": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	require.True(t, result.Feasible)
	assert.Equal(t, []schedule.PersonID{"p9"}, result.Coverage[0].AssignedPeople())
}

func TestDaySolver_OnePersonNeverOnTwoTasks(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "RN"),
	}
	tasks := []schedule.Task{
		task("t1", "Ward A", day, day, map[string]int{"RN": 1}),
		task("t2", "Ward B", day, day, map[string]int{"RN": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	require.True(t, result.Feasible)

	seen := map[schedule.PersonID]int{}
	for _, tc := range result.Coverage {
		for _, pid := range tc.AssignedPeople() {
			seen[pid]++
		}
	}
	for pid, n := range seen {
		assert.Equal(t, 1, n, pid)
	}
}

func TestDaySolver_BacktracksOutOfGreedyDeadEnd(t *testing.T) {
	// The greedy pick for Ward A is p2 (covers both of its skills at once),
	// but p2 is the only ICU holder for Ward B. Solving both requires the
	// search to undo and reassign.
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "RN", "Triage", "ICU"),
		person("p3", "Diego", "Triage"),
	}
	tasks := []schedule.Task{
		task("t1", "Ward A", day, day, map[string]int{"RN": 1, "Triage": 1}),
		task("t2", "Ward B", day, day, map[string]int{"ICU": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	require.True(t, result.Feasible)

	byTask := map[schedule.TaskID][]schedule.PersonID{}
	for _, tc := range result.Coverage {
		byTask[tc.TaskID] = tc.AssignedPeople()
	}
	assert.ElementsMatch(t, []schedule.PersonID{"p1", "p3"}, byTask["t1"])
	assert.Equal(t, []schedule.PersonID{"p2"}, byTask["t2"])
}

// =============================================================================
// PTO AND CAP FILTERS
// =============================================================================

func TestDaySolver_PTOExcludes(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "RN"),
	}
	tasks := []schedule.Task{
		task("t1", "Ward Shift", day, day, map[string]int{"RN": 1}),
	}

	result := solveDay(t, day, people, tasks, nil, map[schedule.PersonID]struct{}{"p1": {}})
	require.True(t, result.Feasible)
	assert.Equal(t, []schedule.PersonID{"p2"}, result.Coverage[0].AssignedPeople())

	// Both away: the day cannot be covered.
	result = solveDay(t, day, people, tasks, nil, map[schedule.PersonID]struct{}{"p1": {}, "p2": {}})
	assert.False(t, result.Feasible)
	assert.Equal(t, map[string]int{"RN": 1}, result.Deficits["Ward Shift"])
}

func TestDaySolver_RollingCapExcludes(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	store := schedule.NewPlanStore()
	for i := 1; i <= 5; i++ {
		store.AddDay("p1", day.AddDays(-i))
	}

	people := []schedule.Person{person("p1", "Alex", "RN")}
	tasks := []schedule.Task{
		task("t1", "Ward Shift", day, day, map[string]int{"RN": 1}),
	}

	result := solveDay(t, day, people, tasks, store, nil)
	assert.False(t, result.Feasible)
}

func TestDaySolver_ImpossibleSkillReportsDeficit(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{person("p1", "Alex", "RN")}
	tasks := []schedule.Task{
		task("t1", "ER Day Shift", day, day, map[string]int{"RN": 1, "MD": 2}),
	}

	result := solveDay(t, day, people, tasks, nil, nil)
	assert.False(t, result.Feasible)
	assert.Equal(t, map[string]int{"MD": 2}, result.Deficits["ER Day Shift"])
	assert.Empty(t, result.Coverage)
}

// =============================================================================
// ORDERING AND DETERMINISM
// =============================================================================

func TestOrderTasks_RarestFirst(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN"),
		person("p2", "Priya", "RN"),
		person("p3", "Diego", "RN", "ICU"),
	}
	// t2 needs the single-holder ICU skill, so it scores scarcer than t1
	// even though t1 asks for more heads.
	tasks := []schedule.Task{
		task("t1", "Ward", day, day.AddDays(1), map[string]int{"RN": 2}),
		task("t2", "ICU Night", day, day, map[string]int{"ICU": 1}),
	}

	ordered := schedule.OrderTasks(tasks, people)
	require.Len(t, ordered, 2)
	assert.Equal(t, schedule.TaskID("t2"), ordered[0].ID)
}

func TestOrderTasks_TiesBreakByEndThenID(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{person("p1", "Alex", "RN")}

	a := task("a", "A", day, day.AddDays(3), map[string]int{"RN": 1})
	b := task("b", "B", day, day, map[string]int{"RN": 1})
	c := task("c", "C", day, day.AddDays(3), map[string]int{"RN": 1})

	ordered := schedule.OrderTasks([]schedule.Task{a, c, b}, people)
	assert.Equal(t, schedule.TaskID("b"), ordered[0].ID) // earliest end
	assert.Equal(t, schedule.TaskID("a"), ordered[1].ID) // id tiebreak
	assert.Equal(t, schedule.TaskID("c"), ordered[2].ID)
}

func TestDaySolver_DeterministicAcrossInputOrder(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	people := []schedule.Person{
		person("p1", "Alex", "RN", "Triage"),
		person("p2", "Priya", "MD", "ER"),
		person("p3", "Diego", "RN", "ICU"),
		person("p6", "Janelle", "RN", "MD"),
		person("p11", "Grace", "RN", "ICU"),
	}
	tasks := []schedule.Task{
		task("t1", "ER Day Shift", day, day, map[string]int{"RN": 2, "MD": 1}),
		task("t2", "ICU Night", day, day, map[string]int{"RN": 1, "ICU": 1}),
	}

	reversedPeople := make([]schedule.Person, 0, len(people))
	for i := len(people) - 1; i >= 0; i-- {
		reversedPeople = append(reversedPeople, people[i])
	}
	reversedTasks := []schedule.Task{tasks[1], tasks[0]}

	a := solveDay(t, day, people, tasks, nil, nil)
	b := solveDay(t, day, reversedPeople, reversedTasks, nil, nil)

	require.True(t, a.Feasible)
	require.True(t, b.Feasible)
	assert.Equal(t, a.Assignments(), b.Assignments())
}

func TestDaySolver_Cancellation(t *testing.T) {
	day := schedule.MustDate("2025-09-29")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solver := &schedule.DaySolver{Calendar: testCal, Store: schedule.NewPlanStore()}
	_, err := solver.Solve(ctx, day,
		[]schedule.Person{person("p1", "Alex", "RN")},
		[]schedule.Task{task("t1", "Ward", day, day, map[string]int{"RN": 1})},
		nil)
	require.Error(t, err)
	assert.True(t, schedule.IsCancelled(err))
}

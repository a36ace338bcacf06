package factory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// PERSON PARSING
// =============================================================================

func TestParsePerson_KeyVariants(t *testing.T) {
	cases := map[string]string{
		"id":        `{"id": "p1", "name": "Alex", "skills": ["RN", "Triage"]}`,
		"person_id": `{"person_id": "p1", "name": "Alex", "skills": ["RN", "Triage"]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := factory.ParsePerson(json.RawMessage(payload))
			require.NoError(t, err)
			assert.Equal(t, schedule.PersonID("p1"), p.ID)
			assert.Equal(t, "Alex", p.Name)
			assert.True(t, p.Skills.Has("RN"))
			assert.True(t, p.Skills.Has("Triage"))
			assert.Equal(t, 0, p.PreworkedInLast6)
		})
	}
}

func TestParsePerson_PreworkVariantsAndClamp(t *testing.T) {
	p, err := factory.ParsePerson(json.RawMessage(`{"id": "p1", "preworked_in_last_6": 3}`))
	require.NoError(t, err)
	assert.Equal(t, 3, p.PreworkedInLast6)

	// Legacy key, same meaning.
	p, err = factory.ParsePerson(json.RawMessage(`{"id": "p1", "preworked_in_last_7": 2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, p.PreworkedInLast6)

	p, err = factory.ParsePerson(json.RawMessage(`{"id": "p1", "preworked_in_last_6": 9}`))
	require.NoError(t, err)
	assert.Equal(t, 5, p.PreworkedInLast6)

	p, err = factory.ParsePerson(json.RawMessage(`{"id": "p1", "preworked_in_last_6": -2}`))
	require.NoError(t, err)
	assert.Equal(t, 0, p.PreworkedInLast6)
}

func TestParsePerson_MissingID(t *testing.T) {
	_, err := factory.ParsePerson(json.RawMessage(`{"name": "Alex"}`))
	assert.True(t, schedule.IsInvalidInput(err))
}

func TestParsePeople_IndexesErrors(t *testing.T) {
	_, err := factory.ParsePeople([]json.RawMessage{
		json.RawMessage(`{"id": "p1"}`),
		json.RawMessage(`{"name": "nameless"}`),
	})
	require.Error(t, err)
	assert.True(t, schedule.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "people[1]")
}

// =============================================================================
// TASK PARSING
// =============================================================================

func TestParseTask_KeyVariants(t *testing.T) {
	cases := map[string]string{
		"start_ts/end_ts":       `{"id": "t1", "name": "ER", "start_ts": 100, "end_ts": 200, "requirements": {"RN": 2}}`,
		"start_epoch/end_epoch": `{"task_id": "t1", "name": "ER", "start_epoch": 100, "end_epoch": 200, "daily_requirements": {"RN": 2}}`,
		"start/end":             `{"id": "t1", "name": "ER", "start": 100, "end": 200, "required_skills": {"RN": 2}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			task, err := factory.ParseTask(json.RawMessage(payload))
			require.NoError(t, err)
			assert.Equal(t, schedule.TaskID("t1"), task.ID)
			assert.Equal(t, int64(100), task.StartTS)
			assert.Equal(t, int64(200), task.EndTS)
			assert.Equal(t, map[string]int{"RN": 2}, task.Requirements)
		})
	}
}

func TestParseTask_NameFallsBackToID(t *testing.T) {
	task, err := factory.ParseTask(json.RawMessage(
		`{"id": "t9", "start_ts": 1, "end_ts": 2, "requirements": {"RN": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, "t9", task.Name)
}

func TestParseTask_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing id":           `{"start_ts": 1, "end_ts": 2, "requirements": {"RN": 1}}`,
		"missing start":        `{"id": "t1", "end_ts": 2, "requirements": {"RN": 1}}`,
		"missing end":          `{"id": "t1", "start_ts": 1, "requirements": {"RN": 1}}`,
		"empty interval":       `{"id": "t1", "start_ts": 5, "end_ts": 5, "requirements": {"RN": 1}}`,
		"inverted interval":    `{"id": "t1", "start_ts": 5, "end_ts": 1, "requirements": {"RN": 1}}`,
		"missing requirements": `{"id": "t1", "start_ts": 1, "end_ts": 2}`,
		"zero count":           `{"id": "t1", "start_ts": 1, "end_ts": 2, "requirements": {"RN": 0}}`,
		"negative count":       `{"id": "t1", "start_ts": 1, "end_ts": 2, "requirements": {"RN": -3}}`,
		"empty skill key":      `{"id": "t1", "start_ts": 1, "end_ts": 2, "requirements": {"": 1}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := factory.ParseTask(json.RawMessage(payload))
			assert.True(t, schedule.IsInvalidInput(err))
		})
	}
}

// =============================================================================
// PLAN STORE AND PTO
// =============================================================================

func TestParsePlanStore_NilYieldsFresh(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
		store, err := factory.ParsePlanStore(raw)
		require.NoError(t, err)
		assert.True(t, store.Equal(schedule.NewPlanStore()))
	}
}

func TestParsePlanStore_WrapperShapes(t *testing.T) {
	want := schedule.NewPlanStore()
	want.AddDay("p1", schedule.MustDate("2025-09-29"))

	store, err := factory.ParsePlanStore(json.RawMessage(
		`{"days_by_person": {"p1": ["2025-09-29"]}}`))
	require.NoError(t, err)
	assert.True(t, want.Equal(store))
}

func TestParsePTOMap(t *testing.T) {
	pto, err := factory.ParsePTOMap(map[string][]string{
		"2025-09-29": {"p1", "p2"},
	})
	require.NoError(t, err)
	assert.True(t, pto.Contains(schedule.MustDate("2025-09-29"), "p1"))
	assert.True(t, pto.Contains(schedule.MustDate("2025-09-29"), "p2"))

	empty, err := factory.ParsePTOMap(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = factory.ParsePTOMap(map[string][]string{"bogus": {"p1"}})
	assert.True(t, schedule.IsInvalidInput(err))
}

func TestParseDates(t *testing.T) {
	days, err := factory.ParseDates([]string{"2025-09-29", "2025-09-30"})
	require.NoError(t, err)
	assert.Equal(t, []schedule.Date{
		schedule.MustDate("2025-09-29"),
		schedule.MustDate("2025-09-30"),
	}, days)

	_, err = factory.ParseDates([]string{"2025-09-29", "nope"})
	assert.True(t, schedule.IsInvalidInput(err))
}

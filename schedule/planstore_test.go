package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// WINDOW MATH
// =============================================================================

func TestPlanStore_CountInWindow(t *testing.T) {
	s := schedule.NewPlanStore()
	monday := schedule.MustDate("2025-09-29")

	for i := 0; i < 4; i++ {
		s.AddDay("p1", monday.AddDays(i))
	}

	assert.Equal(t, 4, s.CountInWindow("p1", monday, monday.AddDays(6)))
	assert.Equal(t, 2, s.CountInWindow("p1", monday.AddDays(2), monday.AddDays(6)))
	assert.Equal(t, 0, s.CountInWindow("p1", monday.AddDays(4), monday.AddDays(6)))
	assert.Equal(t, 0, s.CountInWindow("p2", monday, monday.AddDays(6)))
	// Inverted window counts nothing.
	assert.Equal(t, 0, s.CountInWindow("p1", monday.AddDays(3), monday))
}

func TestPlanStore_CanAssign_Thresholds(t *testing.T) {
	// GIVEN: four committed days in the trailing window
	// THEN: a fifth day is allowed, a sixth is not
	monday := schedule.MustDate("2025-09-29")

	s := schedule.NewPlanStore()
	for i := 1; i <= 4; i++ {
		s.AddDay("p1", monday.AddDays(-i))
	}
	assert.True(t, s.CanAssign("p1", monday, false))

	s.AddDay("p1", monday.AddDays(-5))
	// Five in the window: a sixth day would break the cap.
	assert.False(t, s.CanAssign("p1", monday, false))

	// Far enough in the future the window has drained.
	assert.True(t, s.CanAssign("p1", monday.AddDays(6), false))
}

func TestPlanStore_CanAssign_PendingAndCommitted(t *testing.T) {
	monday := schedule.MustDate("2025-09-29")

	s := schedule.NewPlanStore()
	for i := 0; i < 5; i++ {
		s.AddDay("p1", monday.AddDays(i))
	}

	// Day already committed: re-asking about it stays allowed.
	assert.True(t, s.CanAssign("p1", monday.AddDays(4), false))
	// A pending same-day probe tolerates the tentative fifth day.
	assert.True(t, s.CanAssign("p1", monday.AddDays(4), true))
	// A sixth distinct day inside the window is rejected either way.
	assert.False(t, s.CanAssign("p1", monday.AddDays(5), false))
}

func TestPlanStore_CommitIdempotent(t *testing.T) {
	monday := schedule.MustDate("2025-09-29")
	a := schedule.Assignment{Day: monday, PersonID: "p1", TaskID: "t1"}

	s := schedule.NewPlanStore()
	s.Commit([]schedule.Assignment{a, a})
	s.Commit([]schedule.Assignment{a})

	assert.Equal(t, 1, s.CountInWindow("p1", monday, monday))
	assert.True(t, s.AssignedOn("p1", monday))
}

// =============================================================================
// CLONE AND EQUALITY
// =============================================================================

func TestPlanStore_CloneIsIndependent(t *testing.T) {
	monday := schedule.MustDate("2025-09-29")

	s := schedule.NewPlanStore()
	s.AddDay("p1", monday)

	c := s.Clone()
	require.True(t, s.Equal(c))

	c.AddDay("p1", monday.AddDays(1))
	c.AddDay("p2", monday)

	assert.False(t, s.AssignedOn("p1", monday.AddDays(1)))
	assert.False(t, s.AssignedOn("p2", monday))
	assert.False(t, s.Equal(c))
}

// =============================================================================
// PORTABLE FORM
// =============================================================================

func TestPlanStore_PortableRoundTrip(t *testing.T) {
	s := schedule.NewPlanStore()
	s.AddDay("p2", schedule.MustDate("2025-09-30"))
	s.AddDay("p1", schedule.MustDate("2025-09-29"))
	s.AddDay("p1", schedule.MustDate("2025-10-01"))

	portable := s.ToPortable()
	assert.Equal(t, []string{"2025-09-29", "2025-10-01"}, portable["p1"])

	back, err := schedule.FromPortable(portable)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
}

func TestPlanStore_FromPortable_ToleratesDuplicates(t *testing.T) {
	back, err := schedule.FromPortable(schedule.PortablePlan{
		"p1": {"2025-09-29", "2025-09-29", "2025-09-30"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-29", "2025-09-30"}, back.ToPortable()["p1"])
}

func TestPlanStore_FromPortable_Invalid(t *testing.T) {
	_, err := schedule.FromPortable(schedule.PortablePlan{"": {"2025-09-29"}})
	assert.True(t, schedule.IsInvalidInput(err))

	_, err = schedule.FromPortable(schedule.PortablePlan{"p1": {"bogus"}})
	assert.True(t, schedule.IsInvalidInput(err))
}

func TestPlanStoreFromJSON_AcceptedShapes(t *testing.T) {
	want := schedule.NewPlanStore()
	want.AddDay("p1", schedule.MustDate("2025-09-29"))

	cases := map[string]string{
		"bare map":       `{"p1": ["2025-09-29"]}`,
		"days_by_person": `{"days_by_person": {"p1": ["2025-09-29"]}}`,
		"json string":    `{"json": "{\"p1\": [\"2025-09-29\"]}"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := schedule.PlanStoreFromJSON([]byte(payload))
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
		})
	}

	_, err := schedule.PlanStoreFromJSON([]byte(`[1, 2, 3]`))
	assert.True(t, schedule.IsInvalidInput(err))
}

/*
Package agent exposes the scheduling operations as LLM agent tools.

PURPOSE:
  Wraps the two core operations (month schedule, PTO admission) as
  langchaingo tools.Tool implementations so an agent loop can call them.
  Tool input and output are JSON strings: the agent side stays model-
  agnostic, and the payload shapes match the HTTP API so prompts and docs
  can share examples.

CONTRACT:
  Call never returns a Go error for domain outcomes. Infeasibility, invalid
  input, and repository failures are encoded in the JSON answer, because an
  agent can react to a structured refusal but not to an aborted tool call.
  Only context cancellation surfaces as an error.

SEE ALSO:
  - api/handlers.go: the HTTP twins of these tools
  - schedule/admission.go: the admission check itself
*/
package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tmc/langchaingo/tools"

	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// MONTH SCHEDULE TOOL
// =============================================================================

// MonthScheduleTool builds one month's schedule from inline people/tasks.
type MonthScheduleTool struct{}

var _ tools.Tool = MonthScheduleTool{}

type monthScheduleInput struct {
	Year           int                 `json:"year"`
	Month          int                 `json:"month"`
	People         []json.RawMessage   `json:"people"`
	Tasks          []json.RawMessage   `json:"tasks"`
	StoreJSON      json.RawMessage     `json:"store_json,omitempty"`
	AdditionalPTO  map[string][]string `json:"additional_pto,omitempty"`
	TimezoneOffset int                 `json:"timezone_offset"`
	NowEpoch       int64               `json:"now_epoch"`
	AllowFuture    bool                `json:"allow_future"`
}

type monthScheduleOutput struct {
	Success     bool                  `json:"success"`
	Error       string                `json:"error,omitempty"`
	Assignments []schedule.Assignment `json:"assignments,omitempty"`
	Unsatisfied []schedule.DayDeficit `json:"unsatisfied,omitempty"`
	Store       schedule.PortablePlan `json:"days_by_person,omitempty"`
}

func (MonthScheduleTool) Name() string { return "generate_month_view" }

func (MonthScheduleTool) Description() string {
	return "Build a month's shift schedule. Input JSON: {year, month, people, tasks, " +
		"store_json?, additional_pto?, timezone_offset, now_epoch, allow_future}. " +
		"Answers with assignments, per-day unsatisfied deficits, and the updated " +
		"days_by_person plan store."
}

// Call runs the month driver on the parsed input.
func (t MonthScheduleTool) Call(ctx context.Context, input string) (string, error) {
	var in monthScheduleInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return refuse("invalid input: " + err.Error())
	}
	if in.Year < 1 || in.Month < 1 || in.Month > 12 {
		return refuse("year and month are required")
	}

	people, err := factory.ParsePeople(in.People)
	if err != nil {
		return refuse(err.Error())
	}
	tasks, err := factory.ParseTasks(in.Tasks)
	if err != nil {
		return refuse(err.Error())
	}
	store, err := factory.ParsePlanStore(in.StoreJSON)
	if err != nil {
		return refuse(err.Error())
	}
	pto, err := factory.ParsePTOMap(in.AdditionalPTO)
	if err != nil {
		return refuse(err.Error())
	}

	cal := schedule.FixedOffsetCalendar(in.TimezoneOffset)
	driver := schedule.NewHorizonDriver(cal, people, tasks, store, pto, in.NowEpoch, in.AllowFuture)
	first, _ := schedule.MonthSpan(in.Year, time.Month(in.Month))
	driver.SeedPrework(schedule.MondayOnOrBefore(first))

	assignments, unsatisfied, err := driver.ScheduleMonth(ctx, in.Year, time.Month(in.Month))
	if err != nil {
		if schedule.IsCancelled(err) {
			return "", err
		}
		return refuse(err.Error())
	}

	return answer(monthScheduleOutput{
		Success:     true,
		Assignments: assignments,
		Unsatisfied: unsatisfied,
		Store:       store.ToPortable(),
	})
}

// =============================================================================
// PTO ADMISSION TOOL
// =============================================================================

// ApprovePTOTool runs the strict PTO admission check.
type ApprovePTOTool struct{}

var _ tools.Tool = ApprovePTOTool{}

type approvePTOInput struct {
	PersonID          string              `json:"person_id"`
	PTODays           []string            `json:"pto_days"`
	People            []json.RawMessage   `json:"people"`
	Tasks             []json.RawMessage   `json:"tasks"`
	NowEpoch          int64               `json:"now_epoch"`
	TimezoneOffset    int                 `json:"timezone_offset"`
	BaseStore         json.RawMessage     `json:"base_store,omitempty"`
	BaselinePTOMap    map[string][]string `json:"baseline_pto_map,omitempty"`
	CohortPTORequests map[string][]string `json:"cohort_pto_requests,omitempty"`
}

type approvePTOOutput struct {
	Success  bool                      `json:"success"`
	Error    string                    `json:"error,omitempty"`
	Feasible bool                      `json:"feasible"`
	Result   *schedule.AdmissionResult `json:"result,omitempty"`
}

func (ApprovePTOTool) Name() string { return "can_approve_pto" }

func (ApprovePTOTool) Description() string {
	return "Check whether a PTO request can be approved without breaking coverage. " +
		"Input JSON: {person_id, pto_days, people, tasks, now_epoch, timezone_offset, " +
		"base_store?, baseline_pto_map?, cohort_pto_requests?}. Answers with feasible " +
		"and the residual deficits when not."
}

// Call runs the admission check on the parsed input.
func (t ApprovePTOTool) Call(ctx context.Context, input string) (string, error) {
	var in approvePTOInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return refuse("invalid input: " + err.Error())
	}

	people, err := factory.ParsePeople(in.People)
	if err != nil {
		return refuse(err.Error())
	}
	tasks, err := factory.ParseTasks(in.Tasks)
	if err != nil {
		return refuse(err.Error())
	}
	days, err := factory.ParseDates(in.PTODays)
	if err != nil {
		return refuse(err.Error())
	}
	baseStore, err := factory.ParsePlanStore(in.BaseStore)
	if err != nil {
		return refuse(err.Error())
	}
	baseline, err := factory.ParsePTOMap(in.BaselinePTOMap)
	if err != nil {
		return refuse(err.Error())
	}
	cohort, err := factory.ParsePTOMap(in.CohortPTORequests)
	if err != nil {
		return refuse(err.Error())
	}

	cal := schedule.FixedOffsetCalendar(in.TimezoneOffset)
	result, err := schedule.CheckAdmission(ctx, cal, schedule.AdmissionRequest{
		PersonID:    schedule.PersonID(in.PersonID),
		Days:        days,
		People:      people,
		Tasks:       tasks,
		BaselinePTO: baseline,
		CohortPTO:   cohort,
		BaseStore:   baseStore,
		CurrentTS:   in.NowEpoch,
	})
	if err != nil {
		if schedule.IsCancelled(err) {
			return "", err
		}
		return refuse(err.Error())
	}

	return answer(approvePTOOutput{
		Success:  true,
		Feasible: result.Feasible,
		Result:   result,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// All returns the tool set for agent registration.
func All() []tools.Tool {
	return []tools.Tool{MonthScheduleTool{}, ApprovePTOTool{}}
}

func refuse(msg string) (string, error) {
	out, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return string(out), nil
}

func answer(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return refuse("encoding answer: " + err.Error())
	}
	return string(out), nil
}

/*
Package factory converts wire payloads into canonical domain records.

PURPOSE:
  Callers send people, tasks, PTO maps, and plan stores as JSON whose key
  names drifted over time (`id` vs `person_id`, `start_epoch` vs `start_ts`,
  `requirements` vs `daily_requirements`). This package is the single place
  those variants are normalized. Each boundary type has exactly one parse
  function that either returns the canonical record or an InvalidInput
  error with a descriptive message; the solver never sees a raw payload.

WHY ONE PLACE?
  - Key-name tolerance stays out of the engine
  - Validation happens once, with field-level messages
  - New wire variants are a one-file change

USAGE:
  person, err := factory.ParsePerson(raw)
  tasks, err := factory.ParseTasks(rawList)
  store, err := factory.ParsePlanStore(raw)

SEE ALSO:
  - schedule/types.go: the canonical records
  - api/dto.go: request envelopes that carry these payloads
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// WIRE SHAPES
// =============================================================================

// personJSON accepts both historical person key sets.
type personJSON struct {
	ID               string   `json:"id"`
	PersonID         string   `json:"person_id"`
	Name             string   `json:"name"`
	Skills           []string `json:"skills"`
	PreworkedInLast6 *int     `json:"preworked_in_last_6"`
	PreworkedInLast7 *int     `json:"preworked_in_last_7"` // legacy name, same meaning
}

// taskJSON accepts both historical task key sets.
type taskJSON struct {
	ID                string         `json:"id"`
	TaskID            string         `json:"task_id"`
	Name              string         `json:"name"`
	StartTS           *int64         `json:"start_ts"`
	StartEpoch        *int64         `json:"start_epoch"`
	Start             *int64         `json:"start"`
	EndTS             *int64         `json:"end_ts"`
	EndEpoch          *int64         `json:"end_epoch"`
	End               *int64         `json:"end"`
	Requirements      map[string]int `json:"requirements"`
	DailyRequirements map[string]int `json:"daily_requirements"`
	RequiredSkills    map[string]int `json:"required_skills"`
}

// =============================================================================
// PERSON
// =============================================================================

// ParsePerson normalizes one person payload.
func ParsePerson(raw json.RawMessage) (schedule.Person, error) {
	var pj personJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		return schedule.Person{}, &schedule.InputError{Field: "person", Reason: err.Error()}
	}

	id := pj.PersonID
	if id == "" {
		id = pj.ID
	}
	if id == "" {
		return schedule.Person{}, &schedule.InputError{Field: "person", Reason: "missing id / person_id"}
	}

	prework := 0
	if pj.PreworkedInLast6 != nil {
		prework = *pj.PreworkedInLast6
	} else if pj.PreworkedInLast7 != nil {
		prework = *pj.PreworkedInLast7
	}
	if prework < 0 {
		prework = 0
	}
	if prework > 5 {
		prework = 5
	}

	return schedule.Person{
		ID:               schedule.PersonID(id),
		Name:             pj.Name,
		Skills:           schedule.NewSkillSet(pj.Skills...),
		PreworkedInLast6: prework,
	}, nil
}

// ParsePeople normalizes a list of person payloads.
func ParsePeople(raw []json.RawMessage) ([]schedule.Person, error) {
	out := make([]schedule.Person, 0, len(raw))
	for i, r := range raw {
		p, err := ParsePerson(r)
		if err != nil {
			return nil, &schedule.InputError{Field: fmt.Sprintf("people[%d]", i), Reason: err.Error()}
		}
		out = append(out, p)
	}
	return out, nil
}

// =============================================================================
// TASK
// =============================================================================

// ParseTask normalizes one task payload. Requirement counts must be
// positive; the interval must be non-empty.
func ParseTask(raw json.RawMessage) (schedule.Task, error) {
	var tj taskJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return schedule.Task{}, &schedule.InputError{Field: "task", Reason: err.Error()}
	}

	id := tj.TaskID
	if id == "" {
		id = tj.ID
	}
	if id == "" {
		return schedule.Task{}, &schedule.InputError{Field: "task", Reason: "missing id / task_id"}
	}

	start, ok := firstInt64(tj.StartTS, tj.StartEpoch, tj.Start)
	if !ok {
		return schedule.Task{}, &schedule.InputError{Field: "task " + id, Reason: "missing start_ts / start_epoch / start"}
	}
	end, ok := firstInt64(tj.EndTS, tj.EndEpoch, tj.End)
	if !ok {
		return schedule.Task{}, &schedule.InputError{Field: "task " + id, Reason: "missing end_ts / end_epoch / end"}
	}
	if end <= start {
		return schedule.Task{}, &schedule.InputError{Field: "task " + id, Reason: "end must be after start"}
	}

	reqs := tj.Requirements
	if reqs == nil {
		reqs = tj.DailyRequirements
	}
	if reqs == nil {
		reqs = tj.RequiredSkills
	}
	if len(reqs) == 0 {
		return schedule.Task{}, &schedule.InputError{Field: "task " + id, Reason: "missing requirements"}
	}
	canonical := make(map[string]int, len(reqs))
	for skill, count := range reqs {
		if skill == "" {
			return schedule.Task{}, &schedule.InputError{Field: "task " + id, Reason: "empty skill key in requirements"}
		}
		if count <= 0 {
			return schedule.Task{}, &schedule.InputError{Field: "task " + id, Reason: fmt.Sprintf("non-positive count %d for skill %q", count, skill)}
		}
		canonical[skill] = count
	}

	name := tj.Name
	if name == "" {
		name = id
	}

	return schedule.Task{
		ID:           schedule.TaskID(id),
		Name:         name,
		StartTS:      start,
		EndTS:        end,
		Requirements: canonical,
	}, nil
}

// ParseTasks normalizes a list of task payloads.
func ParseTasks(raw []json.RawMessage) ([]schedule.Task, error) {
	out := make([]schedule.Task, 0, len(raw))
	for i, r := range raw {
		t, err := ParseTask(r)
		if err != nil {
			return nil, &schedule.InputError{Field: fmt.Sprintf("tasks[%d]", i), Reason: err.Error()}
		}
		out = append(out, t)
	}
	return out, nil
}

// =============================================================================
// PLAN STORE AND PTO MAP
// =============================================================================

// ParsePlanStore accepts the bare portable mapping, the days_by_person
// wrapper, or the string-embedded json wrapper. A nil/empty payload yields
// a fresh store.
func ParsePlanStore(raw json.RawMessage) (*schedule.PlanStore, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return schedule.NewPlanStore(), nil
	}
	return schedule.PlanStoreFromJSON(raw)
}

// ParsePTOMap accepts the ISO-date -> [person_id] mapping.
func ParsePTOMap(raw map[string][]string) (schedule.PTOMap, error) {
	if raw == nil {
		return schedule.PTOMap{}, nil
	}
	return schedule.PTOFromPortable(schedule.PortablePTO(raw))
}

// ParseDates parses a list of ISO dates.
func ParseDates(raw []string) ([]schedule.Date, error) {
	out := make([]schedule.Date, 0, len(raw))
	for _, s := range raw {
		d, err := schedule.ParseDate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func firstInt64(candidates ...*int64) (int64, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers returned to clients

WIRE TOLERANCE:
  People, tasks, and plan stores arrive as raw JSON and are normalized by
  the factory package, which accepts the historical key variants
  (`id`/`person_id`, `start_ts`/`start_epoch`/`start`, ...). DTOs here only
  carry the envelopes.

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/parse.go: Payload normalization
*/
package api

import (
	"encoding/json"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarRequest asks for one month's schedule. StoreJSON and PlanData are
// alternative spellings of the starting plan store; StoreJSON wins when both
// are present. When People/Tasks are omitted the repository supplies them,
// department by department.
type CalendarRequest struct {
	Year           int                 `json:"year"`
	Month          int                 `json:"month"`
	People         []json.RawMessage   `json:"people,omitempty"`
	Tasks          []json.RawMessage   `json:"tasks,omitempty"`
	StoreJSON      json.RawMessage     `json:"store_json,omitempty"`
	PlanData       json.RawMessage     `json:"plan_data,omitempty"`
	AdditionalPTO  map[string][]string `json:"additional_pto,omitempty"`
	TimezoneOffset int                 `json:"timezone_offset"`
	UseGlobalPTO   bool                `json:"use_global_pto"`
	NowEpoch       *int64              `json:"now_epoch,omitempty"`
	AllowFuture    bool                `json:"allow_future"`
	Department     string              `json:"department,omitempty"`
}

// CalendarResponse is the month schedule. Assignments from all departments
// are concatenated in department order; Unsatisfied lists per-day residual
// deficits (empty means the whole month is covered).
type CalendarResponse struct {
	Year        int                   `json:"year"`
	Month       int                   `json:"month"`
	Assignments []schedule.Assignment `json:"assignments"`
	Unsatisfied []schedule.DayDeficit `json:"unsatisfied"`
	Store       schedule.PortablePlan `json:"days_by_person"`
	RequestID   string                `json:"request_id"`
	Success     bool                  `json:"success"`
	TookMS      int64                 `json:"took_ms"`
}

// =============================================================================
// PTO ADMISSION
// =============================================================================

// ApprovePTORequest is the strict admission check: can this person take
// these days off, given everyone's recent workload (BaseStore), the
// already-approved absences (BaselinePTOMap), and other pending requests
// (CohortPTORequests)?
type ApprovePTORequest struct {
	PersonID          string              `json:"person_id"`
	PTODays           []string            `json:"pto_days"`
	People            []json.RawMessage   `json:"people"`
	Tasks             []json.RawMessage   `json:"tasks"`
	NowEpoch          int64               `json:"now_epoch"`
	TimezoneOffset    int                 `json:"timezone_offset"`
	BaseStore         json.RawMessage     `json:"base_store,omitempty"`
	BaselinePTOMap    map[string][]string `json:"baseline_pto_map,omitempty"`
	CohortPTORequests map[string][]string `json:"cohort_pto_requests,omitempty"`
	UseGlobalPTO      bool                `json:"use_global_pto"`
}

// ApprovePTOResponse wraps the admission result.
type ApprovePTOResponse struct {
	Success   bool                      `json:"success"`
	Feasible  bool                      `json:"feasible"`
	Result    *schedule.AdmissionResult `json:"result"`
	RequestID string                    `json:"request_id"`
	TookMS    int64                     `json:"took_ms"`
}

// =============================================================================
// REPOSITORY SURFACE
// =============================================================================

// PersonDTO represents a person in API responses.
type PersonDTO struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// TaskDTO represents a task in API responses.
type TaskDTO struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	StartTS      int64          `json:"start_ts"`
	EndTS        int64          `json:"end_ts"`
	Requirements map[string]int `json:"requirements"`
}

// WritePTORequest upserts ledger days for one person.
type WritePTORequest struct {
	PersonID string   `json:"person_id"`
	Days     []string `json:"days"`
	Status   string   `json:"status,omitempty"` // defaults to "approved"
}

// DeletePTORequest removes ledger days for one person.
type DeletePTORequest struct {
	PersonID string   `json:"person_id"`
	Days     []string `json:"days"`
}

// PTOResponse returns a slice of the ledger as date -> person ids.
type PTOResponse struct {
	Status string               `json:"status"`
	PTO    schedule.PortablePTO `json:"pto"`
}

// LoadScenarioRequest selects the demo scenario to seed.
type LoadScenarioRequest struct {
	Scenario string `json:"scenario"`
}

// ErrorResponse is the standard error envelope. Success is always false.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

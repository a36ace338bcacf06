/*
handlers.go - HTTP API handlers for the shift scheduling engine

PURPOSE:
  Exposes the scheduling core via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Scheduling:
    POST   /calendar             Build one month's schedule
    POST   /pto/approve          Strict PTO admission check

  Repository:
    GET    /api/departments                 List departments
    GET    /api/departments/{d}/people      People of a department
    GET    /api/departments/{d}/tasks       Tasks overlapping [start, end]
    GET    /api/pto                         Read the PTO ledger
    POST   /api/pto                         Upsert PTO days
    DELETE /api/pto                         Remove PTO days

  Scenarios:
    POST   /api/scenarios/load   Seed the demo dataset

REQUEST FLOW:
  1. Parse HTTP request
  2. Normalize payloads via factory
  3. Call domain logic (driver, admission check)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: invalid_input (malformed payloads, bad dates)
  - 500: repository_failure, internal
  Infeasibility is NOT an error: /calendar answers 200 with a populated
  unsatisfied list, /pto/approve answers 200 with feasible=false.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loader
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// Now is the clock used when a request carries no now_epoch.
	// Overridable in tests.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store: store,
		Now:   time.Now,
	}
}

// =============================================================================
// CALENDAR
// =============================================================================

// Calendar builds one month's schedule.
// POST /calendar
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestID := uuid.NewString()
	ctx := r.Context()

	var req CalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_input", err)
		return
	}
	if req.Year < 1 || req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "year and month are required", "invalid_input", nil)
		return
	}

	cal := schedule.FixedOffsetCalendar(req.TimezoneOffset)
	month := time.Month(req.Month)
	first, last := schedule.MonthSpan(req.Year, month)

	// The month driver walks Monday-anchored weeks, so the effective span
	// reaches before the 1st and past the last day.
	spanStart := schedule.MondayOnOrBefore(first)
	spanEnd := schedule.MondayOnOrBefore(last).AddDays(6)

	raw := req.StoreJSON
	if len(raw) == 0 {
		raw = req.PlanData
	}
	store, err := factory.ParsePlanStore(raw)
	if err != nil {
		writeDomainError(w, "Invalid plan store", err)
		return
	}

	pto, err := factory.ParsePTOMap(req.AdditionalPTO)
	if err != nil {
		writeDomainError(w, "Invalid additional_pto", err)
		return
	}
	if req.UseGlobalPTO {
		global, err := h.Store.ReadPTO(ctx, spanStart, spanEnd)
		if err != nil {
			writeDomainError(w, "Failed to read PTO ledger", err)
			return
		}
		pto.Merge(global)
	}

	nowTS := h.Now().Unix()
	if req.NowEpoch != nil {
		nowTS = *req.NowEpoch
	}

	type unit struct {
		people []schedule.Person
		tasks  []schedule.Task
	}
	var units []unit

	if len(req.People) > 0 || len(req.Tasks) > 0 {
		people, err := factory.ParsePeople(req.People)
		if err != nil {
			writeDomainError(w, "Invalid people", err)
			return
		}
		tasks, err := factory.ParseTasks(req.Tasks)
		if err != nil {
			writeDomainError(w, "Invalid tasks", err)
			return
		}
		units = append(units, unit{people, tasks})
	} else {
		departments := []string{req.Department}
		if req.Department == "" {
			departments, err = h.Store.ListDepartments(ctx)
			if err != nil {
				writeDomainError(w, "Failed to list departments", err)
				return
			}
		}
		for _, dep := range departments {
			people, err := h.Store.ListPeople(ctx, dep)
			if err != nil {
				writeDomainError(w, "Failed to list people", err)
				return
			}
			tasks, err := h.Store.ListTasksOverlapping(ctx, dep, spanStart, spanEnd)
			if err != nil {
				writeDomainError(w, "Failed to list tasks", err)
				return
			}
			units = append(units, unit{people, tasks})
		}
	}

	// Departments share the plan store: person ids are global, so cross-
	// department workload counts against the same rolling cap.
	resp := CalendarResponse{
		Year:        req.Year,
		Month:       req.Month,
		Assignments: []schedule.Assignment{},
		Unsatisfied: []schedule.DayDeficit{},
		RequestID:   requestID,
		Success:     true,
	}
	for _, u := range units {
		driver := schedule.NewHorizonDriver(cal, u.people, u.tasks, store, pto, nowTS, req.AllowFuture)
		driver.SeedPrework(spanStart)
		assignments, unsatisfied, err := driver.ScheduleMonth(ctx, req.Year, month)
		if err != nil {
			writeDomainError(w, "Scheduling failed", err)
			return
		}
		resp.Assignments = append(resp.Assignments, assignments...)
		resp.Unsatisfied = append(resp.Unsatisfied, unsatisfied...)
	}
	resp.Store = store.ToPortable()
	resp.TookMS = time.Since(started).Milliseconds()

	log.Printf("[API] calendar %04d-%02d: %d assignments, %d unsatisfied days (%dms)",
		req.Year, req.Month, len(resp.Assignments), len(resp.Unsatisfied), resp.TookMS)
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PTO ADMISSION
// =============================================================================

// ApprovePTO runs the strict admission check.
// POST /pto/approve
func (h *Handler) ApprovePTO(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestID := uuid.NewString()
	ctx := r.Context()

	var req ApprovePTORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_input", err)
		return
	}

	people, err := factory.ParsePeople(req.People)
	if err != nil {
		writeDomainError(w, "Invalid people", err)
		return
	}
	tasks, err := factory.ParseTasks(req.Tasks)
	if err != nil {
		writeDomainError(w, "Invalid tasks", err)
		return
	}
	days, err := factory.ParseDates(req.PTODays)
	if err != nil {
		writeDomainError(w, "Invalid pto_days", err)
		return
	}
	baseStore, err := factory.ParsePlanStore(req.BaseStore)
	if err != nil {
		writeDomainError(w, "Invalid base_store", err)
		return
	}
	baseline, err := factory.ParsePTOMap(req.BaselinePTOMap)
	if err != nil {
		writeDomainError(w, "Invalid baseline_pto_map", err)
		return
	}
	cohort, err := factory.ParsePTOMap(req.CohortPTORequests)
	if err != nil {
		writeDomainError(w, "Invalid cohort_pto_requests", err)
		return
	}

	if req.UseGlobalPTO && len(days) > 0 {
		lo, hi := days[0], days[0]
		for _, d := range days {
			if d.Before(lo) {
				lo = d
			}
			if d.After(hi) {
				hi = d
			}
		}
		global, err := h.Store.ReadPTO(ctx, schedule.MondayOnOrBefore(lo), schedule.MondayOnOrBefore(hi).AddDays(6))
		if err != nil {
			writeDomainError(w, "Failed to read PTO ledger", err)
			return
		}
		baseline.Merge(global)
	}

	cal := schedule.FixedOffsetCalendar(req.TimezoneOffset)
	result, err := schedule.CheckAdmission(ctx, cal, schedule.AdmissionRequest{
		PersonID:    schedule.PersonID(req.PersonID),
		Days:        days,
		People:      people,
		Tasks:       tasks,
		BaselinePTO: baseline,
		CohortPTO:   cohort,
		BaseStore:   baseStore,
		CurrentTS:   req.NowEpoch,
	})
	if err != nil {
		writeDomainError(w, "Admission check failed", err)
		return
	}

	tookMS := time.Since(started).Milliseconds()
	log.Printf("[API] pto/approve %s over %d days: feasible=%v (%dms)",
		req.PersonID, len(days), result.Feasible, tookMS)
	writeJSON(w, http.StatusOK, ApprovePTOResponse{
		Success:   true,
		Feasible:  result.Feasible,
		Result:    result,
		RequestID: requestID,
		TookMS:    tookMS,
	})
}

// =============================================================================
// REPOSITORY SURFACE
// =============================================================================

// ListDepartments returns all department names.
// GET /api/departments
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list departments", err)
		return
	}
	if departments == nil {
		departments = []string{}
	}
	writeJSON(w, http.StatusOK, departments)
}

// ListPeople returns the people of one department.
// GET /api/departments/{department}/people
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	people, err := h.Store.ListPeople(r.Context(), department)
	if err != nil {
		writeDomainError(w, "Failed to list people", err)
		return
	}

	dtos := make([]PersonDTO, 0, len(people))
	for _, p := range people {
		dtos = append(dtos, PersonDTO{
			ID:     string(p.ID),
			Name:   p.Name,
			Skills: p.Skills.Sorted(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListTasks returns the department's tasks overlapping [start, end].
// GET /api/departments/{department}/tasks?start=ISO&end=ISO
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	start, err := schedule.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", "invalid_input", err)
		return
	}
	end, err := schedule.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", "invalid_input", err)
		return
	}

	tasks, err := h.Store.ListTasksOverlapping(r.Context(), department, start, end)
	if err != nil {
		writeDomainError(w, "Failed to list tasks", err)
		return
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, TaskDTO{
			ID:           string(t.ID),
			Name:         t.Name,
			StartTS:      t.StartTS,
			EndTS:        t.EndTS,
			Requirements: t.Requirements,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPTO reads a slice of the PTO ledger. Default view is the approved
// entries in [start, end]; status=pending or status=denied lists those
// entries across all days.
// GET /api/pto?start=ISO&end=ISO[&status=...]
func (h *Handler) GetPTO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := r.URL.Query().Get("status")

	if status != "" && status != string(schedule.PTOApproved) {
		if status != string(schedule.PTOPending) && status != string(schedule.PTODenied) {
			writeError(w, http.StatusBadRequest, "Unknown status "+status, "invalid_input", nil)
			return
		}
		pto, err := h.Store.ListPTO(ctx, schedule.PTOStatus(status))
		if err != nil {
			writeDomainError(w, "Failed to read PTO ledger", err)
			return
		}
		writeJSON(w, http.StatusOK, PTOResponse{Status: status, PTO: pto})
		return
	}

	start, err := schedule.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", "invalid_input", err)
		return
	}
	end, err := schedule.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", "invalid_input", err)
		return
	}

	pto, err := h.Store.ReadPTO(ctx, start, end)
	if err != nil {
		writeDomainError(w, "Failed to read PTO ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, PTOResponse{
		Status: string(schedule.PTOApproved),
		PTO:    pto.ToPortable(),
	})
}

// WritePTO upserts ledger days for one person.
// POST /api/pto
func (h *Handler) WritePTO(w http.ResponseWriter, r *http.Request) {
	var req WritePTORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_input", err)
		return
	}
	if req.PersonID == "" {
		writeError(w, http.StatusBadRequest, "person_id is required", "invalid_input", nil)
		return
	}
	status := schedule.PTOStatus(req.Status)
	if req.Status == "" {
		status = schedule.PTOApproved
	}
	if status != schedule.PTOPending && status != schedule.PTOApproved && status != schedule.PTODenied {
		writeError(w, http.StatusBadRequest, "Unknown status "+req.Status, "invalid_input", nil)
		return
	}
	days, err := factory.ParseDates(req.Days)
	if err != nil {
		writeDomainError(w, "Invalid days", err)
		return
	}

	if err := h.Store.WritePTO(r.Context(), schedule.PersonID(req.PersonID), days, status); err != nil {
		writeDomainError(w, "Failed to write PTO", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "written": len(days)})
}

// DeletePTO removes ledger days for one person.
// DELETE /api/pto
func (h *Handler) DeletePTO(w http.ResponseWriter, r *http.Request) {
	var req DeletePTORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_input", err)
		return
	}
	if req.PersonID == "" {
		writeError(w, http.StatusBadRequest, "person_id is required", "invalid_input", nil)
		return
	}
	days, err := factory.ParseDates(req.Days)
	if err != nil {
		writeDomainError(w, "Invalid days", err)
		return
	}

	if err := h.Store.DeletePTO(r.Context(), schedule.PersonID(req.PersonID), days); err != nil {
		writeDomainError(w, "Failed to delete PTO", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": len(days)})
}

// =============================================================================
// SCENARIOS
// =============================================================================

// LoadScenario resets the repository and seeds a demo dataset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_input", err)
		return
	}
	name := req.Scenario
	if name == "" {
		name = ScenarioHospital
	}

	if err := LoadDemoScenario(r.Context(), h.Store, name); err != nil {
		if schedule.IsInvalidInput(err) {
			writeError(w, http.StatusBadRequest, "Unknown scenario "+name, "invalid_input", err)
			return
		}
		writeDomainError(w, "Failed to load scenario", err)
		return
	}

	log.Printf("[API] loaded scenario %q", name)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scenario": name})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Success: false, Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case schedule.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, message, "invalid_input", err)
	case schedule.IsRepositoryFailure(err):
		writeError(w, http.StatusInternalServerError, message, "repository_failure", err)
	case schedule.IsCancelled(err):
		writeError(w, http.StatusInternalServerError, message, "cancelled", err)
	default:
		writeError(w, http.StatusInternalServerError, message, "internal", err)
	}
}

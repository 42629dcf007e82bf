/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes attendance analysis over REST. Handles HTTP request/response, JSON
  serialization and validation, and delegates to timesheet.Service and the
  SQLite store.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List all employees
    POST   /api/employees                        Create or update employee
    GET    /api/employees/{id}                   Get employee details
    DELETE /api/employees/{id}                   Delete employee and their data
    GET    /api/employees/{id}/schedule          Effective schedule
    PUT    /api/employees/{id}/schedule          Replace schedule

  Attendance:
    POST   /api/employees/{id}/punches           Add manual punches
    GET    /api/employees/{id}/punches           Punches in ?from&to
    PUT    /api/employees/{id}/overrides/{date}  Manual day correction
    DELETE /api/employees/{id}/overrides/{date}  Back to raw punches
    GET    /api/employees/{id}/analysis          Analysis of ?from&to
    POST   /api/employees/{id}/timesheets        Save a period summary
    GET    /api/employees/{id}/timesheets        Saved summaries

  Time off & holidays:
    GET    /api/employees/{id}/time-off          Records in ?from&to
    POST   /api/time-off                         Create (pending)
    POST   /api/time-off/{id}/approve            Approve
    DELETE /api/time-off/{id}                    Delete
    GET    /api/holidays                         Holidays in ?from&to
    POST   /api/holidays                         Create
    POST   /api/holidays/defaults                National holidays for a year
    DELETE /api/holidays/{id}                    Delete

PERIODS:
  ?from=YYYY-MM-DD&to=YYYY-MM-DD. Both omitted means the current month up
  to today; giving only one is an error.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee, time-off or holiday not found
  - 409: Timesheet already saved for the period
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

const punchLayout = "2006-01-02T15:04"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *timesheet.Service
	Store     *sqlite.Store
	Schedules *factory.ScheduleFactory
	Logger    *slog.Logger

	validate *validator.Validate

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler backed by svc, whose repository is store.
func NewHandler(svc *timesheet.Service, store *sqlite.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		Service:   svc,
		Store:     store,
		Schedules: factory.NewScheduleFactory(),
		Logger:    logger,
		validate:  v,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp := timesheet.Employee{
		ID:    generic.EmployeeID(req.ID),
		Name:  req.Name,
		Email: req.Email,
	}
	emp.HireDate, _ = generic.ParseDate(req.HireDate)
	if req.BirthDate != "" {
		bd, _ := generic.ParseDate(req.BirthDate)
		emp.BirthDate = &bd
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee and everything recorded for them.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetSchedule returns the employee's schedule, or the default one when none
// is configured.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	stored, err := h.Store.GetSchedule(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to get schedule", err)
		return
	}
	schedule := timesheet.DefaultSchedule(emp.ID)
	if stored != nil {
		schedule = *stored
	}

	writeJSON(w, http.StatusOK, ScheduleDTO{
		ScheduleJSON:        h.Schedules.ToJSON(schedule),
		IsDefault:           stored == nil,
		ExpectedWeekMinutes: schedule.ExpectedWeekMinutes(),
	})
}

// PutSchedule replaces the employee's schedule.
func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sj.EmployeeID = string(emp.ID)

	schedule, err := h.Schedules.FromJSON(sj)
	if err != nil {
		h.fail(w, r, "Invalid schedule", err)
		return
	}
	schedule.UpdatedAt = time.Now()
	if err := h.Store.SaveSchedule(r.Context(), schedule); err != nil {
		h.fail(w, r, "Failed to save schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, ScheduleDTO{
		ScheduleJSON:        h.Schedules.ToJSON(schedule),
		ExpectedWeekMinutes: schedule.ExpectedWeekMinutes(),
	})
}

// =============================================================================
// PUNCH & OVERRIDE HANDLERS
// =============================================================================

// AddPunches stores manually entered punches. Repeats of existing timestamps
// are skipped.
func (h *Handler) AddPunches(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	var req AddPunchesRequest
	if !h.decode(w, r, &req) {
		return
	}

	punches, err := manualPunches(emp.ID, req.Punches)
	if err != nil {
		h.fail(w, r, "Invalid punch", err)
		return
	}

	inserted, err := h.Store.AddPunches(r.Context(), punches)
	if err != nil {
		h.fail(w, r, "Failed to add punches", err)
		return
	}
	writeJSON(w, http.StatusCreated, AddPunchesResponse{
		Received: len(punches),
		Inserted: inserted,
		Skipped:  len(punches) - inserted,
	})
}

// manualPunches converts request punches, rejecting any timestamp that does
// not parse.
func manualPunches(id generic.EmployeeID, in []PunchInput) ([]timesheet.Punch, error) {
	punches := make([]timesheet.Punch, 0, len(in))
	for _, p := range in {
		at, err := time.Parse(punchLayout, p.At)
		if err != nil {
			return nil, &generic.InputError{Field: "at", Value: p.At, Reason: "use YYYY-MM-DDTHH:MM"}
		}
		punches = append(punches, timesheet.Punch{
			ID:         uuid.NewString(),
			EmployeeID: id,
			At:         at,
			Source:     timesheet.SourceManual,
		})
	}
	return punches, nil
}

// ListPunches returns the raw punches of a period.
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	period, ok := h.period(w, r)
	if !ok {
		return
	}

	punches, err := h.Store.PunchesInRange(r.Context(), emp.ID, period)
	if err != nil {
		h.fail(w, r, "Failed to list punches", err)
		return
	}
	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toPunchDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutOverride stores a manual correction for one date.
func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	var req OverrideRequest
	if !h.decode(w, r, &req) {
		return
	}
	times, err := factory.TimesFromJSON(req.Times)
	if err != nil {
		h.fail(w, r, "Invalid times", err)
		return
	}

	saved, err := h.Service.ApplyOverride(r.Context(), timesheet.DayOverride{
		EmployeeID: generic.EmployeeID(chi.URLParam(r, "id")),
		Date:       date,
		Times:      times,
		Notes:      req.Notes,
	})
	if err != nil {
		h.fail(w, r, "Failed to save override", err)
		return
	}
	writeJSON(w, http.StatusOK, toOverrideDTO(saved))
}

// DeleteOverride removes a correction.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Service.ClearOverride(r.Context(), generic.EmployeeID(chi.URLParam(r, "id")), date); err != nil {
		h.fail(w, r, "Failed to delete override", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// ANALYSIS & TIMESHEET HANDLERS
// =============================================================================

// GetAnalysis runs the engine over the requested period.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}

	res, err := h.Service.Analyze(r.Context(), generic.EmployeeID(chi.URLParam(r, "id")), period)
	if err != nil {
		h.fail(w, r, "Failed to analyze period", err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisDTO(res))
}

// SaveTimesheet analyzes the period and freezes the result.
func (h *Handler) SaveTimesheet(w http.ResponseWriter, r *http.Request) {
	var req SaveTimesheetRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := h.parsePeriod(req.From, req.To)
	if err != nil {
		h.fail(w, r, "Invalid period", err)
		return
	}

	ctx := r.Context()
	res, err := h.Service.Analyze(ctx, generic.EmployeeID(chi.URLParam(r, "id")), period)
	if err != nil {
		h.fail(w, r, "Failed to analyze period", err)
		return
	}
	summary, err := h.Service.SaveTimesheet(ctx, res, req.Notes)
	if err != nil {
		h.fail(w, r, "Failed to save timesheet", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimesheetDTO(summary))
}

// ListTimesheets returns the saved summaries of an employee.
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	summaries, err := h.Store.ListTimesheets(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to list timesheets", err)
		return
	}
	dtos := make([]TimesheetDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toTimesheetDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TIME-OFF HANDLERS
// =============================================================================

// ListTimeOff returns the employee's records overlapping the period, approved
// or not.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	period, ok := h.period(w, r)
	if !ok {
		return
	}

	book, err := h.Store.TimeOffInRange(r.Context(), emp.ID, period)
	if err != nil {
		h.fail(w, r, "Failed to list time off", err)
		return
	}
	dtos := make([]TimeOffDTO, len(book))
	for i, t := range book {
		dtos[i] = toTimeOffDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTimeOff records a pending excused absence.
func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeOffRequest
	if !h.decode(w, r, &req) {
		return
	}
	kind, err := timeoff.ParseKind(req.Kind)
	if err != nil {
		h.fail(w, r, "Invalid time-off type", err)
		return
	}

	t := timeoff.TimeOff{
		ID:          uuid.NewString(),
		EmployeeID:  generic.EmployeeID(req.EmployeeID),
		Kind:        kind,
		Reason:      req.Reason,
		DocumentRef: req.DocumentRef,
	}
	t.Start, _ = generic.ParseDate(req.Start)
	t.End, _ = generic.ParseDate(req.End)
	if err := t.Validate(); err != nil {
		h.fail(w, r, "Invalid time off", err)
		return
	}

	if err := h.Store.SaveTimeOff(r.Context(), t); err != nil {
		h.fail(w, r, "Failed to save time off", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeOffDTO(t))
}

// ApproveTimeOff approves a pending record.
func (h *Handler) ApproveTimeOff(w http.ResponseWriter, r *http.Request) {
	t, err := timeoff.Approve(r.Context(), h.Store, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to approve time off", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "time off approved",
		slog.String("id", t.ID),
		slog.String("employee_id", string(t.EmployeeID)))
	writeJSON(w, http.StatusOK, toTimeOffDTO(*t))
}

// DeleteTimeOff deletes a record.
func (h *Handler) DeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTimeOff(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete time off", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays relevant to the period.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	holidays, err := h.Store.ListHolidays(r.Context(), period)
	if err != nil {
		h.fail(w, r, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, _ := generic.ParseDate(req.Date)

	holiday := generic.Holiday{
		ID:        uuid.NewString(),
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
		Notes:     req.Notes,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.fail(w, r, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// AddDefaultHolidays adds the national holidays of a year. Saving is keyed
// by deterministic IDs, so calling it twice changes nothing.
// POST /api/holidays/defaults
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	var req DefaultHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	year := req.Year
	if year == 0 {
		year = generic.Today(h.Service.Clock).Year()
	}

	holidays := generic.NationalHolidays(year)
	for _, hol := range holidays {
		if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
			h.fail(w, r, "Failed to save holidays", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"year":   year,
		"count":  len(holidays),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a domain error to its HTTP status. Only unexpected errors are
// logged; the request logger already records the status of the others.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), message, slog.Any("error", err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrDuplicateTimesheet):
		return http.StatusConflict
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and validates it. On failure the error
// response is already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fmt.Sprintf("failed %q rule", fe.Tag())
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: fields})
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (*timesheet.Employee, bool) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return nil, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return nil, false
	}
	return emp, true
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (generic.Period, bool) {
	q := r.URL.Query()
	p, err := h.parsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		h.fail(w, r, "Invalid period", err)
		return generic.Period{}, false
	}
	return p, true
}

func (h *Handler) parsePeriod(from, to string) (generic.Period, error) {
	if from == "" && to == "" {
		return h.Service.DefaultPeriod(), nil
	}
	if from == "" {
		return generic.Period{}, &generic.InputError{Field: "from", Reason: "required when to is given"}
	}
	if to == "" {
		return generic.Period{}, &generic.InputError{Field: "to", Reason: "required when from is given"}
	}
	start, err := generic.ParseDate(from)
	if err != nil {
		return generic.Period{}, &generic.InputError{Field: "from", Value: from, Reason: "use YYYY-MM-DD"}
	}
	end, err := generic.ParseDate(to)
	if err != nil {
		return generic.Period{}, &generic.InputError{Field: "to", Value: to, Reason: "use YYYY-MM-DD"}
	}
	return generic.NewPeriod(start, end)
}

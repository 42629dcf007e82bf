/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	attendance data. Each scenario creates employees, schedules, punches,
	holidays and time off that demonstrate one behaviour of the engine.

AVAILABLE SCENARIOS:

	overtime-week:     Overtime, an absence and an exact day in one week
	dsr-forfeit:       A full-day absence that forfeits the weekly rest day
	holiday-birthday:  Worked holiday and worked birthday paid at 100%
	saturday-roster:   Custom schedule with a half-day Saturday
	review-queue:      Broken punch sequences flagged for manual review

DATES:

	Every scenario is laid out on the last complete Sunday-Saturday week
	before today, so the default month-to-date analysis shows it (except
	during the first days of a month, when ?from&to is needed).

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "dsr-forfeit"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, week)
 3. Add it to the 'loaders' map

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and helpers
  - factory/schedule.go: Schedule JSON presets
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "overtime-week",
		Name:        "Overtime Week",
		Description: "Ten-hour Monday, absent Tuesday, exact days otherwise",
	},
	{
		ID:          "dsr-forfeit",
		Name:        "Forfeited Rest Day",
		Description: "A full-day absence forfeits the paid Sunday closing the week",
	},
	{
		ID:          "holiday-birthday",
		Name:        "Holiday and Birthday",
		Description: "Work on a recurring holiday and on the employee's birthday",
	},
	{
		ID:          "saturday-roster",
		Name:        "Saturday Roster",
		Description: "44-hour schedule with a four-hour Saturday and approved sick leave",
	},
	{
		ID:          "review-queue",
		Name:        "Review Queue",
		Description: "Missing exits and out-of-order times flagged for review, one fixed by an override",
	},
}

type scenarioLoader func(h *Handler, ctx context.Context, week generic.Period) error

var loaders = map[string]scenarioLoader{
	"overtime-week":    (*Handler).loadOvertimeWeekScenario,
	"dsr-forfeit":      (*Handler).loadDsrForfeitScenario,
	"holiday-birthday": (*Handler).loadHolidayBirthdayScenario,
	"saturday-roster":  (*Handler).loadSaturdayRosterScenario,
	"review-queue":     (*Handler).loadReviewQueueScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	load, ok := loaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	week := lastFullWeek(generic.Today(h.Service.Clock))
	if err := load(h, ctx, week); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.InfoContext(ctx, "scenario loaded",
		slog.String("scenario", req.ScenarioID),
		slog.String("week", week.String()))
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"from":     week.Start.String(),
		"to":       week.End.String(),
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lastFullWeek is the Sunday-Saturday week that ended before today's week.
func lastFullWeek(today generic.TimePoint) generic.Period {
	return generic.WeekOf(generic.WeekStart(today).AddDays(-7))
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// Week days by offset from the Sunday that starts the week.
const (
	sunday = iota
	monday
	tuesday
	wednesday
	thursday
	friday
	saturday
)

func (h *Handler) loadOvertimeWeekScenario(ctx context.Context, week generic.Period) error {
	emp, err := h.seedEmployee(ctx, "emp-ana", "Ana Souza", nil)
	if err != nil {
		return err
	}
	d := week.Start
	batch := []timesheet.Punch{}
	batch = append(batch, h.punches(emp, d.AddDays(monday), "07:00", "12:00", "13:00", "18:00")...)
	for _, off := range []int{wednesday, thursday, friday} {
		batch = append(batch, h.punches(emp, d.AddDays(off), "08:00", "12:00", "13:00", "17:00")...)
	}
	_, err = h.Store.AddPunches(ctx, batch)
	return err
}

func (h *Handler) loadDsrForfeitScenario(ctx context.Context, week generic.Period) error {
	emp, err := h.seedEmployee(ctx, "emp-bruno", "Bruno Lima", nil)
	if err != nil {
		return err
	}
	d := week.Start
	var batch []timesheet.Punch
	for _, off := range []int{monday, tuesday, thursday} {
		batch = append(batch, h.punches(emp, d.AddDays(off), "08:00", "12:00", "13:00", "17:00")...)
	}
	// Friday: left at noon, a half-day absence in the same week.
	batch = append(batch, h.punches(emp, d.AddDays(friday), "08:00", "12:00")...)
	_, err = h.Store.AddPunches(ctx, batch)
	return err
}

func (h *Handler) loadHolidayBirthdayScenario(ctx context.Context, week generic.Period) error {
	d := week.Start
	birth := generic.NewTimePoint(1990, d.AddDays(wednesday).Month(), d.AddDays(wednesday).Day())
	emp, err := h.seedEmployee(ctx, "emp-carla", "Carla Dias", &birth)
	if err != nil {
		return err
	}

	holiday := d.AddDays(tuesday)
	if err := h.Store.SaveHoliday(ctx, generic.Holiday{
		ID:        "demo-holiday",
		Date:      generic.NewTimePoint(2019, holiday.Month(), holiday.Day()),
		Name:      "Founders Day",
		Recurring: true,
	}); err != nil {
		return err
	}

	var batch []timesheet.Punch
	for _, off := range []int{monday, tuesday, wednesday, thursday, friday} {
		batch = append(batch, h.punches(emp, d.AddDays(off), "08:00", "12:00", "13:00", "17:00")...)
	}
	_, err = h.Store.AddPunches(ctx, batch)
	return err
}

func (h *Handler) loadSaturdayRosterScenario(ctx context.Context, week generic.Period) error {
	emp, err := h.seedEmployee(ctx, "emp-diego", "Diego Alves", nil)
	if err != nil {
		return err
	}
	schedule, err := h.Schedules.ParseSchedule(factory.SaturdayHalfDayScheduleJSON(string(emp)))
	if err != nil {
		return err
	}
	if err := h.Store.SaveSchedule(ctx, schedule); err != nil {
		return err
	}

	d := week.Start
	if err := h.Store.SaveTimeOff(ctx, timeoff.TimeOff{
		ID:          uuid.NewString(),
		EmployeeID:  emp,
		Kind:        timeoff.KindMedicalLeave,
		Start:       d.AddDays(thursday),
		End:         d.AddDays(friday),
		Reason:      "Flu",
		DocumentRef: "certificate-0042",
		Approved:    true,
	}); err != nil {
		return err
	}

	var batch []timesheet.Punch
	for _, off := range []int{monday, tuesday, wednesday} {
		batch = append(batch, h.punches(emp, d.AddDays(off), "08:00", "12:00", "13:00", "16:20")...)
	}
	batch = append(batch, h.punches(emp, d.AddDays(saturday), "08:00", "12:00")...)
	_, err = h.Store.AddPunches(ctx, batch)
	return err
}

func (h *Handler) loadReviewQueueScenario(ctx context.Context, week generic.Period) error {
	emp, err := h.seedEmployee(ctx, "emp-elisa", "Elisa Rocha", nil)
	if err != nil {
		return err
	}
	d := week.Start
	var batch []timesheet.Punch
	batch = append(batch, h.punches(emp, d.AddDays(monday), "08:00", "12:00", "13:00", "17:00")...)
	// Tuesday: forgot to clock out.
	batch = append(batch, h.punches(emp, d.AddDays(tuesday), "08:00", "12:00", "13:00")...)
	batch = append(batch, h.punches(emp, d.AddDays(wednesday), "08:00", "12:00", "13:00", "17:00")...)
	// Thursday: forgot to clock out as well; fixed below with an override.
	batch = append(batch, h.punches(emp, d.AddDays(thursday), "08:00")...)
	batch = append(batch, h.punches(emp, d.AddDays(friday), "08:00", "12:00", "13:00", "17:00")...)
	if _, err := h.Store.AddPunches(ctx, batch); err != nil {
		return err
	}

	times, err := factory.ParseTimes(`{"entry":"08:00","lunch_out":"12:00","lunch_in":"13:00","exit":"17:00"}`)
	if err != nil {
		return err
	}
	_, err = h.Service.ApplyOverride(ctx, timesheet.DayOverride{
		EmployeeID: emp,
		Date:       d.AddDays(thursday),
		Times:      times,
		Notes:      "Badge reader offline, confirmed by supervisor",
	})
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, id, name string, birth *generic.TimePoint) (generic.EmployeeID, error) {
	emp := timesheet.Employee{
		ID:        generic.EmployeeID(id),
		Name:      name,
		Email:     id + "@example.com",
		HireDate:  generic.NewTimePoint(2022, 1, 10),
		BirthDate: birth,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return "", err
	}
	return emp.ID, nil
}

// punches builds imported punches for one date.
func (h *Handler) punches(emp generic.EmployeeID, date generic.TimePoint, clocks ...string) []timesheet.Punch {
	batch := "demo-" + date.String()
	out := make([]timesheet.Punch, 0, len(clocks))
	for _, s := range clocks {
		c, err := generic.ParseClockTime(s)
		if err != nil {
			panic(fmt.Sprintf("demo clock %q: %v", s, err))
		}
		out = append(out, timesheet.Punch{
			ID:         uuid.NewString(),
			EmployeeID: emp,
			At:         date.At(c),
			Source:     timesheet.SourceImport,
			BatchID:    batch,
		})
	}
	return out
}

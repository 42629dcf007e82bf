/*
handlers_test.go - HTTP tests for the API

Tests for:
- Employee, schedule, punch and override endpoints
- Analysis endpoint output and error mapping
- Timesheet save and duplicate handling
- Time-off approval and holidays
- Demo scenarios and the monthly close scheduler
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/timesheet"
)

// Monday 10 March 2025.
var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type testServer struct {
	h      *Handler
	store  *sqlite.Store
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := timesheet.NewService(store, logger)
	svc.Clock = func() time.Time { return testNow }

	h := NewHandler(svc, store, logger)
	return &testServer{
		h:      h,
		store:  store,
		router: NewRouter(h, RouterOptions{AllowedOrigins: []string{"*"}, StaticDir: t.TempDir() + "/missing", Scenarios: true}),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) createEmployee(t *testing.T, id, birth string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID: id, Name: "Test " + id, Email: id + "@example.com", HireDate: "2024-01-02", BirthDate: birth,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) addPunches(t *testing.T, id string, stamps ...string) AddPunchesResponse {
	t.Helper()
	req := AddPunchesRequest{}
	for _, at := range stamps {
		req.Punches = append(req.Punches, PunchInput{At: at})
	}
	rec := s.do(t, http.MethodPost, "/api/employees/"+id+"/punches", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[AddPunchesResponse](t, rec)
}

// =============================================================================
// EMPLOYEES & SCHEDULES
// =============================================================================

func TestEmployees_CreateGetList(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "1990-03-05")

	rec := s.do(t, http.MethodGet, "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emp := decodeBody[EmployeeDTO](t, rec)
	assert.Equal(t, "1990-03-05", emp.BirthDate)

	rec = s.do(t, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]EmployeeDTO](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/employees/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: "e", Name: "E", HireDate: "02/01/2024"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[map[string]any](t, rec)
	details, ok := resp["details"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Contains(t, details, "hire_date")

	req := httptest.NewRequest(http.MethodPost, "/api/employees", bytes.NewBufferString("{"))
	out := httptest.NewRecorder()
	s.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestEmployees_Delete(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/employees/emp-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/employees/emp-1", nil).Code)
}

func TestSchedule_DefaultThenCustom(t *testing.T) {
	// GIVEN: An employee with no schedule
	// WHEN: The schedule is read, replaced, and read again
	// THEN: The default is reported first and the custom one after
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	rec := s.do(t, http.MethodGet, "/api/employees/emp-1/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[ScheduleDTO](t, rec)
	assert.True(t, got.IsDefault)
	assert.Equal(t, 2400, got.ExpectedWeekMinutes)

	body := json.RawMessage(`{"daily_minutes":440,"weekly_minutes":2440,"days":{
		"monday":{"works":true},"tuesday":{"works":true},"wednesday":{"works":true},
		"thursday":{"works":true},"friday":{"works":true},"saturday":{"works":true,"minutes":240}}}`)
	rec = s.do(t, http.MethodPut, "/api/employees/emp-1/schedule", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/employees/emp-1/schedule", nil)
	got = decodeBody[ScheduleDTO](t, rec)
	assert.False(t, got.IsDefault)
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.Equal(t, 2440, got.ExpectedWeekMinutes)
}

func TestSchedule_InvalidRejected(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	rec := s.do(t, http.MethodPut, "/api/employees/emp-1/schedule", json.RawMessage(`{"daily_minutes":-1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PUNCHES, OVERRIDES & ANALYSIS
// =============================================================================

func TestPunches_AddSkipsDuplicates(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	first := s.addPunches(t, "emp-1", "2025-03-03T08:00", "2025-03-03T17:00")
	assert.Equal(t, 2, first.Inserted)

	again := s.addPunches(t, "emp-1", "2025-03-03T08:00", "2025-03-03T17:00", "2025-03-04T08:00")
	assert.Equal(t, 1, again.Inserted)
	assert.Equal(t, 2, again.Skipped)

	rec := s.do(t, http.MethodGet, "/api/employees/emp-1/punches?from=2025-03-03&to=2025-03-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	punches := decodeBody[[]PunchDTO](t, rec)
	require.Len(t, punches, 2)
	assert.Equal(t, "17:00", punches[1].Time)
	assert.Equal(t, "manual", punches[1].Source)
}

func TestManualPunches_RejectsUnparsedTimestamp(t *testing.T) {
	punches, err := manualPunches("emp-1", []PunchInput{{At: "2025-03-03T08:00"}, {At: "2025-03-03 17:00"}})
	assert.Nil(t, punches)
	var ie *generic.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "at", ie.Field)
	assert.Equal(t, http.StatusBadRequest, statusFor(err))

	punches, err = manualPunches("emp-1", []PunchInput{{At: "2025-03-03T08:00"}})
	require.NoError(t, err)
	require.Len(t, punches, 1)
	assert.Equal(t, time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC), punches[0].At)
	assert.Equal(t, timesheet.SourceManual, punches[0].Source)
}

func TestAnalysis_LunchDeductedFromEntryExitDay(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")
	s.addPunches(t, "emp-1", "2025-03-03T07:00", "2025-03-03T18:00")

	res := decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, "/api/employees/emp-1/analysis?from=2025-03-03&to=2025-03-03", nil))
	assert.Equal(t, 600, res.Days[0].TotalMinutes)
	assert.Equal(t, 120, res.Days[0].OvertimeMinutes)
	assert.Equal(t, 60, res.Days[0].LunchDeducted)
}

func TestAnalysis_Week(t *testing.T) {
	// GIVEN: Overtime Monday, absent Tuesday, exact Wednesday to Friday
	// WHEN: The week is analyzed over HTTP
	// THEN: Day statuses, totals and the forfeited rest day come back
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")
	s.addPunches(t, "emp-1",
		"2025-03-03T07:00", "2025-03-03T12:00", "2025-03-03T13:00", "2025-03-03T18:00",
		"2025-03-05T08:00", "2025-03-05T12:00", "2025-03-05T13:00", "2025-03-05T17:00",
		"2025-03-06T08:00", "2025-03-06T12:00", "2025-03-06T13:00", "2025-03-06T17:00",
		"2025-03-07T08:00", "2025-03-07T12:00", "2025-03-07T13:00", "2025-03-07T17:00",
	)

	rec := s.do(t, http.MethodGet, "/api/employees/emp-1/analysis?from=2025-03-02&to=2025-03-08", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[AnalysisDTO](t, rec)

	require.Len(t, res.Days, 7)
	assert.Equal(t, "OVERTIME", res.Days[1].Status)
	assert.Equal(t, 600, res.Days[1].TotalMinutes)
	assert.Equal(t, "10h00min", res.Days[1].Total)
	assert.Equal(t, "50%", res.Days[1].Rate)
	assert.Equal(t, "07:00", res.Days[1].Times.Entry)
	assert.Equal(t, "ABSENT", res.Days[2].Status)

	assert.Equal(t, 120, res.Totals.TotalOvertimeNormalMinutes)
	assert.Equal(t, 480, res.Totals.TotalUndertimeMinutes)
	assert.Equal(t, -360, res.Totals.BalanceMinutes)
	assert.Equal(t, "negative", res.Totals.BalanceStatus)
	assert.Equal(t, "-6h00min", res.Totals.Display["balance"])
	require.Len(t, res.Totals.DsrDiscountsList, 1)
	assert.Equal(t, "2025-03-04", res.Totals.DsrDiscountsList[0].AbsenceDate)
	assert.Equal(t, "2025-03-09", res.Totals.DsrDiscountsList[0].DsrDate)
}

func TestAnalysis_DefaultPeriodIsMonthToDate(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	rec := s.do(t, http.MethodGet, "/api/employees/emp-1/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[AnalysisDTO](t, rec)

	assert.Equal(t, "2025-03-01", res.From)
	assert.Equal(t, "2025-03-10", res.To)
	assert.Len(t, res.Days, 10)
}

func TestAnalysis_Errors(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	cases := []struct {
		name string
		path string
		want int
	}{
		{"unknown employee", "/api/employees/ghost/analysis?from=2025-03-01&to=2025-03-07", http.StatusNotFound},
		{"inverted period", "/api/employees/emp-1/analysis?from=2025-03-07&to=2025-03-01", http.StatusBadRequest},
		{"only from", "/api/employees/emp-1/analysis?from=2025-03-07", http.StatusBadRequest},
		{"bad date", "/api/employees/emp-1/analysis?from=2025-03-07&to=tomorrow", http.StatusBadRequest},
		{"period too long", "/api/employees/emp-1/analysis?from=1000-01-01&to=9999-12-31", http.StatusBadRequest},
		{"one day over a leap year", "/api/employees/emp-1/analysis?from=2024-01-01&to=2025-01-01", http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, c.path, nil)
			assert.Equal(t, c.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestOverride_ReplacesPunchesUntilDeleted(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")
	s.addPunches(t, "emp-1", "2025-03-04T08:00")

	path := "/api/employees/emp-1/analysis?from=2025-03-04&to=2025-03-04"
	res := decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, path, nil))
	assert.True(t, res.Days[0].NeedsReview)

	rec := s.do(t, http.MethodPut, "/api/employees/emp-1/overrides/2025-03-04", map[string]any{
		"times": map[string]string{"entry": "08:00", "lunch_out": "12:00", "lunch_in": "13:00", "exit": "17:00"},
		"notes": "badge reader down",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res = decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, path, nil))
	assert.Equal(t, "NORMAL", res.Days[0].Status)
	assert.True(t, res.Days[0].Overridden)
	assert.Equal(t, "badge reader down", res.Days[0].Notes)

	rec = s.do(t, http.MethodDelete, "/api/employees/emp-1/overrides/2025-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, path, nil))
	assert.False(t, res.Days[0].Overridden)
	assert.True(t, res.Days[0].NeedsReview)
}

func TestOverride_InvalidInput(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	rec := s.do(t, http.MethodPut, "/api/employees/emp-1/overrides/2025-03-04", map[string]any{
		"times": map[string]string{"entry": "08:00", "exit": "07:00"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/employees/emp-1/overrides/2025-03-04", map[string]any{
		"times": map[string]string{"entry": "8am"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/employees/emp-1/overrides/not-a-date", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/employees/ghost/overrides/2025-03-04", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// TIMESHEETS
// =============================================================================

func TestTimesheets_SaveOncePerPeriod(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")
	s.addPunches(t, "emp-1", "2025-03-03T07:00", "2025-03-03T18:00")

	body := SaveTimesheetRequest{From: "2025-03-02", To: "2025-03-08", Notes: "week 10"}
	rec := s.do(t, http.MethodPost, "/api/employees/emp-1/timesheets", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decodeBody[TimesheetDTO](t, rec)
	assert.Equal(t, 600, saved.TotalMinutesWorked)
	assert.Equal(t, 1, saved.WorkedDays)

	rec = s.do(t, http.MethodPost, "/api/employees/emp-1/timesheets", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/employees/emp-1/timesheets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]TimesheetDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "week 10", list[0].Notes)
}

// =============================================================================
// TIME OFF & HOLIDAYS
// =============================================================================

func TestTimeOff_OnlyApprovedExcuses(t *testing.T) {
	// GIVEN: A pending vacation on an unpunched Tuesday
	// WHEN: The day is analyzed before and after approval
	// THEN: It is an absence first and excused after
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	rec := s.do(t, http.MethodPost, "/api/time-off", CreateTimeOffRequest{
		EmployeeID: "emp-1", Kind: "vacation", Start: "2025-03-04", End: "2025-03-04", Reason: "trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[TimeOffDTO](t, rec)
	assert.False(t, created.Approved)

	path := "/api/employees/emp-1/analysis?from=2025-03-04&to=2025-03-04"
	res := decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, path, nil))
	assert.Equal(t, "ABSENT", res.Days[0].Status)

	rec = s.do(t, http.MethodPost, "/api/time-off/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res = decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, path, nil))
	assert.Equal(t, "TIME_OFF", res.Days[0].Status)
	assert.Equal(t, "vacation", res.Days[0].TimeOffKind)

	rec = s.do(t, http.MethodGet, "/api/employees/emp-1/time-off?from=2025-03-01&to=2025-03-31", nil)
	assert.Len(t, decodeBody[[]TimeOffDTO](t, rec), 1)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/time-off/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/time-off/"+created.ID+"/approve", nil).Code)
}

func TestTimeOff_Invalid(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "emp-1", "")

	rec := s.do(t, http.MethodPost, "/api/time-off", CreateTimeOffRequest{
		EmployeeID: "emp-1", Kind: "sabbatical", Start: "2025-03-04", End: "2025-03-04",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/time-off", CreateTimeOffRequest{
		EmployeeID: "emp-1", Kind: "vacation", Start: "2025-03-05", End: "2025-03-04",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/time-off", CreateTimeOffRequest{
		EmployeeID: "ghost", Kind: "vacation", Start: "2025-03-04", End: "2025-03-04",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHolidays_CreateListDefaults(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2025-03-19", Name: "City Day"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[HolidayDTO](t, rec)

	rec = s.do(t, http.MethodPost, "/api/holidays/defaults", DefaultHolidaysRequest{Year: 2025})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/holidays?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[map[string][]HolidayDTO](t, rec)["holidays"]

	names := map[string]bool{}
	for _, h := range listed {
		names[h.Name] = true
	}
	assert.True(t, names["City Day"])
	assert.True(t, names["Carnaval"])
	assert.False(t, names["Natal"])

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/holidays/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/holidays/"+created.ID, nil).Code)
}

func TestHolidays_DefaultsWithoutBodyUseClockYear(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/holidays/defaults", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2025, decodeBody[map[string]any](t, rec)["year"])
}

// =============================================================================
// SCENARIOS, HEALTH & SCHEDULER
// =============================================================================

func TestScenarios_LoadEach(t *testing.T) {
	s := newTestServer(t)

	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: sc.ID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			loaded := decodeBody[map[string]string](t, rec)
			assert.Equal(t, "2025-03-02", loaded["from"])

			employees := decodeBody[[]EmployeeDTO](t, s.do(t, http.MethodGet, "/api/employees", nil))
			require.Len(t, employees, 1)

			path := "/api/employees/" + employees[0].ID + "/analysis?from=" + loaded["from"] + "&to=" + loaded["to"]
			rec = s.do(t, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			current := decodeBody[ScenarioDTO](t, s.do(t, http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, sc.ID, current.ID)
		})
	}

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/scenarios/reset", nil).Code)
	assert.Empty(t, decodeBody[[]EmployeeDTO](t, s.do(t, http.MethodGet, "/api/employees", nil)))
}

func TestScenarios_DsrForfeit(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "dsr-forfeit"})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeBody[AnalysisDTO](t, s.do(t, http.MethodGet, "/api/employees/emp-bruno/analysis?from=2025-03-02&to=2025-03-08", nil))
	require.Len(t, res.Totals.DsrDiscountsList, 1)
	assert.Equal(t, "2025-03-05", res.Totals.DsrDiscountsList[0].AbsenceDate)
	assert.Equal(t, "FULL_DAY", res.Totals.DsrDiscountsList[0].AbsenceType)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScheduler_ClosesPreviousMonthOnce(t *testing.T) {
	// GIVEN: Two employees, one already closed for February
	// WHEN: The scheduler runs twice
	// THEN: Only the other employee is closed, and only on the first run
	s := newTestServer(t)
	ctx := context.Background()
	s.createEmployee(t, "emp-1", "")
	s.createEmployee(t, "emp-2", "")

	feb := generic.Period{Start: generic.NewTimePoint(2025, time.February, 1), End: generic.NewTimePoint(2025, time.February, 28)}
	res, err := s.h.Service.Analyze(ctx, "emp-1", feb)
	require.NoError(t, err)
	_, err = s.h.Service.SaveTimesheet(ctx, res, "manual")
	require.NoError(t, err)

	scheduler := NewTimesheetScheduler(s.h.Service, s.h.Logger)

	first := scheduler.RunNow(ctx)
	assert.Equal(t, feb.String(), first.Period.String())
	assert.Equal(t, 1, first.Saved)
	assert.Equal(t, 1, first.Skipped)
	assert.Zero(t, first.Failed)

	second := scheduler.RunNow(ctx)
	assert.Zero(t, second.Saved)
	assert.Equal(t, 2, second.Skipped)

	list, err := s.store.ListTimesheets(ctx, "emp-2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, closeNote, list[0].Notes)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestServer(t)
	scheduler := NewTimesheetScheduler(s.h.Service, s.h.Logger)
	scheduler.CheckInterval = time.Hour

	scheduler.Start()
	scheduler.Stop()
	scheduler.Stop()

	// A restarted scheduler runs until its own Stop.
	scheduler.Start()
	scheduler.Stop()

	disabled := NewTimesheetScheduler(s.h.Service, s.h.Logger)
	disabled.Enabled = false
	disabled.Start()
	disabled.Stop()
}

package timesheet_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

type serviceFixture struct {
	svc   *timesheet.Service
	store *sqlite.Store
	logs  *bytes.Buffer
}

func newService(t *testing.T) serviceFixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	svc := timesheet.NewService(store, logger)
	svc.Clock = func() time.Time { return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC) }
	return serviceFixture{svc: svc, store: store, logs: logs}
}

func (f serviceFixture) employee(t *testing.T, id generic.EmployeeID) {
	t.Helper()
	birth := date(1990, time.March, 5)
	require.NoError(t, f.store.SaveEmployee(context.Background(), timesheet.Employee{
		ID:        id,
		Name:      string(id),
		HireDate:  date(2020, time.January, 6),
		BirthDate: &birth,
	}))
}

func (f serviceFixture) punches(t *testing.T, id generic.EmployeeID, d generic.TimePoint, clocks ...string) {
	t.Helper()
	ps := punchesOn(t, d, clocks...)
	for i := range ps {
		ps[i].EmployeeID = id
		ps[i].ID = string(id) + "-" + ps[i].ID
	}
	_, err := f.store.AddPunches(context.Background(), ps)
	require.NoError(t, err)
}

func TestService_AnalyzeLoadsEverything(t *testing.T) {
	// GIVEN: A stored employee with punches, a recurring holiday and approved
	//        time off, but no schedule
	// WHEN: The week is analyzed through the service
	// THEN: The stored data drives the result and the default schedule is
	//       reported in the logs
	ctx := context.Background()
	f := newService(t)
	f.employee(t, emp)
	f.punches(t, emp, monMar3, "07:00", "12:00", "13:00", "18:00")
	require.NoError(t, f.store.SaveHoliday(ctx, generic.Holiday{ID: "h1", Date: date(2020, time.March, 6), Name: "Company Day", Recurring: true}))
	require.NoError(t, f.store.SaveTimeOff(ctx, timeoff.TimeOff{ID: "to1", EmployeeID: emp, Kind: timeoff.KindVacation, Start: tueMar4, End: tueMar4, Approved: true}))

	res, err := f.svc.Analyze(ctx, emp, week(sunMar2))
	require.NoError(t, err)

	assert.Equal(t, timesheet.StatusOvertime, dayOf(t, res, monMar3).Status)
	assert.Equal(t, timesheet.StatusTimeOff, dayOf(t, res, tueMar4).Status)
	assert.Equal(t, timesheet.StatusBirthday, dayOf(t, res, wedMar5).Status)
	assert.Equal(t, timesheet.StatusHoliday, dayOf(t, res, thuMar6).Status)
	assert.Equal(t, timesheet.StatusAbsent, dayOf(t, res, friMar7).Status)

	assert.Contains(t, f.logs.String(), "no work schedule configured")
}

func TestService_AnalyzeUsesStoredSchedule(t *testing.T) {
	ctx := context.Background()
	f := newService(t)
	f.employee(t, emp)
	s := timesheet.DefaultSchedule(emp)
	s.Days[time.Saturday] = timesheet.WeekdaySchedule{Works: true, Minutes: intPtr(240)}
	require.NoError(t, f.store.SaveSchedule(ctx, s))

	res, err := f.svc.Analyze(ctx, emp, generic.Period{Start: satMar8, End: satMar8})
	require.NoError(t, err)

	assert.Equal(t, 240, res.Days[0].ExpectedMinutes)
	assert.NotContains(t, f.logs.String(), "no work schedule configured")
}

func TestService_AnalyzeErrors(t *testing.T) {
	ctx := context.Background()
	f := newService(t)

	_, err := f.svc.Analyze(ctx, "ghost", week(sunMar2))
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))
	assert.True(t, generic.IsNotFound(err))

	f.employee(t, emp)
	_, err = f.svc.Analyze(ctx, emp, generic.Period{Start: friMar7, End: monMar3})
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))
}

func TestService_AnalyzeAllKeepsInputOrder(t *testing.T) {
	ctx := context.Background()
	f := newService(t)
	f.svc.Workers = 2

	ids := []generic.EmployeeID{"emp-c", "emp-a", "emp-b"}
	for _, id := range ids {
		f.employee(t, id)
	}
	f.punches(t, "emp-a", monMar3, "08:00", "18:00")

	results, err := f.svc.AnalyzeAll(ctx, ids, week(sunMar2))
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, id := range ids {
		assert.Equal(t, id, results[i].EmployeeID)
	}
	assert.Equal(t, 540, results[1].Totals.TotalWorkedMinutes)
}

func TestService_AnalyzeAllFailsOnUnknownEmployee(t *testing.T) {
	f := newService(t)
	f.employee(t, emp)

	_, err := f.svc.AnalyzeAll(context.Background(), []generic.EmployeeID{emp, "ghost"}, week(sunMar2))
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))
}

func TestService_SaveTimesheetOncePerPeriod(t *testing.T) {
	// GIVEN: An analyzed week saved as a timesheet
	// WHEN: The same period is saved again
	// THEN: The second save is rejected as a duplicate
	ctx := context.Background()
	f := newService(t)
	f.employee(t, emp)
	res, err := f.svc.Analyze(ctx, emp, week(sunMar2))
	require.NoError(t, err)

	summary, err := f.svc.SaveTimesheet(ctx, res, "closed")
	require.NoError(t, err)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, 2025, summary.SavedAt.Year())

	_, err = f.svc.SaveTimesheet(ctx, res, "again")
	assert.True(t, errors.Is(err, generic.ErrDuplicateTimesheet))

	list, err := f.store.ListTimesheets(ctx, emp)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "closed", list[0].Notes)
}

func TestService_ApplyOverride(t *testing.T) {
	ctx := context.Background()
	f := newService(t)
	f.employee(t, emp)
	f.punches(t, emp, tueMar4, "08:00", "09:00")

	saved, err := f.svc.ApplyOverride(ctx, timesheet.DayOverride{
		EmployeeID: emp,
		Date:       tueMar4,
		Times:      fourTimes(t, "08:00", "12:00", "13:00", "17:00"),
		Notes:      "forgot badge",
	})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	res, err := f.svc.Analyze(ctx, emp, generic.Period{Start: tueMar4, End: tueMar4})
	require.NoError(t, err)
	assert.Equal(t, 480, res.Days[0].TotalMinutes)
	assert.True(t, res.Days[0].Overridden)

	require.NoError(t, f.svc.ClearOverride(ctx, emp, tueMar4))
	res, err = f.svc.Analyze(ctx, emp, generic.Period{Start: tueMar4, End: tueMar4})
	require.NoError(t, err)
	assert.Equal(t, 60, res.Days[0].TotalMinutes)
	assert.False(t, res.Days[0].Overridden)
}

func TestService_ApplyOverrideRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newService(t)
	f.employee(t, emp)

	_, err := f.svc.ApplyOverride(ctx, timesheet.DayOverride{
		EmployeeID: emp,
		Date:       tueMar4,
		Times:      fourTimes(t, "08:00", "13:00", "12:00", "17:00"),
	})
	var ie *generic.InputError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, "lunch_in", ie.Field)

	_, err = f.svc.ApplyOverride(ctx, timesheet.DayOverride{EmployeeID: emp})
	assert.True(t, errors.Is(err, generic.ErrInvalidInput))

	_, err = f.svc.ApplyOverride(ctx, timesheet.DayOverride{EmployeeID: "ghost", Date: tueMar4})
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))
}

func TestService_DefaultPeriodIsMonthToDate(t *testing.T) {
	f := newService(t)

	p := f.svc.DefaultPeriod()
	assert.Equal(t, "2025-03-01", p.Start.String())
	assert.Equal(t, "2025-03-10", p.End.String())
}

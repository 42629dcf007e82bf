package timesheet_test

import (
	"testing"
	"time"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const emp = generic.EmployeeID("emp-1")

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func clock(t *testing.T, s string) *generic.ClockTime {
	t.Helper()
	c, err := generic.ParseClockTime(s)
	if err != nil {
		t.Fatalf("bad clock %q: %v", s, err)
	}
	return &c
}

// punchesOn builds raw punches for one date, in the given order.
func punchesOn(t *testing.T, d generic.TimePoint, clocks ...string) []timesheet.Punch {
	t.Helper()
	out := make([]timesheet.Punch, len(clocks))
	for i, c := range clocks {
		out[i] = timesheet.Punch{
			ID:         d.String() + "-" + c,
			EmployeeID: emp,
			At:         d.At(*clock(t, c)),
			Source:     timesheet.SourceImport,
		}
	}
	return out
}

// fourTimes fills entry, lunch-out, lunch-in and exit.
func fourTimes(t *testing.T, entry, lunchOut, lunchIn, exit string) timesheet.Times {
	t.Helper()
	var tm timesheet.Times
	tm[timesheet.SlotEntry] = clock(t, entry)
	tm[timesheet.SlotLunchOut] = clock(t, lunchOut)
	tm[timesheet.SlotLunchIn] = clock(t, lunchIn)
	tm[timesheet.SlotExit] = clock(t, exit)
	return tm
}

func entryExit(t *testing.T, entry, exit string) timesheet.Times {
	t.Helper()
	var tm timesheet.Times
	tm[timesheet.SlotEntry] = clock(t, entry)
	tm[timesheet.SlotExit] = clock(t, exit)
	return tm
}

func input(d generic.TimePoint, tm timesheet.Times) timesheet.DayInput {
	return timesheet.DayInput{EmployeeID: emp, Date: d, Times: tm}
}

func ordinary() timesheet.CalendarFact {
	return timesheet.CalendarFact{Kind: timesheet.FactOrdinary}
}

// March 2025: the 2nd is a Sunday, the 3rd a Monday.
var (
	sunMar2 = date(2025, time.March, 2)
	monMar3 = date(2025, time.March, 3)
	tueMar4 = date(2025, time.March, 4)
	wedMar5 = date(2025, time.March, 5)
	thuMar6 = date(2025, time.March, 6)
	friMar7 = date(2025, time.March, 7)
	satMar8 = date(2025, time.March, 8)
	sunMar9 = date(2025, time.March, 9)
)

func week(start generic.TimePoint) generic.Period {
	return generic.Period{Start: start, End: start.AddDays(6)}
}

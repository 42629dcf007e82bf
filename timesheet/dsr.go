package timesheet

import (
	"sort"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// DSR EVALUATOR - Weekly paid rest day forfeiture
// =============================================================================

// Business policy, not a legal rule set:
//
//   - Weeks run Sunday to Saturday.
//   - A full-day absence, or an undertime of at least HalfDayAbsenceMinutes that
//     is explained by a missed morning or afternoon, forfeits the week's paid
//     rest day.
//   - At most one forfeiture per week: the first qualifying day decides.
//   - Days flagged for review never forfeit anything until corrected.
const (
	HalfDayAbsenceMinutes = 180
)

var (
	// Work starting at or after Midday means the morning was missed.
	Midday = generic.NewClockTime(12, 0)
	// Work ending at or before AfternoonCutoff means the afternoon was missed.
	AfternoonCutoff = generic.NewClockTime(13, 0)
)

// EvaluateDSR lists the rest days forfeited over the records' weeks.
func EvaluateDSR(days []DayRecord) []DsrEvent {
	if len(days) == 0 {
		return nil
	}

	sorted := append([]DayRecord(nil), days...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	byDate := make(map[generic.TimePoint]DayRecord, len(sorted))
	for _, d := range sorted {
		byDate[d.Date] = d
	}

	var events []DsrEvent
	seen := make(map[generic.TimePoint]bool)
	for _, d := range sorted {
		week := generic.WeekStart(d.Date)
		if seen[week] {
			continue
		}
		absence, hours, ok := qualifyingAbsence(d)
		if !ok {
			continue
		}
		seen[week] = true
		events = append(events, DsrEvent{
			AbsenceDate: d.Date,
			AbsenceType: absence,
			HoursLost:   generic.Hours(generic.Minutes(hours)),
			DsrDate:     restDayFor(week, byDate),
		})
	}
	return events
}

// qualifyingAbsence returns the absence type and minutes lost for a day that
// forfeits the week's rest day.
func qualifyingAbsence(d DayRecord) (AbsenceType, int, bool) {
	if d.NeedsReview {
		return "", 0, false
	}
	switch d.Status {
	case StatusAbsent:
		return AbsenceFullDay, d.ExpectedMinutes, true
	case StatusUndertime:
		if d.UndertimeMinutes < HalfDayAbsenceMinutes || d.WorkStart == nil || d.WorkEnd == nil {
			return "", 0, false
		}
		if *d.WorkStart >= Midday {
			return AbsenceHalfDayMorning, d.UndertimeMinutes, true
		}
		if *d.WorkEnd <= AfternoonCutoff {
			return AbsenceHalfDayAfternoon, d.UndertimeMinutes, true
		}
	}
	return "", 0, false
}

// restDayFor returns the paid rest day closing the week that starts on
// weekStart: the following Sunday. If the records show the employee rostered
// to work that Sunday, the first holiday of the next week stands in for it.
// A holiday Sunday is the rest day; a rostered Sunday taken as time off is
// still a workday.
func restDayFor(weekStart generic.TimePoint, byDate map[generic.TimePoint]DayRecord) generic.TimePoint {
	sunday := weekStart.AddDays(7)
	rec, ok := byDate[sunday]
	if !ok || !rec.Rostered || rec.Status == StatusHoliday {
		return sunday
	}
	for i := 1; i < 7; i++ {
		day := sunday.AddDays(i)
		if r, ok := byDate[day]; ok && r.Status == StatusHoliday {
			return day
		}
	}
	return sunday
}

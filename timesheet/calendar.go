package timesheet

import (
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timeoff"
)

// =============================================================================
// CALENDAR CLASSIFIER
// =============================================================================

type FactKind string

const (
	FactOrdinary FactKind = "ORDINARY"
	FactHoliday  FactKind = "HOLIDAY"
	FactTimeOff  FactKind = "TIME_OFF"
	FactBirthday FactKind = "BIRTHDAY"
)

// CalendarFact is what the calendar says about one date for one employee.
// Holiday is set only for FactHoliday, TimeOff only for FactTimeOff.
type CalendarFact struct {
	Kind    FactKind
	Holiday *generic.Holiday
	TimeOff *timeoff.TimeOff
}

// Calendar classifies dates for a single employee.
//
// Precedence when several facts apply to the same date:
//
//	HOLIDAY > TIME_OFF > BIRTHDAY > ORDINARY
type Calendar struct {
	EmployeeID generic.EmployeeID
	Holidays   generic.Holidays
	TimeOff    timeoff.Book
	BirthDate  *generic.TimePoint
}

// Classify returns the single highest-precedence fact for date.
func (c Calendar) Classify(date generic.TimePoint) CalendarFact {
	if h, ok := c.Holidays.On(date); ok {
		return CalendarFact{Kind: FactHoliday, Holiday: &h}
	}
	if t, ok := c.TimeOff.Covering(c.EmployeeID, date); ok {
		return CalendarFact{Kind: FactTimeOff, TimeOff: &t}
	}
	if c.IsBirthday(date) {
		return CalendarFact{Kind: FactBirthday}
	}
	return CalendarFact{Kind: FactOrdinary}
}

// IsBirthday ignores other facts; Classify applies precedence.
func (c Calendar) IsBirthday(date generic.TimePoint) bool {
	if c.BirthDate == nil || c.BirthDate.IsZero() {
		return false
	}
	return c.BirthDate.AnniversaryIn(date.Year()).Equal(date)
}

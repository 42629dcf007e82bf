package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The date range an analysis covers
// =============================================================================

// Period is an inclusive date range [Start, End].
//
// Examples:
//   - Payroll month: Mar 1 - Mar 31
//   - Partial month up to today: Mar 1 - Mar 17
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod validates and builds a period.
func NewPeriod(start, end TimePoint) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// MaxPeriodDays bounds the length of an analyzed period: a leap year.
const MaxPeriodDays = 366

// Validate rejects zero bounds, inverted ranges and periods longer than
// MaxPeriodDays.
func (p Period) Validate() error {
	if err := p.ValidateBounds(); err != nil {
		return err
	}
	if n := p.Len(); n > MaxPeriodDays {
		return &InputError{
			Field:  "to",
			Value:  p.End.String(),
			Reason: fmt.Sprintf("period spans %d days, at most %d allowed", n, MaxPeriodDays),
		}
	}
	return nil
}

// ValidateBounds rejects zero bounds and inverted ranges, whatever the length.
func (p Period) ValidateBounds() error {
	if p.Start.IsZero() {
		return &InputError{Field: "from", Reason: "date range start is required"}
	}
	if p.End.IsZero() {
		return &InputError{Field: "to", Reason: "date range end is required"}
	}
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns every date in the period, in order.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len is the number of days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEKS - Sunday to Saturday partitions
// =============================================================================

// WeekStart returns the Sunday on or before date.
func WeekStart(date TimePoint) TimePoint {
	return date.AddDays(-int(date.Weekday()))
}

// WeekOf returns the full Sunday-Saturday week containing date.
func WeekOf(date TimePoint) Period {
	start := WeekStart(date)
	return Period{Start: start, End: start.AddDays(6)}
}

// Weeks partitions the period into Sunday-Saturday calendar weeks. The first
// and last weeks are full calendar weeks even when the period starts or ends
// mid-week.
func (p Period) Weeks() []Period {
	var weeks []Period
	for start := WeekStart(p.Start); start.BeforeOrEqual(p.End); start = start.AddDays(7) {
		weeks = append(weeks, Period{Start: start, End: start.AddDays(6)})
	}
	return weeks
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts calendar days from one date to the other.
func DaysBetween(from, to TimePoint) int { return dayNumber(to) - dayNumber(from) }

// dayNumber is the count of days since 1 March of year 0 in the proleptic
// Gregorian calendar. Years start in March so the leap day comes last.
func dayNumber(tp TimePoint) int {
	y, m, d := tp.Time.Date()
	month := int(m)
	if month <= 2 {
		y--
		month += 12
	}
	return 365*y + y/4 - y/100 + y/400 + (153*(month-3)+2)/5 + d - 1
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func EndOfMonth(year int, month time.Month) TimePoint {
	return DateOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

// MonthOf returns the calendar month containing date.
func MonthOf(date TimePoint) Period {
	return Period{Start: StartOfMonth(date.Year(), date.Month()), End: EndOfMonth(date.Year(), date.Month())}
}

// MonthToDate returns the first of date's month through date itself.
func MonthToDate(date TimePoint) Period {
	return Period{Start: StartOfMonth(date.Year(), date.Month()), End: date}
}

// PreviousMonth returns the calendar month before the one containing date.
func PreviousMonth(date TimePoint) Period {
	return MonthOf(StartOfMonth(date.Year(), date.Month()).AddDays(-1))
}

package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - A calendar date (attendance is analyzed day by day)
// =============================================================================

// TimePoint is a calendar date. The time-of-day part is always midnight UTC so
// that two TimePoints for the same day compare equal regardless of how they
// were built.
type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its local calendar date.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, &InputError{Field: "date", Value: s, Reason: "expected YYYY-MM-DD"}
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return DateOf(tp.Time.AddDate(0, 0, n)) }
func (tp TimePoint) AddMonths(n int) TimePoint { return DateOf(tp.Time.AddDate(0, n, 0)) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// At combines the date with a clock time.
func (tp TimePoint) At(c ClockTime) time.Time {
	return tp.Time.Add(time.Duration(c) * time.Minute)
}

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

func (tp TimePoint) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// SameMonthDay reports whether both dates share month and day, ignoring year.
func SameMonthDay(a, b TimePoint) bool {
	return a.Month() == b.Month() && a.Day() == b.Day()
}

// AnniversaryIn returns the anniversary of tp in the given year. A 29 February
// anniversary falls on 28 February in non-leap years.
func (tp TimePoint) AnniversaryIn(year int) TimePoint {
	if tp.Month() == time.February && tp.Day() == 29 && !isLeap(year) {
		return NewTimePoint(year, time.February, 28)
	}
	return NewTimePoint(year, tp.Month(), tp.Day())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a company holiday. A recurring holiday repeats every year on the
// same month/day regardless of the year stored in Date.
type Holiday struct {
	ID        string
	Date      TimePoint
	Name      string
	Recurring bool
	Notes     string
}

// Matches reports whether the holiday falls on date.
func (h Holiday) Matches(date TimePoint) bool {
	if h.Recurring {
		return SameMonthDay(h.Date, date)
	}
	return h.Date.Equal(date)
}

// Holidays is an in-memory holiday list that answers calendar lookups.
type Holidays []Holiday

// On returns the holiday falling on date. When both a one-off and a recurring
// holiday match, the one-off entry wins since it is the more specific record.
func (hs Holidays) On(date TimePoint) (Holiday, bool) {
	var recurring *Holiday
	for i := range hs {
		if !hs[i].Matches(date) {
			continue
		}
		if !hs[i].Recurring {
			return hs[i], true
		}
		if recurring == nil {
			recurring = &hs[i]
		}
	}
	if recurring != nil {
		return *recurring, true
	}
	return Holiday{}, false
}

// IsHoliday satisfies HolidayCalendar.
func (hs Holidays) IsHoliday(date TimePoint) bool {
	_, ok := hs.On(date)
	return ok
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

var _ HolidayCalendar = Holidays(nil)

// =============================================================================
// CLOCK
// =============================================================================

// Clock supplies "now". Range defaults are the only place the engine looks at
// the current date; everything else is a function of its inputs.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now() }

// Today returns the current date according to clock.
func Today(clock Clock) TimePoint {
	if clock == nil {
		clock = SystemClock
	}
	return DateOf(clock())
}

package timesheet

import (
	"fmt"
	"time"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// WORK SCHEDULE
// =============================================================================

// WeekdaySchedule configures one weekday. Minutes overrides DailyMinutes when
// set; an explicit 0 means "enabled but nothing expected" (partial schedules).
type WeekdaySchedule struct {
	Works   bool
	Minutes *int
}

// WorkSchedule is the single active schedule of an employee.
type WorkSchedule struct {
	EmployeeID        generic.EmployeeID
	Days              [7]WeekdaySchedule // indexed by time.Weekday
	DailyMinutes      int
	WeeklyMinutes     int // informational cap, not enforced
	LunchBreakMinutes int
	UpdatedAt         time.Time
}

const (
	DefaultDailyMinutes      = 480
	DefaultWeeklyMinutes     = 2400
	DefaultLunchBreakMinutes = 60
)

// DefaultSchedule is applied when an employee has no configured schedule:
// Monday to Friday, 480 minutes a day, weekend off.
func DefaultSchedule(employeeID generic.EmployeeID) WorkSchedule {
	s := WorkSchedule{
		EmployeeID:        employeeID,
		DailyMinutes:      DefaultDailyMinutes,
		WeeklyMinutes:     DefaultWeeklyMinutes,
		LunchBreakMinutes: DefaultLunchBreakMinutes,
	}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		s.Days[wd].Works = true
	}
	return s
}

// ExpectedMinutes resolves how many minutes the schedule expects on date.
func ExpectedMinutes(s WorkSchedule, date generic.TimePoint) int {
	day := s.Days[date.Weekday()]
	if !day.Works {
		return 0
	}
	if day.Minutes != nil {
		return *day.Minutes
	}
	return s.DailyMinutes
}

// ExpectedWeekMinutes sums the expected minutes of a regular week.
func (s WorkSchedule) ExpectedWeekMinutes() int {
	total := 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		day := s.Days[wd]
		if !day.Works {
			continue
		}
		if day.Minutes != nil {
			total += *day.Minutes
		} else {
			total += s.DailyMinutes
		}
	}
	return total
}

// Validate rejects values the resolver cannot honor.
func (s WorkSchedule) Validate() error {
	if s.DailyMinutes < 0 || s.DailyMinutes > 24*60 {
		return &generic.ScheduleError{Field: "daily_minutes", Reason: "must be between 0 and 1440"}
	}
	if s.WeeklyMinutes < 0 {
		return &generic.ScheduleError{Field: "weekly_minutes", Reason: "must not be negative"}
	}
	if s.LunchBreakMinutes < 0 {
		return &generic.ScheduleError{Field: "lunch_break_minutes", Reason: "must not be negative"}
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		m := s.Days[wd].Minutes
		if m != nil && (*m < 0 || *m > 24*60) {
			return &generic.ScheduleError{
				Field:  fmt.Sprintf("%s.minutes", wd),
				Reason: "must be between 0 and 1440",
			}
		}
	}
	return nil
}

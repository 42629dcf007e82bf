package timesheet

import (
	"fmt"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timeoff"
)

// =============================================================================
// ANALYSIS - End-to-end pure computation
// =============================================================================

// AnalysisInput is everything one analysis needs, already loaded in memory.
// Schedule may be nil: DefaultSchedule is used then.
type AnalysisInput struct {
	EmployeeID generic.EmployeeID
	Period     generic.Period
	Schedule   *WorkSchedule
	Punches    []Punch
	Overrides  []DayOverride
	Holidays   generic.Holidays
	TimeOff    timeoff.Book
	BirthDate  *generic.TimePoint
}

// Analyze reconciles every day of the period and aggregates the result.
// It is deterministic and never mutates its input.
func Analyze(in AnalysisInput) (AnalysisResult, error) {
	if in.EmployeeID == "" {
		return AnalysisResult{}, &generic.InputError{Field: "employee_id", Reason: "required"}
	}
	if err := in.Period.Validate(); err != nil {
		return AnalysisResult{}, fmt.Errorf("analysis period: %w", err)
	}

	schedule := DefaultSchedule(in.EmployeeID)
	if in.Schedule != nil {
		schedule = *in.Schedule
	}

	punches := IndexPunches(in.EmployeeID, in.Punches)
	overrides := IndexOverrides(in.EmployeeID, in.Overrides)
	calendar := Calendar{
		EmployeeID: in.EmployeeID,
		Holidays:   in.Holidays,
		TimeOff:    in.TimeOff,
		BirthDate:  in.BirthDate,
	}

	days := make([]DayRecord, 0, in.Period.Len())
	for _, date := range in.Period.Days() {
		input := DayInputFor(in.EmployeeID, date, punches, overrides)
		input.LunchBreakMinutes = schedule.LunchBreakMinutes
		days = append(days, Reconcile(input, ExpectedMinutes(schedule, date), calendar.Classify(date)))
	}

	return AnalysisResult{
		EmployeeID: in.EmployeeID,
		Period:     in.Period,
		Days:       days,
		Totals:     Aggregate(days),
	}, nil
}

// DefaultPeriod is the range used when a caller does not pick one: the
// current month up to today.
func DefaultPeriod(clock generic.Clock) generic.Period {
	return generic.MonthToDate(generic.Today(clock))
}

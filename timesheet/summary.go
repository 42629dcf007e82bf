package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// SAVED TIMESHEET - Frozen summary of an analysis
// =============================================================================

// Summary is the persisted row for a signed/printed timesheet. It is copied
// from an AnalysisResult, never recomputed, so the saved figures always match
// what was shown on screen.
type Summary struct {
	ID         string
	EmployeeID generic.EmployeeID
	Period     generic.Period

	WorkedDays  int
	AbsentDays  int
	TimeOffDays int
	HolidayDays int

	TotalMinutesWorked   int
	TotalMinutesExpected int
	BalanceMinutes       int
	DsrDiscounts         int

	Notes   string
	SavedAt time.Time
}

// NewSummary copies the totals of result.
func NewSummary(id string, result AnalysisResult, notes string, savedAt time.Time) Summary {
	t := result.Totals
	return Summary{
		ID:                   id,
		EmployeeID:           result.EmployeeID,
		Period:               result.Period,
		WorkedDays:           t.DaysWorked,
		AbsentDays:           t.DaysAbsent,
		TimeOffDays:          t.TimeOffDays,
		HolidayDays:          t.HolidayDays,
		TotalMinutesWorked:   t.TotalWorkedMinutes,
		TotalMinutesExpected: t.TotalExpectedMinutes,
		BalanceMinutes:       t.BalanceMinutes,
		DsrDiscounts:         t.DsrDiscounts,
		Notes:                notes,
		SavedAt:              savedAt,
	}
}

// BalanceHours is the balance in decimal hours, as payroll reads it.
func (s Summary) BalanceHours() decimal.Decimal {
	return generic.Hours(generic.Minutes(s.BalanceMinutes))
}

package timesheet

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// PERIOD AGGREGATOR
// =============================================================================

// Aggregate folds day records into period totals. It is a pure function of
// its input: callers re-run it after any record changes.
//
// BALANCE:
//
//	BalanceMinutes = overtime (50%) + overtime (100%) - undertime
//
// DSR forfeitures are counted and listed but not converted to minutes.
func Aggregate(days []DayRecord) Totals {
	var t Totals
	for _, d := range days {
		t.TotalWorkedMinutes += d.TotalMinutes
		t.TotalExpectedMinutes += d.ExpectedMinutes
		t.TotalUndertimeMinutes += d.UndertimeMinutes

		switch d.Rate {
		case RateNormal:
			t.TotalOvertimeNormalMinutes += d.OvertimeMinutes
		case RateHoliday:
			t.TotalOvertimeHolidayMinutes += d.OvertimeMinutes
		}

		switch d.Status {
		case StatusOvertime, StatusUndertime:
			t.DaysWorked++
		case StatusNormal:
			if d.Worked() {
				t.DaysWorked++
			}
		case StatusAbsent:
			t.DaysAbsent++
		case StatusTimeOff:
			t.TimeOffDays++
		case StatusHoliday:
			t.HolidayDays++
		case StatusBirthday:
			t.BirthdayDays++
		}

		if d.NeedsReview {
			t.ReviewDays++
		}
	}

	t.DsrDiscountsList = EvaluateDSR(days)
	t.DsrDiscounts = len(t.DsrDiscountsList)

	t.BalanceMinutes = t.TotalOvertimeMinutes() - t.TotalUndertimeMinutes
	t.BalanceStatus = BalanceNegative
	if t.BalanceMinutes >= 0 {
		t.BalanceStatus = BalancePositive
	}
	return t
}

// =============================================================================
// DISPLAY - Formatted view derived from the integer totals
// =============================================================================

// TotalsDisplay is what the table footer and the printed timesheet show.
type TotalsDisplay struct {
	Worked          string
	Expected        string
	OvertimeNormal  string
	OvertimeHoliday string
	Undertime       string
	Balance         string
	BalanceHours    decimal.Decimal
}

// Display formats the totals as "8h30min" strings.
func (t Totals) Display() TotalsDisplay {
	return TotalsDisplay{
		Worked:          generic.Minutes(t.TotalWorkedMinutes).String(),
		Expected:        generic.Minutes(t.TotalExpectedMinutes).String(),
		OvertimeNormal:  generic.Minutes(t.TotalOvertimeNormalMinutes).String(),
		OvertimeHoliday: generic.Minutes(t.TotalOvertimeHolidayMinutes).String(),
		Undertime:       generic.Minutes(t.TotalUndertimeMinutes).String(),
		Balance:         generic.Minutes(t.BalanceMinutes).String(),
		BalanceHours:    generic.Hours(generic.Minutes(t.BalanceMinutes)),
	}
}

package timesheet_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/timesheet-engine/timesheet"
)

func mixedWeek() []timesheet.DayRecord {
	return []timesheet.DayRecord{
		{Date: sunMar2, Status: timesheet.StatusNormal},
		{Date: monMar3, Status: timesheet.StatusOvertime, ExpectedMinutes: 480, TotalMinutes: 600,
			OvertimeMinutes: 120, Rate: timesheet.RateNormal},
		{Date: tueMar4, Status: timesheet.StatusAbsent, ExpectedMinutes: 480, UndertimeMinutes: 480},
		{Date: wedMar5, Status: timesheet.StatusHoliday, TotalMinutes: 180, OvertimeMinutes: 180,
			Rate: timesheet.RateHoliday},
		{Date: thuMar6, Status: timesheet.StatusNormal, ExpectedMinutes: 480, TotalMinutes: 480},
		{Date: friMar7, Status: timesheet.StatusUndertime, ExpectedMinutes: 480, TotalMinutes: 420,
			UndertimeMinutes: 60, NeedsReview: true},
		{Date: satMar8, Status: timesheet.StatusNormal},
	}
}

func TestAggregate_MixedWeek(t *testing.T) {
	totals := timesheet.Aggregate(mixedWeek())

	assert.Equal(t, 3, totals.DaysWorked)
	assert.Equal(t, 1, totals.DaysAbsent)
	assert.Equal(t, 1, totals.HolidayDays)
	assert.Equal(t, 1, totals.ReviewDays)
	assert.Equal(t, 1680, totals.TotalWorkedMinutes)
	assert.Equal(t, 1920, totals.TotalExpectedMinutes)
	assert.Equal(t, 120, totals.TotalOvertimeNormalMinutes)
	assert.Equal(t, 180, totals.TotalOvertimeHolidayMinutes)
	assert.Equal(t, 540, totals.TotalUndertimeMinutes)
	assert.Equal(t, -240, totals.BalanceMinutes)
	assert.Equal(t, timesheet.BalanceNegative, totals.BalanceStatus)
	assert.Equal(t, 1, totals.DsrDiscounts)
	assert.Len(t, totals.DsrDiscountsList, 1)
}

func TestAggregate_ZeroBalanceIsPositive(t *testing.T) {
	totals := timesheet.Aggregate([]timesheet.DayRecord{
		{Date: monMar3, Status: timesheet.StatusOvertime, ExpectedMinutes: 480, TotalMinutes: 540,
			OvertimeMinutes: 60, Rate: timesheet.RateNormal},
		{Date: tueMar4, Status: timesheet.StatusUndertime, ExpectedMinutes: 480, TotalMinutes: 420,
			UndertimeMinutes: 60, WorkStart: clock(t, "08:00"), WorkEnd: clock(t, "16:00")},
	})

	assert.Zero(t, totals.BalanceMinutes)
	assert.Equal(t, timesheet.BalancePositive, totals.BalanceStatus)
}

func TestAggregate_BalanceSignRule(t *testing.T) {
	samples := [][]timesheet.DayRecord{
		nil,
		mixedWeek(),
		mixedWeek()[:2],
		mixedWeek()[2:3],
	}
	for _, days := range samples {
		totals := timesheet.Aggregate(days)
		assert.Equal(t, totals.BalanceMinutes >= 0, totals.BalanceStatus == timesheet.BalancePositive)
	}
}

func TestAggregate_Empty(t *testing.T) {
	totals := timesheet.Aggregate(nil)

	assert.Zero(t, totals.DaysWorked)
	assert.Zero(t, totals.BalanceMinutes)
	assert.Equal(t, timesheet.BalancePositive, totals.BalanceStatus)
	assert.Empty(t, totals.DsrDiscountsList)
}

func TestTotalsDisplay(t *testing.T) {
	display := timesheet.Aggregate(mixedWeek()).Display()

	assert.Equal(t, "28h00min", display.Worked)
	assert.Equal(t, "2h00min", display.OvertimeNormal)
	assert.Equal(t, "3h00min", display.OvertimeHoliday)
	assert.Equal(t, "9h00min", display.Undertime)
	assert.Equal(t, "-4h00min", display.Balance)
	assert.True(t, display.BalanceHours.Equal(decimal.NewFromInt(-4)))
}

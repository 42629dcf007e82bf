package timesheet

import (
	"fmt"
	"sort"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// PUNCH SLOTTING - Raw punches to the six day slots
// =============================================================================

// slotLayouts maps a punch count to the slots filled, in chronological order.
// Odd counts leave one pair incomplete on purpose: the reconciler reports it
// instead of guessing which break was skipped.
var slotLayouts = map[int][]Slot{
	1: {SlotEntry},
	2: {SlotEntry, SlotExit},
	3: {SlotEntry, SlotLunchOut, SlotExit},
	4: {SlotEntry, SlotLunchOut, SlotLunchIn, SlotExit},
	5: {SlotEntry, SlotSnackOut, SlotSnackIn, SlotLunchOut, SlotExit},
	6: {SlotEntry, SlotSnackOut, SlotSnackIn, SlotLunchOut, SlotLunchIn, SlotExit},
}

// SlotPunches places one day's punches into slots. Punches are sorted by time
// first. With more than six punches, the first five fill entry through
// lunch-in, the last one is the exit and the rest are reported as extra.
func SlotPunches(punches []Punch) (Times, []Anomaly) {
	var times Times
	if len(punches) == 0 {
		return times, nil
	}

	sorted := append([]Punch(nil), punches...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	clocks := make([]generic.ClockTime, len(sorted))
	for i, p := range sorted {
		clocks[i] = p.Clock()
	}

	var anomalies []Anomaly
	if len(clocks) > SlotCount {
		for _, extra := range clocks[SlotCount-1 : len(clocks)-1] {
			c := extra
			anomalies = append(anomalies, Anomaly{
				Code:    AnomalyExtraPunch,
				Slot:    SlotExit,
				Time:    &c,
				Message: fmt.Sprintf("extra punch at %s ignored", c),
			})
		}
		clocks = append(clocks[:SlotCount-1:SlotCount-1], clocks[len(clocks)-1])
	}

	for i, slot := range slotLayouts[len(clocks)] {
		c := clocks[i]
		times[slot] = &c
	}
	return times, anomalies
}

// =============================================================================
// DAY INPUTS - Punches or manual override, never both
// =============================================================================

// PunchIndex groups one employee's punches by calendar date.
type PunchIndex map[generic.TimePoint][]Punch

// IndexPunches keeps only the employee's punches.
func IndexPunches(employeeID generic.EmployeeID, punches []Punch) PunchIndex {
	idx := make(PunchIndex)
	for _, p := range punches {
		if p.EmployeeID != employeeID {
			continue
		}
		d := p.Date()
		idx[d] = append(idx[d], p)
	}
	return idx
}

// OverrideIndex is the (employee, date) -> override lookup for one employee.
type OverrideIndex map[generic.TimePoint]DayOverride

// IndexOverrides keeps only the employee's overrides. A later entry for the
// same date replaces an earlier one.
func IndexOverrides(employeeID generic.EmployeeID, overrides []DayOverride) OverrideIndex {
	idx := make(OverrideIndex)
	for _, o := range overrides {
		if o.EmployeeID != employeeID {
			continue
		}
		idx[o.Date] = o
	}
	return idx
}

// DayInputFor builds the input for one date. When an override exists the raw
// punches of that date are not consulted at all.
func DayInputFor(employeeID generic.EmployeeID, date generic.TimePoint, punches PunchIndex, overrides OverrideIndex) DayInput {
	if o, ok := overrides[date]; ok {
		return DayInput{
			EmployeeID: employeeID,
			Date:       date,
			Times:      o.Times,
			Overridden: true,
			Notes:      o.Notes,
		}
	}
	times, anomalies := SlotPunches(punches[date])
	return DayInput{
		EmployeeID: employeeID,
		Date:       date,
		Times:      times,
		Anomalies:  anomalies,
	}
}

package timesheet

import (
	"fmt"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// DAY RECONCILER
// =============================================================================

// Reconcile classifies one day. Rules are evaluated top to bottom and the
// first match decides the status:
//
//  1. HOLIDAY   - nothing expected; any work is 100% overtime
//  2. TIME_OFF  - excused; nothing expected, nothing worked
//  3. BIRTHDAY  - nothing expected; any work is 100% overtime
//  4. ORDINARY, expected == 0 - work is 100% overtime, otherwise NORMAL
//  5. ORDINARY, expected > 0  - ABSENT / NORMAL / OVERTIME / UNDERTIME
//
// Without punched lunch times, the schedule's lunch break is deducted from
// days worked longer than LunchRequiredAfterMinutes.
//
// A day whose times are out of order earns no credit: it is treated like an
// absence and flagged for review. Incomplete pairs are left out of the sum
// and flagged, the remaining pairs still count.
func Reconcile(in DayInput, expected int, fact CalendarFact) DayRecord {
	rec := DayRecord{
		Date:       in.Date,
		Weekday:    in.Date.Weekday().String(),
		EmployeeID: in.EmployeeID,
		Times:      in.Times,
		Overridden: in.Overridden,
		Notes:      in.Notes,
		Anomalies:  append([]Anomaly(nil), in.Anomalies...),
		Rostered:   expected > 0,
	}

	work := measure(in.Times, in.LunchBreakMinutes)
	rec.LunchDeductedMinutes = work.lunchDeducted
	rec.Anomalies = append(rec.Anomalies, work.anomalies...)
	rec.NeedsReview = len(rec.Anomalies) > 0
	if !work.malformed {
		rec.WorkStart, rec.WorkEnd = work.start, work.end
	}
	hasPunches := !in.Times.Empty()

	switch fact.Kind {
	case FactHoliday:
		rec.Status = StatusHoliday
		if fact.Holiday != nil {
			rec.HolidayName = fact.Holiday.Name
		}
		creditAsPremium(&rec, work)
		return rec

	case FactTimeOff:
		rec.Status = StatusTimeOff
		if fact.TimeOff != nil {
			rec.TimeOffKind = string(fact.TimeOff.Kind)
			rec.TimeOffReason = fact.TimeOff.Reason
		}
		rec.WorkStart, rec.WorkEnd = nil, nil
		rec.LunchDeductedMinutes = 0
		return rec

	case FactBirthday:
		rec.Status = StatusBirthday
		creditAsPremium(&rec, work)
		return rec
	}

	rec.ExpectedMinutes = expected

	if expected == 0 {
		if hasPunches && !work.malformed && work.minutes > 0 {
			rec.Status = StatusOvertime
			rec.TotalMinutes = work.minutes
			rec.OvertimeMinutes = work.minutes
			rec.Rate = RateHoliday
			return rec
		}
		rec.Status = StatusNormal
		return rec
	}

	if !hasPunches || work.malformed {
		rec.Status = StatusAbsent
		rec.UndertimeMinutes = expected
		return rec
	}

	rec.TotalMinutes = work.minutes
	switch {
	case work.minutes > expected:
		rec.Status = StatusOvertime
		rec.OvertimeMinutes = work.minutes - expected
		rec.Rate = RateNormal
		if in.Date.IsSunday() {
			rec.Rate = RateHoliday
		}
	case work.minutes == expected:
		rec.Status = StatusNormal
	default:
		rec.Status = StatusUndertime
		rec.UndertimeMinutes = expected - work.minutes
	}
	return rec
}

// creditAsPremium credits all work on a day with nothing expected as 100%
// overtime. Malformed times earn nothing.
func creditAsPremium(rec *DayRecord, work workSummary) {
	if work.malformed || work.minutes == 0 {
		return
	}
	rec.TotalMinutes = work.minutes
	rec.OvertimeMinutes = work.minutes
	rec.Rate = RateHoliday
}

// =============================================================================
// WORK MEASUREMENT
// =============================================================================

// LunchRequiredAfterMinutes is the worked time past which a lunch break is
// owed. Up to it, an unbroken entry/exit span counts in full.
const LunchRequiredAfterMinutes = 360

type workSummary struct {
	minutes       int
	lunchDeducted int
	start         *generic.ClockTime
	end           *generic.ClockTime
	anomalies     []Anomaly
	malformed     bool
}

// measure sums out-in over the day's work intervals. In slots (entry,
// snack-in, lunch-in) open an interval, out slots (snack-out, lunch-out,
// exit) close the open one. A skipped break simply merges two intervals, so
// entry/exit alone is one interval and entry/lunch-out/lunch-in/exit is two.
// When neither lunch slot is filled, lunch is deducted from a day longer than
// LunchRequiredAfterMinutes.
func measure(t Times, lunch int) workSummary {
	var ws workSummary

	// Every filled slot must be at or after the previous filled slot.
	var prev *generic.ClockTime
	for s := Slot(0); s < SlotCount; s++ {
		c := t[s]
		if c == nil {
			continue
		}
		if prev != nil && *c < *prev {
			ws.malformed = true
			ws.anomalies = append(ws.anomalies, Anomaly{
				Code:    AnomalyOutOfOrder,
				Slot:    s,
				Time:    c,
				Message: fmt.Sprintf("%s %s is before previous time %s", s, *c, *prev),
			})
		}
		prev = c
	}

	open := Slot(-1)
	for s := Slot(0); s < SlotCount; s++ {
		c := t[s]
		if c == nil {
			continue
		}
		if s.opensWork() {
			if open >= 0 {
				ws.anomalies = append(ws.anomalies, missingPartner(open, t[open], "no matching out time"))
			}
			open = s
			continue
		}
		if open < 0 {
			ws.anomalies = append(ws.anomalies, missingPartner(s, c, "no matching in time"))
			continue
		}
		in, out := t[open], c
		open = -1
		if ws.malformed {
			continue
		}
		ws.minutes += int(out.Sub(*in))
		if ws.start == nil {
			ws.start = in
		}
		ws.end = out
	}
	if open >= 0 {
		ws.anomalies = append(ws.anomalies, missingPartner(open, t[open], "no matching out time"))
	}

	if ws.malformed {
		ws.minutes = 0
		ws.start, ws.end = nil, nil
		return ws
	}
	if lunch > 0 && t[SlotLunchOut] == nil && t[SlotLunchIn] == nil && ws.minutes > LunchRequiredAfterMinutes {
		ws.lunchDeducted = min(lunch, ws.minutes)
		ws.minutes -= ws.lunchDeducted
	}
	return ws
}

func missingPartner(s Slot, c *generic.ClockTime, why string) Anomaly {
	return Anomaly{
		Code:    AnomalyMissingPartner,
		Slot:    s,
		Time:    c,
		Message: fmt.Sprintf("%s %s: %s", s, c, why),
	}
}

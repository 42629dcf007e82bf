/*
Package timesheet implements attendance reconciliation: it turns time-clock
punches into per-day work classifications, overtime/undertime minutes, weekly
rest-day (DSR) forfeitures and a period time-bank balance.

PURPOSE:
  The engine answers one question for an employee and a date range: "how did
  each day go, and where does the time bank stand?" Everything it needs is
  passed in as plain values; it performs no I/O. Service is the thin layer
  that loads those values from storage.

PIPELINE:
  punches + overrides ─▶ DayInput ─┐
  schedule ─▶ ExpectedMinutes ─────┼─▶ Reconcile ─▶ []DayRecord ─┬─▶ Aggregate ─▶ Totals
  holidays + time-off + birthday ─▶│                              └─▶ EvaluateDSR ─▶ []DsrEvent
                   Calendar.Classify┘

KEY TYPES IN THIS FILE (types.go):
  - Punch:         One raw clock-in/out event
  - Slot:          The six positions a day's times can occupy
  - DayInput:      The times reconciled for one date (punches or manual override)
  - DayRecord:     The reconciled day
  - Totals:        Period aggregates
  - DsrEvent:      One forfeited weekly rest day
  - AnalysisResult: Everything the UI table, the printed timesheet and the
                   saved summary consume

SEE ALSO:
  - schedule.go:  Schedule Resolver
  - calendar.go:  Calendar Classifier
  - reconcile.go: Day Reconciler
  - aggregate.go: Period Aggregator
  - dsr.go:       DSR Evaluator
  - analysis.go:  End-to-end pure analysis
*/
package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee carries the attributes the engine reads: the birth date drives the
// birthday bonus day.
type Employee struct {
	ID        generic.EmployeeID
	Name      string
	Email     string
	HireDate  generic.TimePoint
	BirthDate *generic.TimePoint
}

// =============================================================================
// PUNCH - Raw clock event
// =============================================================================

type PunchSource string

const (
	SourceImport PunchSource = "import"
	SourceManual PunchSource = "manual"
)

// Punch is one clock-in/out timestamp. Punches are never edited; a wrong day
// is corrected with a DayOverride.
type Punch struct {
	ID         string
	EmployeeID generic.EmployeeID
	At         time.Time
	Source     PunchSource
	BatchID    string // import batch, empty for manual punches
}

// Date returns the calendar day the punch belongs to.
func (p Punch) Date() generic.TimePoint { return generic.DateOf(p.At) }

// Clock returns the punch's time of day.
func (p Punch) Clock() generic.ClockTime {
	return generic.NewClockTime(p.At.Hour(), p.At.Minute())
}

// =============================================================================
// SLOTS - Positions of a day's times
// =============================================================================

type Slot int

const (
	SlotEntry Slot = iota
	SlotSnackOut
	SlotSnackIn
	SlotLunchOut
	SlotLunchIn
	SlotExit

	SlotCount = 6
)

var slotNames = [SlotCount]string{"entry", "snack_out", "snack_in", "lunch_out", "lunch_in", "exit"}

func (s Slot) String() string {
	if s < 0 || int(s) >= SlotCount {
		return "unknown"
	}
	return slotNames[s]
}

// opensWork reports whether the slot starts a work interval.
func (s Slot) opensWork() bool {
	return s == SlotEntry || s == SlotSnackIn || s == SlotLunchIn
}

// Times holds up to six clock times indexed by Slot. Nil means "not punched".
type Times [SlotCount]*generic.ClockTime

// Count returns how many slots are filled.
func (t Times) Count() int {
	n := 0
	for _, c := range t {
		if c != nil {
			n++
		}
	}
	return n
}

func (t Times) Empty() bool { return t.Count() == 0 }

// =============================================================================
// DAY INPUT
// =============================================================================

// DayInput is what gets reconciled for one date. It comes either from raw
// punches or, when present, from the manual override for that date.
type DayInput struct {
	EmployeeID generic.EmployeeID
	Date       generic.TimePoint
	Times      Times
	Overridden bool
	Notes      string
	Anomalies  []Anomaly // found while slotting raw punches

	// LunchBreakMinutes is the schedule's break, deducted when the day has
	// no lunch punches.
	LunchBreakMinutes int
}

// DayOverride is a manual correction for (employee, date). It fully replaces
// the punches of that date.
type DayOverride struct {
	EmployeeID generic.EmployeeID
	Date       generic.TimePoint
	Times      Times
	Notes      string
	UpdatedAt  time.Time
}

// =============================================================================
// DAY RECORD
// =============================================================================

type Status string

const (
	StatusNormal    Status = "NORMAL"
	StatusOvertime  Status = "OVERTIME"
	StatusUndertime Status = "UNDERTIME"
	StatusAbsent    Status = "ABSENT"
	StatusTimeOff   Status = "TIME_OFF"
	StatusHoliday   Status = "HOLIDAY"
	StatusBirthday  Status = "BIRTHDAY"
)

// RateClass is the premium overtime minutes are paid at.
type RateClass string

const (
	RateNone    RateClass = ""
	RateNormal  RateClass = "50%"  // ordinary overtime
	RateHoliday RateClass = "100%" // holiday, Sunday, rostered day off, birthday
)

type AnomalyCode string

const (
	AnomalyMissingPartner AnomalyCode = "missing_partner"
	AnomalyOutOfOrder     AnomalyCode = "out_of_order"
	AnomalyExtraPunch     AnomalyCode = "extra_punch"
)

// Anomaly is a data-quality problem on one day, surfaced for manual review.
type Anomaly struct {
	Code    AnomalyCode
	Slot    Slot
	Time    *generic.ClockTime
	Message string
}

// DayRecord is the reconciled view of one date. Derived, never the source of
// truth: it is recomputed on every analysis.
type DayRecord struct {
	Date       generic.TimePoint
	Weekday    string
	EmployeeID generic.EmployeeID
	Times      Times

	Status           Status
	TotalMinutes     int
	ExpectedMinutes  int
	OvertimeMinutes  int
	UndertimeMinutes int
	Rate             RateClass

	// Rostered is true when the schedule expects work on the weekday, even if
	// a holiday, time off or birthday excuses it.
	Rostered bool

	// First counted work start and last counted work end, when any.
	WorkStart *generic.ClockTime
	WorkEnd   *generic.ClockTime

	// Scheduled lunch taken out of TotalMinutes because no lunch was punched.
	LunchDeductedMinutes int

	TimeOffKind   string
	TimeOffReason string
	HolidayName   string

	Overridden  bool
	Notes       string
	Anomalies   []Anomaly
	NeedsReview bool
}

// Worked reports whether any work was credited on the day.
func (d DayRecord) Worked() bool { return d.TotalMinutes > 0 }

// =============================================================================
// DSR EVENTS
// =============================================================================

type AbsenceType string

const (
	AbsenceFullDay          AbsenceType = "FULL_DAY"
	AbsenceHalfDayMorning   AbsenceType = "HALF_DAY_MORNING"
	AbsenceHalfDayAfternoon AbsenceType = "HALF_DAY_AFTERNOON"
)

// DsrEvent is one forfeited paid weekly rest day.
type DsrEvent struct {
	AbsenceDate generic.TimePoint
	AbsenceType AbsenceType
	HoursLost   decimal.Decimal
	DsrDate     generic.TimePoint
}

// =============================================================================
// TOTALS & RESULT
// =============================================================================

type BalanceStatus string

const (
	BalancePositive BalanceStatus = "positive"
	BalanceNegative BalanceStatus = "negative"
)

// Totals are the period aggregates. All fields are integer minutes or counts;
// formatted strings come from Display.
type Totals struct {
	DaysWorked   int
	DaysAbsent   int
	TimeOffDays  int
	HolidayDays  int
	BirthdayDays int
	ReviewDays   int

	TotalWorkedMinutes          int
	TotalExpectedMinutes        int
	TotalOvertimeNormalMinutes  int
	TotalOvertimeHolidayMinutes int
	TotalUndertimeMinutes       int

	DsrDiscounts     int
	DsrDiscountsList []DsrEvent

	BalanceMinutes int
	BalanceStatus  BalanceStatus
}

// TotalOvertimeMinutes sums both rate classes.
func (t Totals) TotalOvertimeMinutes() int {
	return t.TotalOvertimeNormalMinutes + t.TotalOvertimeHolidayMinutes
}

// AnalysisResult is the engine's output. Consumers (UI table, printed
// timesheet, saved summary) must use it as-is rather than recompute.
type AnalysisResult struct {
	EmployeeID generic.EmployeeID
	Period     generic.Period
	Days       []DayRecord
	Totals     Totals
}

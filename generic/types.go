/*
Package generic provides the domain-agnostic time primitives the attendance
engine is built on.

PURPOSE:
  This package contains types that know nothing about punches, schedules or
  payroll rules. They describe calendar dates, clock times, minute quantities
  and holiday calendars. The timesheet package composes them into the
  reconciliation engine.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeID: Type-safe identifier for the person being analyzed
  - Minutes:    Integer minute quantity, the single source of truth for totals
  - ClockTime:  A wall-clock time of day (HH:MM) without a date
  - Hours:      Decimal hour view of a minute quantity (presentation, payroll)

DESIGN PRINCIPLES:
  1. Integers are authoritative: every total is an int number of minutes
  2. Presentation is derived: "8h30min" and 8.50 hours are computed, never stored
  3. Precision: Hour conversion uses decimal.Decimal to avoid float drift

USAGE:
  worked := generic.Minutes(510)
  worked.String()            // "8h30min"
  generic.Hours(worked)      // 8.5

SEE ALSO:
  - time.go:   TimePoint and holiday calendar
  - period.go: Date ranges and week partitioning
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

// =============================================================================
// MINUTES - Integer minute quantity
// =============================================================================

// Minutes is a signed number of minutes. Balances may be negative.
type Minutes int

// String formats the quantity as "8h30min". Negative values keep a leading
// minus sign ("-1h05min"). Zero renders as "0h00min".
func (m Minutes) String() string {
	sign := ""
	v := int(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%dh%02dmin", sign, v/60, v%60)
}

// Hours converts minutes to decimal hours rounded to two places.
func Hours(m Minutes) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(60)).Round(2)
}

// =============================================================================
// CLOCK TIME - Time of day without a date
// =============================================================================

// ClockTime is minutes since local midnight, in [0, 1440).
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, &InputError{Field: "time", Value: s, Reason: "expected HH:MM"}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, &InputError{Field: "time", Value: s, Reason: "hour out of range"}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, &InputError{Field: "time", Value: s, Reason: "minute out of range"}
	}
	return NewClockTime(h, m), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Sub returns c - other in minutes. Negative when c is earlier.
func (c ClockTime) Sub(other ClockTime) Minutes { return Minutes(int(c) - int(other)) }

// MarshalText renders "HH:MM" so ClockTime works as JSON string and map key.
func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

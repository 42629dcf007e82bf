/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Malformed caller input (missing range, bad HH:MM)
  2. Lookup errors - Referenced record does not exist
  3. Configuration errors - Invalid schedule definitions

WHAT IS NOT AN ERROR:
  Data-quality problems inside a period (a punch without its partner, an exit
  before its entry) are never returned as errors. They are recorded on the
  affected day as anomalies so an operator can correct them, and the rest of
  the period is still computed.

USAGE:
  if errors.Is(err, generic.ErrInvalidInput) {
      // 400
  }

SEE ALSO:
  - timesheet/reconcile.go: Anomaly reporting for per-day problems
  - api/handlers.go: HTTP status mapping
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is the family of caller input problems.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = fmt.Errorf("%w: end before start", ErrInvalidInput)

	// ErrInvalidSchedule is returned when a work schedule definition is inconsistent.
	ErrInvalidSchedule = errors.New("invalid work schedule")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrTimeOffNotFound is returned when a referenced time-off record doesn't exist.
	ErrTimeOffNotFound = errors.New("time-off not found")

	// ErrHolidayNotFound is returned when a referenced holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrDuplicateTimesheet is returned when a summary for the same employee
	// and period has already been saved.
	ErrDuplicateTimesheet = errors.New("timesheet already saved for period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputError describes a single malformed input value.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// ScheduleError names the weekday or field that makes a schedule invalid.
type ScheduleError struct {
	Field  string
	Reason string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule %s: %s", e.Field, e.Reason)
}

func (e *ScheduleError) Unwrap() error { return ErrInvalidSchedule }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrDuplicateTimesheet)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrTimeOffNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}

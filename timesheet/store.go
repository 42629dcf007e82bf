/*
store.go - Persistence interfaces the Service loads analysis inputs from

PURPOSE:
  The engine is pure; these interfaces are the boundary to whatever keeps
  employees, punches, overrides, schedules and saved timesheets. A single
  backend usually implements all of them (see store/sqlite).

PUNCHES ARE APPEND-ONLY:
  PunchStore has no update or delete. A wrong day is corrected with a
  DayOverride, which replaces that date's punches on the next analysis and
  can be removed again to fall back to the raw punches.

SEE ALSO:
  - service.go: Uses these interfaces
  - store/sqlite/sqlite.go: Concrete implementation
*/
package timesheet

import (
	"context"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timeoff"
)

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	// GetEmployee returns nil, nil when the employee does not exist.
	GetEmployee(ctx context.Context, id generic.EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	// DeleteEmployee removes the employee together with everything recorded
	// for them. Returns generic.ErrEmployeeNotFound if missing.
	DeleteEmployee(ctx context.Context, id generic.EmployeeID) error
}

type PunchStore interface {
	// AddPunches stores punches. A punch with the same employee and
	// timestamp as an existing one is skipped, so re-importing is harmless.
	// Returns how many were actually inserted.
	AddPunches(ctx context.Context, punches []Punch) (int, error)
	PunchesInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]Punch, error)
}

type OverrideStore interface {
	SaveOverride(ctx context.Context, o DayOverride) error
	DeleteOverride(ctx context.Context, employeeID generic.EmployeeID, date generic.TimePoint) error
	OverridesInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]DayOverride, error)
}

type ScheduleStore interface {
	SaveSchedule(ctx context.Context, s WorkSchedule) error
	// GetSchedule returns nil, nil when no schedule has been configured.
	GetSchedule(ctx context.Context, employeeID generic.EmployeeID) (*WorkSchedule, error)
}

type TimesheetStore interface {
	// SaveTimesheet returns generic.ErrDuplicateTimesheet when a summary for
	// the same employee and period exists.
	SaveTimesheet(ctx context.Context, s Summary) error
	ListTimesheets(ctx context.Context, employeeID generic.EmployeeID) ([]Summary, error)
	HasTimesheet(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) (bool, error)
}

// Repository bundles every store the Service reads from.
type Repository interface {
	EmployeeStore
	PunchStore
	OverrideStore
	ScheduleStore
	TimesheetStore
	generic.HolidayStore
	timeoff.Store
}

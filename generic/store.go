/*
store.go - Persistence interface for calendar data

PURPOSE:
  Defines the interface between the engine and wherever holidays are kept.
  The engine itself never talks to storage: the timesheet Service loads the
  holiday list through this interface and hands it to the pure analysis as an
  in-memory Holidays slice.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - time.go: Holiday and Holidays
  - timesheet/store.go: Punch, schedule and override stores
*/
package generic

import "context"

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// HolidayStore persists company holidays.
type HolidayStore interface {
	// SaveHoliday inserts or replaces a holiday by ID.
	SaveHoliday(ctx context.Context, h Holiday) error

	// DeleteHoliday removes a holiday. Returns ErrHolidayNotFound if missing.
	DeleteHoliday(ctx context.Context, id string) error

	// ListHolidays returns every holiday relevant to the period: one-off
	// holidays dated inside it and all recurring holidays.
	ListHolidays(ctx context.Context, period Period) (Holidays, error)
}

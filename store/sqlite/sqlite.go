/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements timesheet.Repository (employees, punches, day overrides, work
  schedules, saved timesheets) together with generic.HolidayStore and
  timeoff.Store on a single SQLite database.

PUNCHES ARE APPEND-ONLY:
  - No UPDATE statements on the punches table
  - Re-importing the same (employee, timestamp) is skipped, not duplicated
  - Corrections go through day_overrides, which can be deleted again

KEY TABLES:
  employees:      Employee records (birth date drives the birthday bonus)
  punches:        Raw clock events, one row per timestamp
  day_overrides:  Manual corrections, one per (employee, date), times as JSON
  work_schedules: One schedule per employee, stored as factory ScheduleJSON
  holidays:       One-off and recurring holidays
  time_off:       Excused absence ranges
  timesheets:     Frozen period summaries, one per (employee, period)

DATES:
  Calendar dates are stored as "YYYY-MM-DD" text so range filters are plain
  string comparisons. Punch timestamps keep their wall-clock time without a
  zone ("YYYY-MM-DDTHH:MM:SS").

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is limited to
  one connection, since every new connection would open a separate empty
  database.

USAGE:
  store, err := sqlite.New("./data/timesheet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := timesheet.NewService(store, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - timesheet/store.go: Interface definitions
  - factory/schedule.go: Schedule and times JSON
  - generic/store/memory.go: In-memory holiday store for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

const punchLayout = "2006-01-02T15:04:05"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex
	schedules *factory.ScheduleFactory
}

var (
	_ timesheet.Repository = (*Store)(nil)
	_ generic.HolidayStore = (*Store)(nil)
	_ timeoff.Store        = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, schedules: factory.NewScheduleFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT NOT NULL,
		birth_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Raw clock events (append-only)
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		day TEXT NOT NULL,
		at TEXT NOT NULL,
		source TEXT NOT NULL,
		batch_id TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, at)
	);

	CREATE INDEX IF NOT EXISTS idx_punches_employee_day
		ON punches(employee_id, day);

	-- Manual corrections, one per employee and date
	CREATE TABLE IF NOT EXISTS day_overrides (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		day TEXT NOT NULL,
		times_json TEXT NOT NULL,
		notes TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, day)
	);

	CREATE TABLE IF NOT EXISTS work_schedules (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id) ON DELETE CASCADE,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(date, name)
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	CREATE TABLE IF NOT EXISTS time_off (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		document_ref TEXT,
		approved INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_off_employee_range
		ON time_off(employee_id, start_date, end_date);

	-- Frozen period summaries
	CREATE TABLE IF NOT EXISTS timesheets (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		worked_days INTEGER NOT NULL,
		absent_days INTEGER NOT NULL,
		time_off_days INTEGER NOT NULL,
		holiday_days INTEGER NOT NULL,
		total_minutes_worked INTEGER NOT NULL,
		total_minutes_expected INTEGER NOT NULL,
		balance_minutes INTEGER NOT NULL,
		dsr_discounts INTEGER NOT NULL,
		notes TEXT,
		saved_at TEXT NOT NULL,
		UNIQUE(employee_id, period_start, period_end)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data. Used when loading demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"timesheets", "time_off", "holidays", "work_schedules", "day_overrides", "punches", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee saves an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp timesheet.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, hire_date, birth_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date,
			birth_date = excluded.birth_date
	`

	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID), emp.Name, emp.Email,
		emp.HireDate.String(),
		nullDate(emp.BirthDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID. Returns nil, nil when missing.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (*timesheet.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, hire_date, birth_date FROM employees WHERE id = ?",
		string(id),
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]timesheet.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, hire_date, birth_date FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []timesheet.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee and, through cascading keys, all of
// their punches, overrides, schedule, time-off and saved timesheets.
func (s *Store) DeleteEmployee(ctx context.Context, id generic.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (timesheet.Employee, error) {
	var emp timesheet.Employee
	var id, hireDate string
	var email, birthDate sql.NullString
	if err := row.Scan(&id, &emp.Name, &email, &hireDate, &birthDate); err != nil {
		return timesheet.Employee{}, err
	}
	emp.ID = generic.EmployeeID(id)
	emp.Email = email.String
	emp.HireDate, _ = generic.ParseDate(hireDate)
	if birthDate.Valid && birthDate.String != "" {
		if bd, err := generic.ParseDate(birthDate.String); err == nil {
			emp.BirthDate = &bd
		}
	}
	return emp, nil
}

// =============================================================================
// PUNCH STORE
// =============================================================================

// AddPunches inserts punches in one transaction. Duplicates of an existing
// (employee, timestamp) are skipped; the count of new rows is returned.
func (s *Store) AddPunches(ctx context.Context, punches []timesheet.Punch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO punches (id, employee_id, day, at, source, batch_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, at) DO NOTHING
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, p := range punches {
		source := p.Source
		if source == "" {
			source = timesheet.SourceImport
		}
		res, err := stmt.ExecContext(ctx,
			p.ID, string(p.EmployeeID), p.Date().String(), p.At.Format(punchLayout),
			string(source), nullString(p.BatchID), now,
		)
		if err != nil {
			if isForeignKeyError(err) {
				return 0, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, p.EmployeeID)
			}
			return 0, fmt.Errorf("insert punch %s: %w", p.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// PunchesInRange returns the employee's punches on days inside period, in
// chronological order.
func (s *Store) PunchesInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]timesheet.Punch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, at, source, batch_id
		FROM punches
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY at ASC
	`, string(employeeID), period.Start.String(), period.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []timesheet.Punch
	for rows.Next() {
		var p timesheet.Punch
		var emp, at, source string
		var batch sql.NullString
		if err := rows.Scan(&p.ID, &emp, &at, &source, &batch); err != nil {
			return nil, err
		}
		p.EmployeeID = generic.EmployeeID(emp)
		p.At, err = time.Parse(punchLayout, at)
		if err != nil {
			return nil, fmt.Errorf("punch %s: bad timestamp %q: %w", p.ID, at, err)
		}
		p.Source = timesheet.PunchSource(source)
		p.BatchID = batch.String
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// OVERRIDE STORE
// =============================================================================

// SaveOverride inserts or replaces the override for (employee, date).
func (s *Store) SaveOverride(ctx context.Context, o timesheet.DayOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timesJSON, err := factory.TimesToJSONString(o.Times)
	if err != nil {
		return err
	}
	updatedAt := o.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO day_overrides (employee_id, day, times_json, notes, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET
			times_json = excluded.times_json,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, string(o.EmployeeID), o.Date.String(), timesJSON, nullString(o.Notes),
		updatedAt.UTC().Format(time.RFC3339))
	if isForeignKeyError(err) {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, o.EmployeeID)
	}
	return err
}

// DeleteOverride removes the override, if any. Deleting a missing override
// is not an error.
func (s *Store) DeleteOverride(ctx context.Context, employeeID generic.EmployeeID, date generic.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM day_overrides WHERE employee_id = ? AND day = ?",
		string(employeeID), date.String())
	return err
}

// OverridesInRange returns the employee's overrides inside period.
func (s *Store) OverridesInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]timesheet.DayOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, day, times_json, notes, updated_at
		FROM day_overrides
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`, string(employeeID), period.Start.String(), period.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []timesheet.DayOverride
	for rows.Next() {
		var o timesheet.DayOverride
		var emp, day, timesJSON, updatedAt string
		var notes sql.NullString
		if err := rows.Scan(&emp, &day, &timesJSON, &notes, &updatedAt); err != nil {
			return nil, err
		}
		o.EmployeeID = generic.EmployeeID(emp)
		if o.Date, err = generic.ParseDate(day); err != nil {
			return nil, err
		}
		if o.Times, err = factory.ParseTimes(timesJSON); err != nil {
			return nil, fmt.Errorf("override %s/%s: %w", emp, day, err)
		}
		o.Notes = notes.String
		o.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

// SaveSchedule stores the employee's schedule as ScheduleJSON.
func (s *Store) SaveSchedule(ctx context.Context, ws timesheet.WorkSchedule) error {
	configJSON, err := s.schedules.ScheduleToJSONString(ws)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updatedAt := ws.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO work_schedules (employee_id, config_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, string(ws.EmployeeID), configJSON, updatedAt.UTC().Format(time.RFC3339))
	if isForeignKeyError(err) {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, ws.EmployeeID)
	}
	return err
}

// GetSchedule returns the employee's schedule, or nil, nil if none is stored.
func (s *Store) GetSchedule(ctx context.Context, employeeID generic.EmployeeID) (*timesheet.WorkSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, updated_at FROM work_schedules WHERE employee_id = ?",
		string(employeeID),
	).Scan(&configJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ws, err := s.schedules.ParseSchedule(configJSON)
	if err != nil {
		return nil, fmt.Errorf("stored schedule for %s: %w", employeeID, err)
	}
	ws.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &ws, nil
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring,
			notes = excluded.notes
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.Date.String(),
		h.Name,
		h.Recurring,
		nullString(h.Notes),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrHolidayNotFound, id)
	}
	return nil
}

// ListHolidays returns one-off holidays inside period plus every recurring
// holiday whose month-day occurs in it. Recurring rows keep their stored
// date; matching ignores the year.
func (s *Store) ListHolidays(ctx context.Context, period generic.Period) (generic.Holidays, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, date, name, recurring, notes
		FROM holidays
		WHERE (recurring = 0 AND date >= ? AND date <= ?)
		   OR recurring = 1
		ORDER BY date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, period.Start.String(), period.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays generic.Holidays
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		var notes sql.NullString
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring, &notes); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(dateStr); err != nil {
			return nil, err
		}
		h.Notes = notes.String
		if h.Recurring && !recursWithin(h, period) {
			continue
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

// IsHoliday checks a single date without loading the calendar.
func (s *Store) IsHoliday(ctx context.Context, date generic.TimePoint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (recurring = 0 AND date = ?)
		   OR (recurring = 1 AND strftime('%m-%d', date) = ?)
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, date.String(), date.Time.Format("01-02")).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func recursWithin(h generic.Holiday, period generic.Period) bool {
	for year := period.Start.Year(); year <= period.End.Year(); year++ {
		if period.Contains(h.Date.AnniversaryIn(year)) {
			return true
		}
	}
	return false
}

// =============================================================================
// TIME-OFF STORE
// =============================================================================

// SaveTimeOff inserts or updates a time-off record.
func (s *Store) SaveTimeOff(ctx context.Context, t timeoff.TimeOff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (id, employee_id, kind, start_date, end_date, reason, document_ref, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reason = excluded.reason,
			document_ref = excluded.document_ref,
			approved = excluded.approved
	`, t.ID, string(t.EmployeeID), string(t.Kind), t.Start.String(), t.End.String(),
		nullString(t.Reason), nullString(t.DocumentRef), t.Approved,
		time.Now().UTC().Format(time.RFC3339))
	if isForeignKeyError(err) {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, t.EmployeeID)
	}
	return err
}

// GetTimeOff returns a record by ID, or nil, nil if missing.
func (s *Store) GetTimeOff(ctx context.Context, id string) (*timeoff.TimeOff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, kind, start_date, end_date, reason, document_ref, approved
		FROM time_off WHERE id = ?
	`, id)
	t, err := scanTimeOff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTimeOff removes a record.
func (s *Store) DeleteTimeOff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_off WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrTimeOffNotFound, id)
	}
	return nil
}

// TimeOffInRange returns every record of the employee overlapping period.
func (s *Store) TimeOffInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) (timeoff.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, kind, start_date, end_date, reason, document_ref, approved
		FROM time_off
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC, id ASC
	`, string(employeeID), period.End.String(), period.Start.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var book timeoff.Book
	for rows.Next() {
		t, err := scanTimeOff(rows)
		if err != nil {
			return nil, err
		}
		book = append(book, t)
	}
	return book, rows.Err()
}

func scanTimeOff(row scanner) (timeoff.TimeOff, error) {
	var t timeoff.TimeOff
	var emp, kind, start, end string
	var reason, doc sql.NullString
	if err := row.Scan(&t.ID, &emp, &kind, &start, &end, &reason, &doc, &t.Approved); err != nil {
		return timeoff.TimeOff{}, err
	}
	t.EmployeeID = generic.EmployeeID(emp)
	t.Kind = timeoff.Kind(kind)
	t.Start, _ = generic.ParseDate(start)
	t.End, _ = generic.ParseDate(end)
	t.Reason = reason.String
	t.DocumentRef = doc.String
	return t, nil
}

// =============================================================================
// TIMESHEET STORE
// =============================================================================

// SaveTimesheet stores a frozen summary. A second summary for the same
// employee and period is rejected with generic.ErrDuplicateTimesheet.
func (s *Store) SaveTimesheet(ctx context.Context, ts timesheet.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timesheets (id, employee_id, period_start, period_end,
			worked_days, absent_days, time_off_days, holiday_days,
			total_minutes_worked, total_minutes_expected, balance_minutes, dsr_discounts,
			notes, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ts.ID, string(ts.EmployeeID), ts.Period.Start.String(), ts.Period.End.String(),
		ts.WorkedDays, ts.AbsentDays, ts.TimeOffDays, ts.HolidayDays,
		ts.TotalMinutesWorked, ts.TotalMinutesExpected, ts.BalanceMinutes, ts.DsrDiscounts,
		nullString(ts.Notes), ts.SavedAt.UTC().Format(time.RFC3339))
	switch {
	case isUniqueConstraintError(err):
		return fmt.Errorf("%w: %s %s", generic.ErrDuplicateTimesheet, ts.EmployeeID, ts.Period)
	case isForeignKeyError(err):
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, ts.EmployeeID)
	}
	return err
}

// ListTimesheets returns the employee's saved summaries, newest period first.
func (s *Store) ListTimesheets(ctx context.Context, employeeID generic.EmployeeID) ([]timesheet.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, period_start, period_end,
			worked_days, absent_days, time_off_days, holiday_days,
			total_minutes_worked, total_minutes_expected, balance_minutes, dsr_discounts,
			notes, saved_at
		FROM timesheets
		WHERE employee_id = ?
		ORDER BY period_start DESC
	`, string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timesheet.Summary
	for rows.Next() {
		var ts timesheet.Summary
		var emp, start, end, savedAt string
		var notes sql.NullString
		if err := rows.Scan(&ts.ID, &emp, &start, &end,
			&ts.WorkedDays, &ts.AbsentDays, &ts.TimeOffDays, &ts.HolidayDays,
			&ts.TotalMinutesWorked, &ts.TotalMinutesExpected, &ts.BalanceMinutes, &ts.DsrDiscounts,
			&notes, &savedAt); err != nil {
			return nil, err
		}
		ts.EmployeeID = generic.EmployeeID(emp)
		ts.Period.Start, _ = generic.ParseDate(start)
		ts.Period.End, _ = generic.ParseDate(end)
		ts.Notes = notes.String
		ts.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
		out = append(out, ts)
	}
	return out, rows.Err()
}

// HasTimesheet reports whether a summary exists for exactly this period.
func (s *Store) HasTimesheet(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM timesheets
		WHERE employee_id = ? AND period_start = ? AND period_end = ?
	`, string(employeeID), period.Start.String(), period.End.String()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d *generic.TimePoint) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

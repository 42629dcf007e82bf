/*
scheduler.go - Automated monthly timesheet close

PURPOSE:
  Periodically closes the previous month: every employee without a saved
  timesheet for that month is analyzed and the result is frozen as a
  summary.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The closed period is always the calendar month before today
  - Employees already closed for that month are skipped, so every tick
    after the first one in a month is cheap
  - Analyses run in parallel through Service.AnalyzeAll; one failing
    employee is logged and retried on the next tick without blocking the
    others

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewTimesheetScheduler(svc, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - timesheet/service.go: AnalyzeAll, SaveTimesheet
  - handlers.go: SaveTimesheet endpoint (manual close)
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timesheet"
)

// closeNote marks summaries written by the scheduler.
const closeNote = "closed automatically"

// TimesheetScheduler handles the automated monthly close.
type TimesheetScheduler struct {
	Service       *timesheet.Service
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// CloseReport summarizes one close run.
type CloseReport struct {
	Period  generic.Period
	Saved   int
	Skipped int
	Failed  int
}

// NewTimesheetScheduler creates a new scheduler.
func NewTimesheetScheduler(svc *timesheet.Service, logger *slog.Logger) *TimesheetScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimesheetScheduler{
		Service:       svc,
		Logger:        logger.With(slog.String("component", "scheduler")),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (ts *TimesheetScheduler) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.Enabled {
		ts.Logger.Info("disabled, not starting")
		return
	}
	if ts.ticker != nil {
		return
	}

	ts.ticker = time.NewTicker(ts.CheckInterval)
	ts.stop = make(chan struct{})
	ts.wg.Add(1)

	go ts.run(ts.ticker.C, ts.stop)

	ts.Logger.Info("started", slog.Duration("check_interval", ts.CheckInterval))
}

// Stop stops the scheduler and waits for a running close to finish.
func (ts *TimesheetScheduler) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.ticker != nil {
		ts.ticker.Stop()
		close(ts.stop)
		ts.wg.Wait()
		ts.ticker = nil
		ts.Logger.Info("stopped")
	}
}

// run owns tick and stop for its whole life; a later Start hands a new
// goroutine its own pair.
func (ts *TimesheetScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer ts.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run immediately on start
	ts.RunNow(ctx)

	for {
		select {
		case <-tick:
			ts.RunNow(ctx)
		case <-stop:
			return
		}
	}
}

// RunNow closes the previous month immediately.
func (ts *TimesheetScheduler) RunNow(ctx context.Context) CloseReport {
	period := generic.PreviousMonth(generic.Today(ts.Service.Clock))
	report := CloseReport{Period: period}
	repo := ts.Service.Repo

	employees, err := repo.ListEmployees(ctx)
	if err != nil {
		ts.Logger.ErrorContext(ctx, "listing employees", slog.Any("error", err))
		return report
	}

	var pending []generic.EmployeeID
	for _, emp := range employees {
		done, err := repo.HasTimesheet(ctx, emp.ID, period)
		if err != nil {
			ts.Logger.ErrorContext(ctx, "checking timesheet", slog.String("employee_id", string(emp.ID)), slog.Any("error", err))
			report.Failed++
			continue
		}
		if done {
			report.Skipped++
			continue
		}
		pending = append(pending, emp.ID)
	}
	if len(pending) == 0 {
		return report
	}

	// Analyze in parallel first; fall back to one at a time so a single bad
	// employee does not hold back the rest.
	results, err := ts.Service.AnalyzeAll(ctx, pending, period)
	if err != nil {
		ts.Logger.WarnContext(ctx, "batch analysis failed, closing one by one", slog.Any("error", err))
		results = results[:0]
		for _, id := range pending {
			res, err := ts.Service.Analyze(ctx, id, period)
			if err != nil {
				ts.Logger.ErrorContext(ctx, "analyzing employee", slog.String("employee_id", string(id)), slog.Any("error", err))
				report.Failed++
				continue
			}
			results = append(results, res)
		}
	}

	for _, res := range results {
		if _, err := ts.Service.SaveTimesheet(ctx, res, closeNote); err != nil {
			if errors.Is(err, generic.ErrDuplicateTimesheet) {
				report.Skipped++
				continue
			}
			ts.Logger.ErrorContext(ctx, "saving timesheet", slog.String("employee_id", string(res.EmployeeID)), slog.Any("error", err))
			report.Failed++
			continue
		}
		report.Saved++
	}

	ts.Logger.InfoContext(ctx, "month closed",
		slog.String("period", period.String()),
		slog.Int("saved", report.Saved),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))
	return report
}

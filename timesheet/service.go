/*
service.go - Loads analysis inputs from storage and runs the engine

PURPOSE:
  Analyze is pure and takes plain values. Service is the layer the HTTP API
  and the monthly close scheduler call: it fetches the employee, schedule,
  punches, overrides, holidays and time-off for a period, then hands them to
  Analyze.

CONFIGURATION GAPS:
  An employee with no stored schedule is analyzed against DefaultSchedule
  and a warning is logged. The analysis still succeeds.

CONCURRENCY:
  AnalyzeAll fans out one analysis per employee through an errgroup bounded
  by Workers. Results come back in input order.

SEE ALSO:
  - analysis.go: The pure computation
  - store.go: Repository interfaces
  - api/scheduler.go: Monthly close
*/
package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/warp/timesheet-engine/generic"
)

const DefaultWorkers = 4

type Service struct {
	Repo    Repository
	Logger  *slog.Logger
	Clock   generic.Clock
	Workers int
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Repo:    repo,
		Logger:  logger,
		Clock:   generic.SystemClock,
		Workers: DefaultWorkers,
	}
}

// Analyze loads everything about the employee for the period and runs the
// engine over it.
func (s *Service) Analyze(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) (AnalysisResult, error) {
	if err := period.Validate(); err != nil {
		return AnalysisResult{}, err
	}

	emp, err := s.Repo.GetEmployee(ctx, employeeID)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load employee %s: %w", employeeID, err)
	}
	if emp == nil {
		return AnalysisResult{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, employeeID)
	}

	schedule, err := s.Repo.GetSchedule(ctx, employeeID)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load schedule: %w", err)
	}
	if schedule == nil {
		s.Logger.WarnContext(ctx, "no work schedule configured, using default",
			slog.String("employee_id", string(employeeID)),
			slog.Int("daily_minutes", DefaultDailyMinutes))
	}

	punches, err := s.Repo.PunchesInRange(ctx, employeeID, period)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load punches: %w", err)
	}
	overrides, err := s.Repo.OverridesInRange(ctx, employeeID, period)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load overrides: %w", err)
	}
	holidays, err := s.Repo.ListHolidays(ctx, period)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load holidays: %w", err)
	}
	book, err := s.Repo.TimeOffInRange(ctx, employeeID, period)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load time off: %w", err)
	}

	result, err := Analyze(AnalysisInput{
		EmployeeID: employeeID,
		Period:     period,
		Schedule:   schedule,
		Punches:    punches,
		Overrides:  overrides,
		Holidays:   holidays,
		TimeOff:    book,
		BirthDate:  emp.BirthDate,
	})
	if err != nil {
		return AnalysisResult{}, err
	}

	s.Logger.DebugContext(ctx, "analysis complete",
		slog.String("employee_id", string(employeeID)),
		slog.String("period", period.String()),
		slog.Int("balance_minutes", result.Totals.BalanceMinutes),
		slog.Int("review_days", result.Totals.ReviewDays))
	return result, nil
}

// AnalyzeAll analyzes several employees over the same period. The first
// error cancels the remaining work.
func (s *Service) AnalyzeAll(ctx context.Context, employeeIDs []generic.EmployeeID, period generic.Period) ([]AnalysisResult, error) {
	results := make([]AnalysisResult, len(employeeIDs))

	g, ctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)

	for i, id := range employeeIDs {
		i, id := i, id // per-iteration copies; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			res, err := s.Analyze(ctx, id, period)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveTimesheet freezes result as a summary row.
func (s *Service) SaveTimesheet(ctx context.Context, result AnalysisResult, notes string) (Summary, error) {
	summary := NewSummary(uuid.NewString(), result, notes, s.now())
	if err := s.Repo.SaveTimesheet(ctx, summary); err != nil {
		return Summary{}, err
	}
	s.Logger.InfoContext(ctx, "timesheet saved",
		slog.String("employee_id", string(summary.EmployeeID)),
		slog.String("period", summary.Period.String()),
		slog.String("id", summary.ID))
	return summary, nil
}

// ApplyOverride stores a manual correction for one date. The date must be a
// real calendar day and the times must be in the day's order.
func (s *Service) ApplyOverride(ctx context.Context, o DayOverride) (DayOverride, error) {
	if o.EmployeeID == "" {
		return DayOverride{}, &generic.InputError{Field: "employee_id", Reason: "required"}
	}
	if o.Date.IsZero() {
		return DayOverride{}, &generic.InputError{Field: "date", Reason: "required"}
	}
	if err := validateOverrideTimes(o.Times); err != nil {
		return DayOverride{}, err
	}

	emp, err := s.Repo.GetEmployee(ctx, o.EmployeeID)
	if err != nil {
		return DayOverride{}, err
	}
	if emp == nil {
		return DayOverride{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, o.EmployeeID)
	}

	o.UpdatedAt = s.now()
	if err := s.Repo.SaveOverride(ctx, o); err != nil {
		return DayOverride{}, err
	}
	return o, nil
}

// ClearOverride removes the correction so the date falls back to its punches.
func (s *Service) ClearOverride(ctx context.Context, employeeID generic.EmployeeID, date generic.TimePoint) error {
	return s.Repo.DeleteOverride(ctx, employeeID, date)
}

// DefaultPeriod returns the current month to date on the service clock.
func (s *Service) DefaultPeriod() generic.Period {
	return DefaultPeriod(s.Clock)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func validateOverrideTimes(t Times) error {
	var prev *generic.ClockTime
	var prevSlot Slot
	for i, c := range t {
		if c == nil {
			continue
		}
		if prev != nil && *c < *prev {
			return &generic.InputError{
				Field:  Slot(i).String(),
				Value:  c.String(),
				Reason: fmt.Sprintf("earlier than %s (%s)", prevSlot, prev),
			}
		}
		prev, prevSlot = c, Slot(i)
	}
	return nil
}

package timeoff

import (
	"context"
	"sort"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// BOOK - In-memory lookup over a set of time-off records
// =============================================================================

// Book answers "is this employee excused on this date?" for a loaded set of
// records. Unapproved records are kept (the UI lists them) but never match.
type Book []TimeOff

// Covering returns the approved record covering date for the employee. When
// several overlap, the one starting earliest wins so the answer does not
// depend on load order.
func (b Book) Covering(employeeID generic.EmployeeID, date generic.TimePoint) (TimeOff, bool) {
	var best *TimeOff
	for i := range b {
		if !b[i].Covers(employeeID, date) {
			continue
		}
		if best == nil || b[i].Start.Before(best.Start) ||
			(b[i].Start.Equal(best.Start) && b[i].ID < best.ID) {
			best = &b[i]
		}
	}
	if best == nil {
		return TimeOff{}, false
	}
	return *best, true
}

// Approved returns only approved records, ordered by start date.
func (b Book) Approved() Book {
	var out Book
	for _, t := range b {
		if t.Approved {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// =============================================================================
// STORE
// =============================================================================

// Store persists time-off records.
type Store interface {
	SaveTimeOff(ctx context.Context, t TimeOff) error
	GetTimeOff(ctx context.Context, id string) (*TimeOff, error)
	DeleteTimeOff(ctx context.Context, id string) error

	// TimeOffInRange returns every record for the employee that overlaps the
	// period, approved or not.
	TimeOffInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) (Book, error)
}

// Approve marks a stored record approved. Approving twice is a no-op.
func Approve(ctx context.Context, store Store, id string) (*TimeOff, error) {
	t, err := store.GetTimeOff(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, generic.ErrTimeOffNotFound
	}
	if t.Approved {
		return t, nil
	}
	t.Approved = true
	if err := store.SaveTimeOff(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

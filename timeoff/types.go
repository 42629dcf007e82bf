// Package timeoff models approved, excused absence ranges (medical leave,
// vacation, ...). The attendance engine treats a day covered by an approved
// record as excused: nothing is expected and nothing is deducted.
package timeoff

import (
	"fmt"
	"strings"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// TIME-OFF KIND
// =============================================================================

type Kind string

const (
	KindMedicalLeave   Kind = "medical_leave"
	KindVacation       Kind = "vacation"
	KindPersonalLeave  Kind = "personal_leave"
	KindMaternityLeave Kind = "maternity_leave"
	KindOther          Kind = "other"
)

var kinds = []Kind{KindMedicalLeave, KindVacation, KindPersonalLeave, KindMaternityLeave, KindOther}

// Kinds lists every supported kind, in display order.
func Kinds() []Kind { return append([]Kind(nil), kinds...) }

// ParseKind accepts the canonical value case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", &generic.InputError{Field: "type", Value: s, Reason: "unknown time-off type"}
}

// =============================================================================
// TIME-OFF RECORD
// =============================================================================

// TimeOff is an excused absence over the inclusive range [Start, End].
// Only approved records excuse days.
type TimeOff struct {
	ID          string
	EmployeeID  generic.EmployeeID
	Kind        Kind
	Start       generic.TimePoint
	End         generic.TimePoint
	Reason      string
	DocumentRef string // optional supporting document (medical certificate, ...)
	Approved    bool
}

// Period returns the covered range.
func (t TimeOff) Period() generic.Period {
	return generic.Period{Start: t.Start, End: t.End}
}

// Covers reports whether the record excuses the employee on date.
func (t TimeOff) Covers(employeeID generic.EmployeeID, date generic.TimePoint) bool {
	return t.Approved && t.EmployeeID == employeeID && t.Period().Contains(date)
}

// Validate checks the record is well formed before it is stored.
func (t TimeOff) Validate() error {
	if t.EmployeeID == "" {
		return &generic.InputError{Field: "employee_id", Reason: "required"}
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return err
	}
	if err := t.Period().ValidateBounds(); err != nil {
		return fmt.Errorf("time-off range: %w", err)
	}
	return nil
}

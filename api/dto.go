/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract: dates travel as
  "YYYY-MM-DD", clock times as "HH:MM", quantities as integer minutes with
  a formatted "8h30min" companion.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags; handlers call
  h.validate.Struct before touching the engine. Cross-field rules (time
  order within a day, period order) stay in the domain packages.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON and TimesJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	HireDate  string `json:"hire_date"`
	BirthDate string `json:"birth_date,omitempty"`
}

// CreateEmployeeRequest creates or updates an employee.
type CreateEmployeeRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"omitempty,email"`
	HireDate  string `json:"hire_date" validate:"required,datetime=2006-01-02"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

// ScheduleDTO is the effective schedule of an employee.
type ScheduleDTO struct {
	factory.ScheduleJSON
	IsDefault           bool `json:"is_default"`
	ExpectedWeekMinutes int  `json:"expected_week_minutes"`
}

// =============================================================================
// PUNCHES & OVERRIDES
// =============================================================================

// PunchInput is one clock event, local wall-clock time.
type PunchInput struct {
	At string `json:"at" validate:"required,datetime=2006-01-02T15:04"`
}

// AddPunchesRequest adds manual punches.
type AddPunchesRequest struct {
	Punches []PunchInput `json:"punches" validate:"required,min=1,max=500,dive"`
}

// AddPunchesResponse reports how many punches were new.
type AddPunchesResponse struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type PunchDTO struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Source  string `json:"source"`
	BatchID string `json:"batch_id,omitempty"`
}

// OverrideRequest replaces a day's punches with manually entered times.
type OverrideRequest struct {
	Times factory.TimesJSON `json:"times"`
	Notes string            `json:"notes" validate:"max=500"`
}

type OverrideDTO struct {
	EmployeeID string            `json:"employee_id"`
	Date       string            `json:"date"`
	Times      factory.TimesJSON `json:"times"`
	Notes      string            `json:"notes,omitempty"`
	UpdatedAt  string            `json:"updated_at"`
}

// =============================================================================
// ANALYSIS
// =============================================================================

type AnomalyDTO struct {
	Code    string `json:"code"`
	Slot    string `json:"slot"`
	Time    string `json:"time,omitempty"`
	Message string `json:"message"`
}

// DayRecordDTO is one row of the timesheet table.
type DayRecordDTO struct {
	Date             string            `json:"date"`
	Weekday          string            `json:"weekday"`
	Times            factory.TimesJSON `json:"times"`
	Status           string            `json:"status"`
	TotalMinutes     int               `json:"total_minutes"`
	ExpectedMinutes  int               `json:"expected_minutes"`
	OvertimeMinutes  int               `json:"overtime_minutes"`
	UndertimeMinutes int               `json:"undertime_minutes"`
	LunchDeducted    int               `json:"lunch_deducted_minutes,omitempty"`
	Rate             string            `json:"rate,omitempty"`
	Total            string            `json:"total"`
	TimeOffKind      string            `json:"time_off_kind,omitempty"`
	TimeOffReason    string            `json:"time_off_reason,omitempty"`
	HolidayName      string            `json:"holiday_name,omitempty"`
	Overridden       bool              `json:"overridden"`
	Notes            string            `json:"notes,omitempty"`
	NeedsReview      bool              `json:"needs_review"`
	Anomalies        []AnomalyDTO      `json:"anomalies,omitempty"`
}

type DsrEventDTO struct {
	AbsenceDate string          `json:"absence_date"`
	AbsenceType string          `json:"absence_type"`
	HoursLost   decimal.Decimal `json:"hours_lost"`
	DsrDate     string          `json:"dsr_date"`
}

// TotalsDTO carries integer minutes plus their display strings.
type TotalsDTO struct {
	DaysWorked   int `json:"days_worked"`
	DaysAbsent   int `json:"days_absent"`
	TimeOffDays  int `json:"time_off_days"`
	HolidayDays  int `json:"holiday_days"`
	BirthdayDays int `json:"birthday_days"`
	ReviewDays   int `json:"review_days"`

	TotalWorkedMinutes          int `json:"total_worked_minutes"`
	TotalExpectedMinutes        int `json:"total_expected_minutes"`
	TotalOvertimeNormalMinutes  int `json:"total_overtime_normal_minutes"`
	TotalOvertimeHolidayMinutes int `json:"total_overtime_holiday_minutes"`
	TotalUndertimeMinutes       int `json:"total_undertime_minutes"`

	DsrDiscounts     int           `json:"dsr_discounts"`
	DsrDiscountsList []DsrEventDTO `json:"dsr_discounts_list"`

	BalanceMinutes int             `json:"balance_minutes"`
	BalanceStatus  string          `json:"balance_status"`
	BalanceHours   decimal.Decimal `json:"balance_hours"`

	Display map[string]string `json:"display"`
}

// AnalysisDTO is the response of GET /api/employees/{id}/analysis.
type AnalysisDTO struct {
	EmployeeID string         `json:"employee_id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Days       []DayRecordDTO `json:"days"`
	Totals     TotalsDTO      `json:"totals"`
}

// =============================================================================
// TIMESHEETS
// =============================================================================

// SaveTimesheetRequest freezes the analysis of a period. From and To default
// to the current month to date.
type SaveTimesheetRequest struct {
	From  string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Notes string `json:"notes" validate:"max=1000"`
}

type TimesheetDTO struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	From                 string          `json:"from"`
	To                   string          `json:"to"`
	WorkedDays           int             `json:"worked_days"`
	AbsentDays           int             `json:"absent_days"`
	TimeOffDays          int             `json:"time_off_days"`
	HolidayDays          int             `json:"holiday_days"`
	TotalMinutesWorked   int             `json:"total_minutes_worked"`
	TotalMinutesExpected int             `json:"total_minutes_expected"`
	BalanceMinutes       int             `json:"balance_minutes"`
	BalanceHours         decimal.Decimal `json:"balance_hours"`
	DsrDiscounts         int             `json:"dsr_discounts"`
	Notes                string          `json:"notes,omitempty"`
	SavedAt              string          `json:"saved_at"`
}

// =============================================================================
// TIME OFF & HOLIDAYS
// =============================================================================

// CreateTimeOffRequest records a pending excused absence.
type CreateTimeOffRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	Kind        string `json:"type" validate:"required"`
	Start       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	End         string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" validate:"max=500"`
	DocumentRef string `json:"document_ref" validate:"max=500"`
}

type TimeOffDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Kind        string `json:"type"`
	Start       string `json:"start_date"`
	End         string `json:"end_date"`
	Reason      string `json:"reason,omitempty"`
	DocumentRef string `json:"document_ref,omitempty"`
	Approved    bool   `json:"approved"`
}

type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
	Notes     string `json:"notes,omitempty"`
}

type CreateHolidayRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"required,max=200"`
	Recurring bool   `json:"recurring"`
	Notes     string `json:"notes" validate:"max=500"`
}

// DefaultHolidaysRequest selects the year for movable holidays. Zero means
// the current year.
type DefaultHolidaysRequest struct {
	Year int `json:"year" validate:"omitempty,gte=1900,lte=2200"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e timesheet.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       string(e.ID),
		Name:     e.Name,
		Email:    e.Email,
		HireDate: e.HireDate.String(),
	}
	if e.BirthDate != nil {
		dto.BirthDate = e.BirthDate.String()
	}
	return dto
}

func toPunchDTO(p timesheet.Punch) PunchDTO {
	return PunchDTO{
		ID:      p.ID,
		Date:    p.Date().String(),
		Time:    p.Clock().String(),
		Source:  string(p.Source),
		BatchID: p.BatchID,
	}
}

func toOverrideDTO(o timesheet.DayOverride) OverrideDTO {
	return OverrideDTO{
		EmployeeID: string(o.EmployeeID),
		Date:       o.Date.String(),
		Times:      factory.TimesToJSON(o.Times),
		Notes:      o.Notes,
		UpdatedAt:  o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toAnalysisDTO(res timesheet.AnalysisResult) AnalysisDTO {
	days := make([]DayRecordDTO, len(res.Days))
	for i, d := range res.Days {
		days[i] = toDayRecordDTO(d)
	}
	return AnalysisDTO{
		EmployeeID: string(res.EmployeeID),
		From:       res.Period.Start.String(),
		To:         res.Period.End.String(),
		Days:       days,
		Totals:     toTotalsDTO(res.Totals),
	}
}

func toDayRecordDTO(d timesheet.DayRecord) DayRecordDTO {
	dto := DayRecordDTO{
		Date:             d.Date.String(),
		Weekday:          d.Weekday,
		Times:            factory.TimesToJSON(d.Times),
		Status:           string(d.Status),
		TotalMinutes:     d.TotalMinutes,
		ExpectedMinutes:  d.ExpectedMinutes,
		OvertimeMinutes:  d.OvertimeMinutes,
		UndertimeMinutes: d.UndertimeMinutes,
		LunchDeducted:    d.LunchDeductedMinutes,
		Rate:             string(d.Rate),
		Total:            generic.Minutes(d.TotalMinutes).String(),
		TimeOffKind:      d.TimeOffKind,
		TimeOffReason:    d.TimeOffReason,
		HolidayName:      d.HolidayName,
		Overridden:       d.Overridden,
		Notes:            d.Notes,
		NeedsReview:      d.NeedsReview,
	}
	for _, a := range d.Anomalies {
		ad := AnomalyDTO{Code: string(a.Code), Slot: a.Slot.String(), Message: a.Message}
		if a.Time != nil {
			ad.Time = a.Time.String()
		}
		dto.Anomalies = append(dto.Anomalies, ad)
	}
	return dto
}

func toTotalsDTO(t timesheet.Totals) TotalsDTO {
	disp := t.Display()
	events := make([]DsrEventDTO, len(t.DsrDiscountsList))
	for i, ev := range t.DsrDiscountsList {
		events[i] = DsrEventDTO{
			AbsenceDate: ev.AbsenceDate.String(),
			AbsenceType: string(ev.AbsenceType),
			HoursLost:   ev.HoursLost,
			DsrDate:     ev.DsrDate.String(),
		}
	}
	return TotalsDTO{
		DaysWorked:                  t.DaysWorked,
		DaysAbsent:                  t.DaysAbsent,
		TimeOffDays:                 t.TimeOffDays,
		HolidayDays:                 t.HolidayDays,
		BirthdayDays:                t.BirthdayDays,
		ReviewDays:                  t.ReviewDays,
		TotalWorkedMinutes:          t.TotalWorkedMinutes,
		TotalExpectedMinutes:        t.TotalExpectedMinutes,
		TotalOvertimeNormalMinutes:  t.TotalOvertimeNormalMinutes,
		TotalOvertimeHolidayMinutes: t.TotalOvertimeHolidayMinutes,
		TotalUndertimeMinutes:       t.TotalUndertimeMinutes,
		DsrDiscounts:                t.DsrDiscounts,
		DsrDiscountsList:            events,
		BalanceMinutes:              t.BalanceMinutes,
		BalanceStatus:               string(t.BalanceStatus),
		BalanceHours:                disp.BalanceHours,
		Display: map[string]string{
			"worked":           disp.Worked,
			"expected":         disp.Expected,
			"overtime_normal":  disp.OvertimeNormal,
			"overtime_holiday": disp.OvertimeHoliday,
			"undertime":        disp.Undertime,
			"balance":          disp.Balance,
		},
	}
}

func toTimesheetDTO(s timesheet.Summary) TimesheetDTO {
	return TimesheetDTO{
		ID:                   s.ID,
		EmployeeID:           string(s.EmployeeID),
		From:                 s.Period.Start.String(),
		To:                   s.Period.End.String(),
		WorkedDays:           s.WorkedDays,
		AbsentDays:           s.AbsentDays,
		TimeOffDays:          s.TimeOffDays,
		HolidayDays:          s.HolidayDays,
		TotalMinutesWorked:   s.TotalMinutesWorked,
		TotalMinutesExpected: s.TotalMinutesExpected,
		BalanceMinutes:       s.BalanceMinutes,
		BalanceHours:         s.BalanceHours(),
		DsrDiscounts:         s.DsrDiscounts,
		Notes:                s.Notes,
		SavedAt:              s.SavedAt.UTC().Format(time.RFC3339),
	}
}

func toTimeOffDTO(t timeoff.TimeOff) TimeOffDTO {
	return TimeOffDTO{
		ID:          t.ID,
		EmployeeID:  string(t.EmployeeID),
		Kind:        string(t.Kind),
		Start:       t.Start.String(),
		End:         t.End.String(),
		Reason:      t.Reason,
		DocumentRef: t.DocumentRef,
		Approved:    t.Approved,
	}
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		Date:      h.Date.String(),
		Name:      h.Name,
		Recurring: h.Recurring,
		Notes:     h.Notes,
	}
}

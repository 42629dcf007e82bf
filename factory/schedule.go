/*
Package factory converts the JSON documents stored and exchanged by the
service into engine types.

PURPOSE:
  Work schedules are edited in an admin form and stored as a JSON blob, and
  day overrides keep their six clock times as JSON too. The factory is the
  single place that parses, validates and renders those documents, so the
  HTTP layer and the SQLite store agree on one format.

SCHEDULE JSON:
  {
    "employee_id": "emp-1",
    "daily_minutes": 480,
    "weekly_minutes": 2400,
    "lunch_break_minutes": 60,
    "days": {
      "monday":   {"works": true},
      "friday":   {"works": true, "minutes": 240},
      "saturday": {"works": true, "minutes": 0}
    }
  }

  A weekday missing from "days" is not worked. "minutes" overrides
  daily_minutes for that weekday; an explicit 0 keeps the day enabled with
  nothing expected.

TIMES JSON:
  {"entry": "08:00", "lunch_out": "12:00", "lunch_in": "13:00", "exit": "17:00"}

USAGE:
  f := factory.NewScheduleFactory()
  schedule, err := f.ParseSchedule(jsonStr)
  jsonStr, err = f.ScheduleToJSONString(schedule)

SEE ALSO:
  - timesheet/schedule.go: WorkSchedule and ExpectedMinutes
  - store/sqlite/sqlite.go: Stores ScheduleJSON and TimesJSON blobs
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a work schedule.
type ScheduleJSON struct {
	EmployeeID        string                 `json:"employee_id" validate:"required"`
	DailyMinutes      int                    `json:"daily_minutes" validate:"gte=0,lte=1440"`
	WeeklyMinutes     int                    `json:"weekly_minutes" validate:"gte=0"`
	LunchBreakMinutes int                    `json:"lunch_break_minutes" validate:"gte=0,lte=1440"`
	Days              map[string]WeekdayJSON `json:"days" validate:"dive,keys,oneof=sunday monday tuesday wednesday thursday friday saturday,endkeys"`
}

// WeekdayJSON configures one weekday.
type WeekdayJSON struct {
	Works   bool `json:"works"`
	Minutes *int `json:"minutes,omitempty" validate:"omitempty,gte=0,lte=1440"`
}

// TimesJSON holds a day's six clock times as "HH:MM" strings. Empty means
// not punched.
type TimesJSON struct {
	Entry    string `json:"entry,omitempty"`
	SnackOut string `json:"snack_out,omitempty"`
	SnackIn  string `json:"snack_in,omitempty"`
	LunchOut string `json:"lunch_out,omitempty"`
	LunchIn  string `json:"lunch_in,omitempty"`
	Exit     string `json:"exit,omitempty"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts schedule JSON to Go structs.
type ScheduleFactory struct {
	validate *validator.Validate
}

// NewScheduleFactory creates a factory whose validation errors name fields
// by their JSON keys.
func NewScheduleFactory() *ScheduleFactory {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ScheduleFactory{validate: v}
}

// ParseSchedule parses a JSON string into a WorkSchedule.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (timesheet.WorkSchedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return timesheet.WorkSchedule{}, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON validates sj and converts it to a WorkSchedule.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (timesheet.WorkSchedule, error) {
	if err := f.validate.Struct(sj); err != nil {
		return timesheet.WorkSchedule{}, scheduleValidationError(err)
	}

	s := timesheet.WorkSchedule{
		EmployeeID:        generic.EmployeeID(sj.EmployeeID),
		DailyMinutes:      sj.DailyMinutes,
		WeeklyMinutes:     sj.WeeklyMinutes,
		LunchBreakMinutes: sj.LunchBreakMinutes,
	}
	for name, day := range sj.Days {
		wd, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return timesheet.WorkSchedule{}, &generic.ScheduleError{Field: "days." + name, Reason: "unknown weekday"}
		}
		s.Days[wd] = timesheet.WeekdaySchedule{Works: day.Works}
		if day.Minutes != nil {
			m := *day.Minutes
			s.Days[wd].Minutes = &m
		}
	}

	if err := s.Validate(); err != nil {
		return timesheet.WorkSchedule{}, err
	}
	return s, nil
}

// ToJSON converts a WorkSchedule to ScheduleJSON. Weekdays that are neither
// worked nor carry minutes are left out.
func (f *ScheduleFactory) ToJSON(s timesheet.WorkSchedule) ScheduleJSON {
	sj := ScheduleJSON{
		EmployeeID:        string(s.EmployeeID),
		DailyMinutes:      s.DailyMinutes,
		WeeklyMinutes:     s.WeeklyMinutes,
		LunchBreakMinutes: s.LunchBreakMinutes,
		Days:              make(map[string]WeekdayJSON),
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		day := s.Days[wd]
		if !day.Works && day.Minutes == nil {
			continue
		}
		wj := WeekdayJSON{Works: day.Works}
		if day.Minutes != nil {
			m := *day.Minutes
			wj.Minutes = &m
		}
		sj.Days[strings.ToLower(wd.String())] = wj
	}
	return sj
}

// ScheduleToJSONString renders s the way it is stored.
func (f *ScheduleFactory) ScheduleToJSONString(s timesheet.WorkSchedule) (string, error) {
	b, err := json.Marshal(f.ToJSON(s))
	if err != nil {
		return "", fmt.Errorf("failed to encode schedule: %w", err)
	}
	return string(b), nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func scheduleValidationError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		field := strings.TrimPrefix(fe.Namespace(), "ScheduleJSON.")
		return &generic.ScheduleError{Field: field, Reason: fmt.Sprintf("failed %q rule", fe.Tag())}
	}
	return &generic.ScheduleError{Field: "schedule", Reason: err.Error()}
}

// =============================================================================
// DAY TIMES
// =============================================================================

// TimesFromJSON parses the six clock strings. Blank entries stay nil.
func TimesFromJSON(tj TimesJSON) (timesheet.Times, error) {
	var t timesheet.Times
	for slot, raw := range tj.fields() {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c, err := generic.ParseClockTime(raw)
		if err != nil {
			return timesheet.Times{}, &generic.InputError{Field: timesheet.Slot(slot).String(), Value: raw, Reason: "expected HH:MM"}
		}
		t[slot] = &c
	}
	return t, nil
}

// TimesToJSON renders filled slots as "HH:MM".
func TimesToJSON(t timesheet.Times) TimesJSON {
	var out [timesheet.SlotCount]string
	for i, c := range t {
		if c != nil {
			out[i] = c.String()
		}
	}
	return TimesJSON{
		Entry:    out[timesheet.SlotEntry],
		SnackOut: out[timesheet.SlotSnackOut],
		SnackIn:  out[timesheet.SlotSnackIn],
		LunchOut: out[timesheet.SlotLunchOut],
		LunchIn:  out[timesheet.SlotLunchIn],
		Exit:     out[timesheet.SlotExit],
	}
}

// ParseTimes decodes a stored TimesJSON blob.
func ParseTimes(jsonStr string) (timesheet.Times, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return timesheet.Times{}, nil
	}
	var tj TimesJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return timesheet.Times{}, fmt.Errorf("failed to parse times JSON: %w", err)
	}
	return TimesFromJSON(tj)
}

// TimesToJSONString encodes t for storage.
func TimesToJSONString(t timesheet.Times) (string, error) {
	b, err := json.Marshal(TimesToJSON(t))
	if err != nil {
		return "", fmt.Errorf("failed to encode times: %w", err)
	}
	return string(b), nil
}

func (tj TimesJSON) fields() [timesheet.SlotCount]string {
	return [timesheet.SlotCount]string{tj.Entry, tj.SnackOut, tj.SnackIn, tj.LunchOut, tj.LunchIn, tj.Exit}
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardScheduleJSON is Monday to Friday at dailyMinutes.
func StandardScheduleJSON(employeeID string, dailyMinutes int) string {
	return fmt.Sprintf(`{
  "employee_id": %q,
  "daily_minutes": %d,
  "weekly_minutes": %d,
  "lunch_break_minutes": 60,
  "days": {
    "monday": {"works": true},
    "tuesday": {"works": true},
    "wednesday": {"works": true},
    "thursday": {"works": true},
    "friday": {"works": true}
  }
}`, employeeID, dailyMinutes, dailyMinutes*5)
}

// SaturdayHalfDayScheduleJSON adds a 240 minute Saturday to a 440 minute
// weekday roster, a common 44-hour arrangement.
func SaturdayHalfDayScheduleJSON(employeeID string) string {
	return fmt.Sprintf(`{
  "employee_id": %q,
  "daily_minutes": 440,
  "weekly_minutes": 2440,
  "lunch_break_minutes": 60,
  "days": {
    "monday": {"works": true},
    "tuesday": {"works": true},
    "wednesday": {"works": true},
    "thursday": {"works": true},
    "friday": {"works": true},
    "saturday": {"works": true, "minutes": 240}
  }
}`, employeeID)
}

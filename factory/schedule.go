/*
Package factory converts raw schedule records into inventory.ScheduledUse.

PURPOSE:
  Schedules arrive as JSON (HTTP API, CLI) or TOML (CLI files). The factory
  turns each record into a ScheduledUse without judging it: validity is the
  forecast engine's call, so a malformed record becomes an invalid schedule
  rather than an error that would abort the whole batch.

JSON SCHEMA:
  [
    {
      "id": "rinse-daily",
      "amount": 10,
      "unit": "ml",
      "periodicity": "daily",
      "start_date": "2026-09-23"
    },
    {
      "amount": 10,
      "periodicity": "weekly",
      "start_date": "2026-10-09",
      "end_date": "2026-12-31",
      "weekday": "monday"
    }
  ]

TOML SCHEMA:
  [[schedule]]
  id = "rinse-daily"
  amount = 10
  periodicity = "daily"
  start_date = "2026-09-23"

  Dates are quoted strings in both formats.

LENIENCY:
  - periodicity is case-insensitive
  - weekday accepts "monday", "Mon", "1" or 1; "day_of_the_week" is an alias
  - an element that is not an object, or has an unparsable date or weekday,
    becomes an invalid ScheduledUse (and is reported by Issues)

SEE ALSO:
  - inventory/schedule.go: ScheduledUse and its invariants
  - api/handlers.go: Decodes request bodies through this package
  - cmd/forecast: Reads schedule files through this package
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// ScheduleJSON is the wire form of one schedule, shared by JSON and TOML.
type ScheduleJSON struct {
	ID           string   `json:"id,omitempty" toml:"id,omitempty"`
	Amount       *float64 `json:"amount,omitempty" toml:"amount,omitempty"`
	Unit         string   `json:"unit,omitempty" toml:"unit,omitempty"`
	Periodicity  string   `json:"periodicity,omitempty" toml:"periodicity,omitempty"`
	StartDate    string   `json:"start_date,omitempty" toml:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty" toml:"end_date,omitempty"`
	Weekday      Weekday  `json:"weekday,omitempty" toml:"weekday,omitempty"`
	DayOfTheWeek Weekday  `json:"day_of_the_week,omitempty" toml:"day_of_the_week,omitempty"`
}

// Weekday holds a day of the week as written in a record: a name ("monday",
// "Mon") or a number from 0 (Sunday) to 6 (Saturday), quoted or not.
type Weekday string

func (w *Weekday) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*w = Weekday(strconv.Itoa(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("weekday must be a name or a number: %s", data)
	}
	*w = Weekday(s)
	return nil
}

func (w *Weekday) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*w = Weekday(v)
	case int64:
		*w = Weekday(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("weekday must be a name or a number, got %T", v)
	}
	return nil
}

// scheduleFile is the TOML document layout.
type scheduleFile struct {
	Schedules []ScheduleJSON `toml:"schedule"`
}

// Issue describes a record that could not be read faithfully.
type Issue struct {
	Index int
	Err   error
}

func (i Issue) Error() string { return fmt.Sprintf("schedule %d: %v", i.Index, i.Err) }

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// FromJSON converts one record. The returned error explains why the
// schedule could not be read faithfully; the schedule is still returned and
// is then guaranteed to fail validation.
func FromJSON(sj ScheduleJSON, unit generic.Unit) (inventory.ScheduledUse, error) {
	s := inventory.ScheduledUse{
		ID:          sj.ID,
		Periodicity: inventory.ParsePeriodicity(sj.Periodicity),
	}

	if sj.Unit != "" {
		unit = generic.Unit(sj.Unit)
	}
	if sj.Amount != nil {
		s.Amount = generic.NewAmountFromDecimal(decimal.NewFromFloat(*sj.Amount), unit)
	} else {
		s.Amount = generic.Amount{Unit: unit}
	}

	if sj.StartDate != "" {
		start, err := generic.ParseDate(sj.StartDate)
		if err != nil {
			return unreadable(sj.ID), fmt.Errorf("start_date: %w", err)
		}
		s.Start = start
	}

	if sj.EndDate != "" {
		end, err := generic.ParseDate(sj.EndDate)
		if err != nil {
			return unreadable(sj.ID), fmt.Errorf("end_date: %w", err)
		}
		s.End = &end
	}

	weekday := string(sj.Weekday)
	if weekday == "" {
		weekday = string(sj.DayOfTheWeek)
	}
	if weekday != "" {
		wd, ok := inventory.ParseWeekday(weekday)
		if !ok {
			if s.Periodicity == inventory.Weekly {
				return unreadable(sj.ID), fmt.Errorf("weekday %q is not a day of the week", weekday)
			}
			// Daily schedules ignore the weekday.
		} else {
			s.Weekday = &wd
		}
	}

	return s, nil
}

// ToJSON converts a ScheduledUse back to its wire form.
func ToJSON(s inventory.ScheduledUse) ScheduleJSON {
	sj := ScheduleJSON{
		ID:          s.ID,
		Unit:        string(s.Amount.Unit),
		Periodicity: string(s.Periodicity),
	}
	if !s.Amount.IsZero() {
		v := s.Amount.Float64()
		sj.Amount = &v
	}
	if !s.Start.IsZero() {
		sj.StartDate = s.Start.String()
	}
	if s.End != nil {
		sj.EndDate = s.End.String()
	}
	if s.Weekday != nil {
		sj.Weekday = Weekday(strings.ToLower(s.Weekday.String()))
	}
	return sj
}

// FromRecords converts a batch, collecting issues instead of failing.
func FromRecords(records []ScheduleJSON, unit generic.Unit) ([]inventory.ScheduledUse, []Issue) {
	schedules := make([]inventory.ScheduledUse, 0, len(records))
	var issues []Issue
	for i, r := range records {
		s, err := FromJSON(r, unit)
		if err != nil {
			issues = append(issues, Issue{Index: i, Err: err})
		}
		schedules = append(schedules, s)
	}
	return schedules, issues
}

// ParseJSON decodes a JSON array of schedule records. Only a document that
// is not a JSON array is an error; bad elements become invalid schedules.
func ParseJSON(data []byte, unit generic.Unit) ([]inventory.ScheduledUse, []Issue, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse schedules JSON: %w", err)
	}
	return DecodeRaw(raw, unit)
}

// DecodeRaw converts already-split JSON elements.
func DecodeRaw(raw []json.RawMessage, unit generic.Unit) ([]inventory.ScheduledUse, []Issue, error) {
	schedules := make([]inventory.ScheduledUse, 0, len(raw))
	var issues []Issue
	for i, msg := range raw {
		var sj ScheduleJSON
		if err := json.Unmarshal(msg, &sj); err != nil {
			issues = append(issues, Issue{Index: i, Err: err})
			schedules = append(schedules, inventory.ScheduledUse{})
			continue
		}
		s, err := FromJSON(sj, unit)
		if err != nil {
			issues = append(issues, Issue{Index: i, Err: err})
		}
		schedules = append(schedules, s)
	}
	return schedules, issues, nil
}

// ParseTOML decodes a document of [[schedule]] tables.
func ParseTOML(data []byte, unit generic.Unit) ([]inventory.ScheduledUse, []Issue, error) {
	var doc scheduleFile
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse schedules TOML: %w", err)
	}
	schedules, issues := FromRecords(doc.Schedules, unit)
	return schedules, issues, nil
}

// LoadFile reads a .json or .toml schedule file.
func LoadFile(path string, unit generic.Unit) ([]inventory.ScheduledUse, []Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading schedules: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data, unit)
	case ".toml":
		return ParseTOML(data, unit)
	default:
		return nil, nil, fmt.Errorf("unsupported schedule file %q: want .json or .toml", path)
	}
}

// unreadable yields a schedule that always fails validation.
func unreadable(id string) inventory.ScheduledUse {
	return inventory.ScheduledUse{ID: id}
}

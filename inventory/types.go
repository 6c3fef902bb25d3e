// Package inventory implements depletion forecasting for consumable stock.
// It uses the generic primitives with recurring consumption schedules.
package inventory

import (
	"strconv"
	"strings"
	"time"

	"github.com/warp/inventory-forecast/generic"
)

// =============================================================================
// PERIODICITY
// =============================================================================

// Periodicity is how often a scheduled use recurs.
type Periodicity string

const (
	Daily  Periodicity = "daily"
	Weekly Periodicity = "weekly"
)

// ParsePeriodicity normalizes case and whitespace. Unknown values are kept
// as-is so that validation, not parsing, rejects them.
func ParsePeriodicity(s string) Periodicity {
	return Periodicity(strings.ToLower(strings.TrimSpace(s)))
}

func (p Periodicity) IsKnown() bool {
	return p == Daily || p == Weekly
}

// =============================================================================
// WEEKDAYS
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday accepts a day name (full or abbreviated, any case) or a
// number from 0 (Sunday) to 6 (Saturday).
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || !IsKnownWeekday(time.Weekday(n)) {
		return 0, false
	}
	return time.Weekday(n), true
}

func IsKnownWeekday(wd time.Weekday) bool {
	return wd >= time.Sunday && wd <= time.Saturday
}

// WeekdayPtr is a convenience for building weekly schedules in code.
func WeekdayPtr(wd time.Weekday) *time.Weekday { return &wd }

// =============================================================================
// CATALOG ITEMS
// =============================================================================

type ItemID string

// Item is a catalogued consumable. On-hand quantity is not stored here:
// callers supply it with every forecast.
type Item struct {
	ID        ItemID
	Name      string
	Unit      generic.Unit
	CreatedAt time.Time
}

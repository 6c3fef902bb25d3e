/*
errors.go - Centralized error types for the forecaster

PURPOSE:
  All error types in one place for consistency and discoverability.
  Packages wrap these errors with additional context using %w.

ERROR CATEGORIES:
  1. Schedule errors - A rule is malformed or was used without validation
  2. Forecast errors - The simulation could not reach an answer
  3. Catalog errors - Items missing, items or schedules duplicated in storage

WHAT IS NOT AN ERROR:
  An invalid schedule handed to the engine is excluded, not reported as an
  error. An input with no valid schedules yields a nil date and a nil error.

USAGE:
  date, err := engine.Forecast(ctx, schedules, onHand)
  if errors.Is(err, generic.ErrHorizonExceeded) {
      // supply outlasts the configured day cap
  }

SEE ALSO:
  - inventory/schedule.go: Returns InvalidScheduleError
  - inventory/forecast.go: Returns HorizonExceededError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSchedule is returned when a schedule breaks one of its
	// structural invariants, or when demand is computed on such a schedule.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrNoValidSchedules marks a forecast input in which every schedule was
	// excluded. The engine reports this as a nil date; callers that need to
	// tell it apart use Result.Outcome.
	ErrNoValidSchedules = errors.New("no valid schedules")

	// ErrHorizonExceeded is returned when the simulation walks the maximum
	// number of days without finding a depletion boundary.
	ErrHorizonExceeded = errors.New("forecast horizon exceeded")

	// ErrItemNotFound is returned when a referenced catalog item doesn't exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateItem is returned when an item ID is already catalogued.
	ErrDuplicateItem = errors.New("duplicate item")

	// ErrDuplicateSchedule is returned when a schedule ID is already stored.
	ErrDuplicateSchedule = errors.New("duplicate schedule")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidScheduleError names the first invariant a schedule fails.
type InvalidScheduleError struct {
	ScheduleID string
	Code       string // e.g., "missing_weekday", "end_before_start"
	Message    string
}

func (e *InvalidScheduleError) Error() string {
	if e.ScheduleID == "" {
		return fmt.Sprintf("invalid schedule: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("invalid schedule %s: %s: %s", e.ScheduleID, e.Code, e.Message)
}

func (e *InvalidScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}

// HorizonExceededError reports where the simulation gave up.
type HorizonExceededError struct {
	From    TimePoint // first day examined
	Days    int       // days examined before giving up
	Balance Amount    // balance left on the last examined day
}

func (e *HorizonExceededError) Error() string {
	return fmt.Sprintf("forecast horizon exceeded: %d days from %s, %v still on hand",
		e.Days, e.From, e.Balance.Value)
}

func (e *HorizonExceededError) Unwrap() error {
	return ErrHorizonExceeded
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrDuplicateItem) ||
		errors.Is(err, ErrDuplicateSchedule) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

/*
forecast.go - Depletion forecasting

PURPOSE:
  Answers "through which day can scheduled consumption be met from what is
  on hand?" by walking the calendar one day at a time from today, summing
  every valid schedule's demand and drawing the balance down.

BOUNDARY LAW:
  A day whose demand brings the balance to exactly zero is satisfied and
  becomes the answer. A day whose demand would make the balance negative
  is not satisfied; the walk stops and the previous satisfied day stands.
  Days with zero demand never change the balance or the answer.

STOPPING:
  1. Shortfall:      demand exceeds the balance
  2. Schedule end:   every valid schedule has an end date and the walk has
                     passed the latest one (the horizon)
  3. Day cap:        MaxDays days examined without 1 or 2; reported as
                     ErrHorizonExceeded, never as a date

OUTCOMES:
  Forecast keeps the plain nullable-date contract: a nil date covers both
  "no valid schedules" and "not even today is satisfiable". Run returns the
  tagged Result for callers that need to tell those apart.

EXAMPLE:
  engine := inventory.NewForecastEngine()
  date, err := engine.Forecast(ctx, schedules, generic.NewAmount(23, generic.UnitMilliliters))
  switch {
  case err != nil:
      // day cap exceeded or context canceled
  case date == nil:
      // nothing can be satisfied
  default:
      fmt.Println("reorder before", date)
  }

SEE ALSO:
  - schedule.go: ScheduledUse validity and per-day demand
  - generic/errors.go: HorizonExceededError
*/
package inventory

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/warp/inventory-forecast/generic"
)

// DefaultMaxDays bounds a walk over open-ended schedules (about 100 years).
const DefaultMaxDays = 36500

// =============================================================================
// RESULT - Tagged forecast outcome
// =============================================================================

type Outcome string

const (
	// OutcomeShortfall: a day's demand exceeded the balance.
	OutcomeShortfall Outcome = "shortfall"

	// OutcomeScheduleEnded: every schedule expired before the stock ran out.
	OutcomeScheduleEnded Outcome = "schedule_ended"

	// OutcomeNoValidSchedules: nothing was left to simulate after filtering.
	OutcomeNoValidSchedules Outcome = "no_valid_schedules"

	// OutcomeHorizonExceeded: the day cap was hit.
	OutcomeHorizonExceeded Outcome = "horizon_exceeded"
)

// Exclusion records a schedule filtered out before simulation.
type Exclusion struct {
	Index      int
	ScheduleID string
	Reason     error
}

// Result is the full answer behind Forecast.
type Result struct {
	Outcome Outcome

	// Last day whose demand was fully met. Nil if none was.
	Date *generic.TimePoint

	// Balance after the last satisfied day, and the total withdrawn.
	Remaining generic.Amount
	Consumed  generic.Amount

	// Days examined, today through the day the walk stopped on.
	// Zero when no valid schedules were found.
	Window generic.Period

	// Latest end date when every valid schedule has one.
	Horizon *generic.TimePoint

	ValidSchedules int
	Excluded       []Exclusion
}

// =============================================================================
// FORECAST ENGINE
// =============================================================================

// ForecastEngine holds configuration only; one engine serves concurrent calls.
type ForecastEngine struct {
	// Now returns the first day to examine. Defaults to generic.Today.
	Now func() generic.TimePoint

	// MaxDays caps the walk. Zero or negative means DefaultMaxDays.
	MaxDays int

	Log *logrus.Entry
}

func NewForecastEngine() *ForecastEngine {
	return &ForecastEngine{
		Now:     generic.Today,
		MaxDays: DefaultMaxDays,
		Log:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Forecast returns the depletion boundary, or nil when no day can be
// satisfied or no schedule is valid. Exceeding the day cap is an error.
func (e *ForecastEngine) Forecast(ctx context.Context, schedules []ScheduledUse, onHand generic.Amount) (*generic.TimePoint, error) {
	result, err := e.Run(ctx, schedules, onHand)
	if err != nil {
		return nil, err
	}
	return result.Date, nil
}

// Run simulates consumption day by day and reports how the walk ended.
//
// When the day cap is hit, Run returns the partial Result together with a
// *generic.HorizonExceededError.
func (e *ForecastEngine) Run(ctx context.Context, schedules []ScheduledUse, onHand generic.Amount) (*Result, error) {
	log := e.logger()

	// 1. Keep only valid schedules
	valid, excluded := partition(schedules)
	for _, x := range excluded {
		log.WithFields(logrus.Fields{
			"index":       x.Index,
			"schedule_id": x.ScheduleID,
		}).WithError(x.Reason).Debug("excluding schedule from forecast")
	}

	result := &Result{
		Remaining:      onHand,
		Consumed:       onHand.Zero(),
		ValidSchedules: len(valid),
		Excluded:       excluded,
	}

	if len(valid) == 0 {
		result.Outcome = OutcomeNoValidSchedules
		log.Debug("no valid schedules; nothing to forecast")
		return result, nil
	}

	// 2. Horizon exists only if no valid schedule is open-ended
	result.Horizon = horizon(valid)

	// 3. Walk from today
	today := e.now()
	maxDays := e.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}

	balance := onHand
	day := today
	for examined := 0; ; examined++ {
		if result.Horizon != nil && day.After(*result.Horizon) {
			result.Outcome = OutcomeScheduleEnded
			day = day.AddDays(-1)
			break
		}

		if examined == maxDays {
			result.Outcome = OutcomeHorizonExceeded
			result.Remaining = balance
			result.Window = generic.Period{Start: today, End: day.AddDays(-1)}
			return result, &generic.HorizonExceededError{From: today, Days: examined, Balance: balance}
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("forecast canceled at %s: %w", day, err)
		}

		required, err := demand(valid, day, onHand.Zero())
		if err != nil {
			return nil, err
		}

		if required.IsZero() {
			day = day.AddDays(1)
			continue
		}

		if required.GreaterThan(balance) {
			result.Outcome = OutcomeShortfall
			break
		}

		balance = balance.Sub(required)
		result.Consumed = result.Consumed.Add(required)
		result.Date = day.Ptr()
		day = day.AddDays(1)
	}

	result.Remaining = balance
	if day.AfterOrEqual(today) {
		result.Window = generic.Period{Start: today, End: day}
	}

	entry := log.WithFields(logrus.Fields{
		"outcome":   result.Outcome,
		"remaining": result.Remaining.Value.String(),
		"valid":     result.ValidSchedules,
		"excluded":  len(result.Excluded),
	})
	if result.Date != nil {
		entry = entry.WithField("date", result.Date.String())
	}
	entry.Debug("forecast complete")

	return result, nil
}

func (e *ForecastEngine) now() generic.TimePoint {
	if e.Now == nil {
		return generic.Today()
	}
	return e.Now()
}

func (e *ForecastEngine) logger() *logrus.Entry {
	if e.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.Log
}

// =============================================================================
// HELPERS
// =============================================================================

func partition(schedules []ScheduledUse) (valid []ScheduledUse, excluded []Exclusion) {
	for i, s := range schedules {
		if err := s.Validate(); err != nil {
			excluded = append(excluded, Exclusion{Index: i, ScheduleID: s.ID, Reason: err})
			continue
		}
		valid = append(valid, s)
	}
	return valid, excluded
}

// horizon returns the latest end date, or nil if any schedule is open-ended.
func horizon(valid []ScheduledUse) *generic.TimePoint {
	var latest *generic.TimePoint
	for _, s := range valid {
		if s.End == nil {
			return nil
		}
		if latest == nil || s.End.After(*latest) {
			latest = s.End
		}
	}
	return latest.Ptr()
}

func demand(valid []ScheduledUse, day generic.TimePoint, zero generic.Amount) (generic.Amount, error) {
	total := zero
	for _, s := range valid {
		needed, err := s.AmountNeeded(day)
		if err != nil {
			return zero, err
		}
		total = total.Add(needed)
	}
	return total, nil
}

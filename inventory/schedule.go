package inventory

import (
	"fmt"
	"time"

	"github.com/warp/inventory-forecast/generic"
)

// =============================================================================
// SCHEDULED USE - One recurring withdrawal rule
// =============================================================================

// ScheduledUse withdraws Amount every day, or every week on Weekday, from
// Start through End (inclusive). A nil End means the rule never expires.
//
// Construction never fails: a malformed rule is representable and is
// excluded from forecasting by IsValid.
type ScheduledUse struct {
	ID          string
	Amount      generic.Amount
	Periodicity Periodicity
	Start       generic.TimePoint
	End         *generic.TimePoint
	Weekday     *time.Weekday
}

// IsValid reports whether the rule satisfies every structural invariant.
func (s ScheduledUse) IsValid() bool {
	return s.Validate() == nil
}

// Validate checks the invariants in order and returns the first failure.
func (s ScheduledUse) Validate() error {
	switch {
	case s.Amount.IsZero():
		return s.invalid("missing_amount", "amount is missing or zero")
	case !s.Amount.IsPositive():
		return s.invalid("non_positive_amount", fmt.Sprintf("amount %v is not positive", s.Amount.Value))
	case s.Periodicity == "":
		return s.invalid("missing_periodicity", "periodicity is required")
	case !s.Periodicity.IsKnown():
		return s.invalid("unknown_periodicity", fmt.Sprintf("periodicity %q is not daily or weekly", s.Periodicity))
	case s.Start.IsZero():
		return s.invalid("missing_start", "start date is required")
	case s.End != nil && s.End.Before(s.Start):
		return s.invalid("end_before_start", fmt.Sprintf("end date %s precedes start date %s", s.End, s.Start))
	}

	if s.Periodicity == Weekly {
		if s.Weekday == nil {
			return s.invalid("missing_weekday", "weekly schedules need a weekday")
		}
		if !IsKnownWeekday(*s.Weekday) {
			return s.invalid("unknown_weekday", fmt.Sprintf("weekday %d is out of range", int(*s.Weekday)))
		}
	}
	return nil
}

// AmountNeeded returns what the rule withdraws on day.
//
// It does not call Validate. A rule whose periodicity is unknown, or a weekly
// rule without a usable weekday, cannot answer and returns an error wrapping
// generic.ErrInvalidSchedule rather than a zero that would hide bad data.
func (s ScheduledUse) AmountNeeded(day generic.TimePoint) (generic.Amount, error) {
	none := s.Amount.Zero()

	if day.Before(s.Start) {
		return none, nil
	}
	if s.End != nil && day.After(*s.End) {
		return none, nil
	}

	switch s.Periodicity {
	case Daily:
		return s.Amount, nil
	case Weekly:
		if s.Weekday == nil || !IsKnownWeekday(*s.Weekday) {
			return none, s.invalid("missing_weekday", "demand requested from a weekly schedule without a weekday")
		}
		if day.Weekday() != *s.Weekday {
			return none, nil
		}
		return s.Amount, nil
	default:
		return none, s.invalid("unknown_periodicity", fmt.Sprintf("demand requested from a schedule with periodicity %q", s.Periodicity))
	}
}

func (s ScheduledUse) invalid(code, message string) error {
	return &generic.InvalidScheduleError{ScheduleID: s.ID, Code: code, Message: message}
}

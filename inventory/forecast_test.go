package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func engineAt(today generic.TimePoint) *inventory.ForecastEngine {
	logger, _ := logtest.NewNullLogger()
	return &inventory.ForecastEngine{
		Now:     func() generic.TimePoint { return today },
		MaxDays: inventory.DefaultMaxDays,
		Log:     logrus.NewEntry(logger),
	}
}

func forecast(t *testing.T, today generic.TimePoint, schedules []inventory.ScheduledUse, onHand float64) *generic.TimePoint {
	t.Helper()
	date, err := engineAt(today).Forecast(context.Background(), schedules, ml(onHand))
	require.NoError(t, err)
	return date
}

func assertDate(t *testing.T, want generic.TimePoint, got *generic.TimePoint) {
	t.Helper()
	require.NotNil(t, got, "expected %s, got nil", want)
	assert.Equal(t, want.String(), got.String())
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestForecast_SingleDailyRuleWithInvalidSibling(t *testing.T) {
	// GIVEN: A daily rule started 23 days ago and a monthly rule that is ignored
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne.AddDays(-23), nil),
		{Amount: ml(amountUnit), Periodicity: "monthly", Start: dayOne.AddDays(-23)},
	}

	// THEN: Exactly one day's worth lasts through today
	assertDate(t, dayOne, forecast(t, dayOne, schedules, amountUnit))

	// AND: Less than a day's worth satisfies nothing
	assert.Nil(t, forecast(t, dayOne, schedules, amountUnit-1))
}

func TestForecast_NoSchedules(t *testing.T) {
	assert.Nil(t, forecast(t, dayOne, nil, 10000))
	assert.Nil(t, forecast(t, dayOne, []inventory.ScheduledUse{}, 10000))
}

func TestForecast_TwoOverlappingDailyRules(t *testing.T) {
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne.AddDays(-23), nil),
		daily(amountUnit, dayOne.AddDays(-7), nil),
	}

	tests := []struct {
		name   string
		onHand float64
		want   *generic.TimePoint
	}{
		{"one combined day plus change", 23, dayOne.Ptr()},
		{"just short of a second day", 39.99, dayOne.Ptr()},
		{"exactly two days", 40, dayOne.AddDays(1).Ptr()},
		{"less than one combined day", 15, nil},
		{"fractional remainder", 22.987, dayOne.Ptr()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forecast(t, dayOne, schedules, tt.onHand)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assertDate(t, *tt.want, got)
		})
	}
}

func TestForecast_ExpiredRuleAndOpenRule(t *testing.T) {
	// GIVEN: One rule that ended three days ago and one still running
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne.AddDays(-23), dayOne.AddDays(-3).Ptr()),
		daily(amountUnit, dayOne.AddDays(-7), nil),
	}

	// THEN: Only the running rule draws down stock
	assertDate(t, dayOne.AddDays(1), forecast(t, dayOne, schedules, 23))
	assertDate(t, dayOne, forecast(t, dayOne, schedules, 12.987))
	assert.Nil(t, forecast(t, dayOne, schedules, 8))

	// AND: The open rule is never cut off by the expired rule's end date
	assertDate(t, dayOne.AddDays(999), forecast(t, dayOne, schedules, 1000*amountUnit))
}

func TestForecast_ScheduleEndsBeforeStockRunsOut(t *testing.T) {
	// GIVEN: A rule ending three days from now and plenty of stock
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne.AddDays(-23), dayOne.AddDays(3).Ptr()),
	}

	// WHEN: Running the forecast
	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(10000))
	require.NoError(t, err)

	// THEN: The answer is the rule's last day
	assertDate(t, dayOne.AddDays(3), result.Date)
	assert.Equal(t, inventory.OutcomeScheduleEnded, result.Outcome)
	assertAmount(t, 10000-4*amountUnit, result.Remaining)
	assertAmount(t, 4*amountUnit, result.Consumed)
	assertDate(t, dayOne.AddDays(3), result.Horizon)
	assert.Equal(t, dayOne.String(), result.Window.Start.String())
	assert.Equal(t, dayOne.AddDays(3).String(), result.Window.End.String())
}

func TestForecast_WeeklyRuleOnMondays(t *testing.T) {
	// GIVEN: A Monday rule and an expired daily rule, from every weekday
	for offset := 0; offset < 7; offset++ {
		today := dayOne.AddDays(offset)
		schedules := []inventory.ScheduledUse{
			daily(amountUnit, today.AddDays(-23), today.AddDays(-3).Ptr()),
			weekly(amountUnit, time.Monday, today.AddDays(-7), nil),
		}
		firstMonday := generic.NextWeekday(today, time.Monday)

		t.Run(today.Weekday().String(), func(t *testing.T) {
			// THEN: Twelve whole uses reach the twelfth Monday
			assertDate(t, firstMonday.AddDays(7*11), forecast(t, today, schedules, 129.87))

			// AND: Two whole uses reach the second Monday
			assertDate(t, firstMonday.AddDays(7), forecast(t, today, schedules, 23))

			// AND: Less than one use reaches nothing
			assert.Nil(t, forecast(t, today, schedules, 8))
		})
	}
}

// =============================================================================
// BOUNDARY LAW
// =============================================================================

func TestForecast_ExactDepletionIsSatisfied(t *testing.T) {
	schedules := []inventory.ScheduledUse{daily(amountUnit, dayOne, nil)}

	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(30))
	require.NoError(t, err)

	assertDate(t, dayOne.AddDays(2), result.Date)
	assert.Equal(t, inventory.OutcomeShortfall, result.Outcome)
	assert.True(t, result.Remaining.IsZero())
	assert.Equal(t, dayOne.AddDays(3).String(), result.Window.End.String())
}

func TestForecast_DecimalAmountsDoNotDrift(t *testing.T) {
	// GIVEN: 0.1 used daily against 1.0 on hand
	schedules := []inventory.ScheduledUse{daily(0.1, dayOne, nil)}

	// THEN: Ten uses fit exactly
	assertDate(t, dayOne.AddDays(9), forecast(t, dayOne, schedules, 1.0))
}

func TestForecast_ZeroDemandDaysCarryTheBalance(t *testing.T) {
	// GIVEN: A single Monday rule
	schedules := []inventory.ScheduledUse{weekly(amountUnit, time.Monday, dayOne, nil)}
	firstMonday := generic.NextWeekday(dayOne, time.Monday)

	// WHEN: Stock covers exactly one use
	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(amountUnit))
	require.NoError(t, err)

	// THEN: The answer is the Monday itself, not a day in between
	assertDate(t, firstMonday, result.Date)
	assert.Equal(t, firstMonday.AddDays(7).String(), result.Window.End.String())
}

func TestForecast_NegativeOnHand(t *testing.T) {
	schedules := []inventory.ScheduledUse{daily(amountUnit, dayOne, nil)}

	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(-5))
	require.NoError(t, err)

	assert.Nil(t, result.Date)
	assert.Equal(t, inventory.OutcomeShortfall, result.Outcome)
	assertAmount(t, -5, result.Remaining)
}

func TestForecast_FutureRuleLeavesEarlyDaysSatisfied(t *testing.T) {
	// GIVEN: A rule that only starts in five days
	schedules := []inventory.ScheduledUse{daily(amountUnit, dayOne.AddDays(5), nil)}

	// THEN: Zero stock still fails only on the first demanding day
	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(0))
	require.NoError(t, err)
	assert.Nil(t, result.Date)
	assert.Equal(t, dayOne.AddDays(5).String(), result.Window.End.String())
}

// =============================================================================
// OUTCOMES
// =============================================================================

func TestRun_NoValidSchedules(t *testing.T) {
	// GIVEN: Only invalid schedules
	schedules := []inventory.ScheduledUse{
		{ID: "no-day", Amount: ml(5), Periodicity: inventory.Weekly, Start: dayOne},
		{ID: "monthly", Amount: ml(5), Periodicity: "monthly", Start: dayOne},
	}

	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(100))
	require.NoError(t, err)

	// THEN: The outcome says why there is no date
	assert.Nil(t, result.Date)
	assert.Equal(t, inventory.OutcomeNoValidSchedules, result.Outcome)
	assert.Equal(t, 0, result.ValidSchedules)
	assert.True(t, result.Window.Start.IsZero())
	require.Len(t, result.Excluded, 2)

	assert.Equal(t, 0, result.Excluded[0].Index)
	assert.Equal(t, "no-day", result.Excluded[0].ScheduleID)
	var invalid *generic.InvalidScheduleError
	require.True(t, errors.As(result.Excluded[1].Reason, &invalid))
	assert.Equal(t, "unknown_periodicity", invalid.Code)
}

func TestRun_AllSchedulesAlreadyEnded(t *testing.T) {
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne.AddDays(-23), dayOne.AddDays(-3).Ptr()),
	}

	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(100))
	require.NoError(t, err)

	assert.Nil(t, result.Date)
	assert.Equal(t, inventory.OutcomeScheduleEnded, result.Outcome)
	assertAmount(t, 100, result.Remaining)
	assert.True(t, result.Window.Start.IsZero())
}

func TestRun_OpenRuleMeansNoHorizon(t *testing.T) {
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne, dayOne.AddDays(3).Ptr()),
		weekly(amountUnit, time.Monday, dayOne, nil),
	}

	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(25))
	require.NoError(t, err)
	assert.Nil(t, result.Horizon)
	assert.Equal(t, inventory.OutcomeShortfall, result.Outcome)
}

func TestRun_HorizonDoesNotAliasInput(t *testing.T) {
	end := dayOne.AddDays(3)
	schedules := []inventory.ScheduledUse{daily(amountUnit, dayOne, &end)}

	result, err := engineAt(dayOne).Run(context.Background(), schedules, ml(1000))
	require.NoError(t, err)
	require.NotNil(t, result.Horizon)

	*result.Horizon = result.Horizon.AddDays(10)
	assert.Equal(t, dayOne.AddDays(3).String(), end.String())
}

func TestRun_DayCapExceeded(t *testing.T) {
	// GIVEN: Far more stock than a small cap can walk through
	engine := engineAt(dayOne)
	engine.MaxDays = 100
	schedules := []inventory.ScheduledUse{daily(1, dayOne, nil)}

	// WHEN: Running the forecast
	result, err := engine.Run(context.Background(), schedules, ml(1e9))

	// THEN: An error distinct from "no date", with the partial walk
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrHorizonExceeded)

	var exceeded *generic.HorizonExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, 100, exceeded.Days)
	assertAmount(t, 1e9-100, exceeded.Balance)

	require.NotNil(t, result)
	assert.Equal(t, inventory.OutcomeHorizonExceeded, result.Outcome)
	assertDate(t, dayOne.AddDays(99), result.Date)
	assert.Equal(t, dayOne.AddDays(99).String(), result.Window.End.String())

	// AND: Forecast reports it as an error, not a date
	date, err := engine.Forecast(context.Background(), schedules, ml(1e9))
	assert.Nil(t, date)
	assert.ErrorIs(t, err, generic.ErrHorizonExceeded)
}

func TestRun_DefaultCapWhenUnset(t *testing.T) {
	engine := engineAt(dayOne)
	engine.MaxDays = 0
	schedules := []inventory.ScheduledUse{weekly(1, time.Monday, dayOne.AddDays(400*365), nil)}

	_, err := engine.Run(context.Background(), schedules, ml(1))

	var exceeded *generic.HorizonExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, inventory.DefaultMaxDays, exceeded.Days)
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	schedules := []inventory.ScheduledUse{daily(amountUnit, dayOne, nil)}
	result, err := engineAt(dayOne).Run(ctx, schedules, ml(100))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_LogsExclusions(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	engine := engineAt(dayOne)
	engine.Log = logrus.NewEntry(logger)

	schedules := []inventory.ScheduledUse{
		{ID: "broken", Periodicity: inventory.Daily, Start: dayOne},
		daily(amountUnit, dayOne, nil),
	}
	_, err := engine.Run(context.Background(), schedules, ml(100))
	require.NoError(t, err)

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "excluding schedule from forecast" {
			found = true
			assert.Equal(t, "broken", entry.Data["schedule_id"])
		}
	}
	assert.True(t, found)
}

func TestRun_InputNotMutated(t *testing.T) {
	schedules := []inventory.ScheduledUse{
		daily(amountUnit, dayOne, nil),
		{Amount: ml(amountUnit), Periodicity: "monthly", Start: dayOne},
	}
	before := make([]inventory.ScheduledUse, len(schedules))
	copy(before, schedules)

	_, err := engineAt(dayOne).Run(context.Background(), schedules, ml(100))
	require.NoError(t, err)
	assert.Equal(t, before, schedules)
}

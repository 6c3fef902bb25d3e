package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// dayOne is a Friday.
var dayOne = generic.NewTimePoint(2026, time.October, 16)

const amountUnit = 10

func ml(v float64) generic.Amount {
	return generic.NewAmount(v, generic.UnitMilliliters)
}

func daily(amount float64, start generic.TimePoint, end *generic.TimePoint) inventory.ScheduledUse {
	return inventory.ScheduledUse{
		Amount:      ml(amount),
		Periodicity: inventory.Daily,
		Start:       start,
		End:         end,
	}
}

func weekly(amount float64, wd time.Weekday, start generic.TimePoint, end *generic.TimePoint) inventory.ScheduledUse {
	return inventory.ScheduledUse{
		Amount:      ml(amount),
		Periodicity: inventory.Weekly,
		Start:       start,
		End:         end,
		Weekday:     inventory.WeekdayPtr(wd),
	}
}

func assertAmount(t *testing.T, want float64, got generic.Amount, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, ml(want).Equal(got), "want %v, got %v %v", want, got.Value, msgAndArgs)
}

func invalidCode(t *testing.T, s inventory.ScheduledUse) string {
	t.Helper()
	err := s.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, generic.ErrInvalidSchedule)
	var invalid *generic.InvalidScheduleError
	require.True(t, errors.As(err, &invalid))
	return invalid.Code
}

// =============================================================================
// VALIDITY
// =============================================================================

func TestScheduledUse_Rejects(t *testing.T) {
	badDay := time.Weekday(7)

	tests := []struct {
		name     string
		schedule inventory.ScheduledUse
		code     string
	}{
		{
			name:     "empty schedule",
			schedule: inventory.ScheduledUse{},
			code:     "missing_amount",
		},
		{
			name:     "zero amount",
			schedule: daily(0, dayOne.AddDays(-23), nil),
			code:     "missing_amount",
		},
		{
			name:     "negative amount",
			schedule: daily(-1, dayOne.AddDays(-23), nil),
			code:     "non_positive_amount",
		},
		{
			name: "missing periodicity",
			schedule: inventory.ScheduledUse{
				Amount: ml(amountUnit),
				Start:  dayOne.AddDays(-23),
			},
			code: "missing_periodicity",
		},
		{
			name: "monthly periodicity",
			schedule: inventory.ScheduledUse{
				Amount:      ml(amountUnit),
				Periodicity: "monthly",
				Start:       dayOne.AddDays(-23),
			},
			code: "unknown_periodicity",
		},
		{
			name:     "missing start date",
			schedule: daily(amountUnit, generic.TimePoint{}, nil),
			code:     "missing_start",
		},
		{
			name:     "end before start",
			schedule: weekly(amountUnit, dayOne.AddDays(-24).Weekday(), dayOne.AddDays(-23), dayOne.AddDays(-24).Ptr()),
			code:     "end_before_start",
		},
		{
			name: "weekly without weekday",
			schedule: inventory.ScheduledUse{
				Amount:      ml(amountUnit),
				Periodicity: inventory.Weekly,
				Start:       dayOne.AddDays(-23),
			},
			code: "missing_weekday",
		},
		{
			name: "weekly with out-of-range weekday",
			schedule: inventory.ScheduledUse{
				Amount:      ml(amountUnit),
				Periodicity: inventory.Weekly,
				Start:       dayOne.AddDays(-23),
				Weekday:     &badDay,
			},
			code: "unknown_weekday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.schedule.IsValid())
			assert.Equal(t, tt.code, invalidCode(t, tt.schedule))
		})
	}
}

func TestScheduledUse_Accepts(t *testing.T) {
	tests := []struct {
		name     string
		schedule inventory.ScheduledUse
	}{
		{"daily open-ended", daily(amountUnit, dayOne.AddDays(-23), nil)},
		{"weekly", weekly(amountUnit, time.Monday, dayOne.AddDays(-23), nil)},
		{"weekly with end date", weekly(amountUnit, time.Monday, dayOne.AddDays(-23), dayOne.AddDays(-3).Ptr())},
		{"end equals start", daily(amountUnit, dayOne, dayOne.Ptr())},
		{"fractional amount", daily(0.001, dayOne, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.schedule.Validate())
			assert.True(t, tt.schedule.IsValid())
		})
	}
}

func TestScheduledUse_DailyIgnoresWeekday(t *testing.T) {
	// GIVEN: A daily schedule carrying a stray weekday
	// THEN: It is valid and consumes every day
	s := daily(amountUnit, dayOne, nil)
	s.Weekday = inventory.WeekdayPtr(time.Monday)

	require.True(t, s.IsValid())
	for i := 0; i < 7; i++ {
		got, err := s.AmountNeeded(dayOne.AddDays(i))
		require.NoError(t, err)
		assertAmount(t, amountUnit, got, "day %d", i)
	}
}

// =============================================================================
// AMOUNT NEEDED
// =============================================================================

func TestAmountNeeded_DailySchedule(t *testing.T) {
	s := daily(amountUnit, dayOne.AddDays(-23), dayOne.AddDays(-2).Ptr())

	tests := []struct {
		name string
		day  generic.TimePoint
		want float64
	}{
		{"before start date", dayOne.AddDays(-24), 0},
		{"start date", dayOne.AddDays(-23), amountUnit},
		{"midrange day", dayOne.AddDays(-21), amountUnit},
		{"end date", dayOne.AddDays(-2), amountUnit},
		{"after end date", dayOne.AddDays(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.AmountNeeded(tt.day)
			require.NoError(t, err)
			assertAmount(t, tt.want, got)
		})
	}
}

func TestAmountNeeded_UnendingDailySchedule(t *testing.T) {
	s := daily(amountUnit, dayOne.AddDays(-23), nil)

	for _, offset := range []int{-21, 0, 365, 3650} {
		got, err := s.AmountNeeded(dayOne.AddDays(offset))
		require.NoError(t, err)
		assertAmount(t, amountUnit, got, "offset %d", offset)
	}
}

func TestAmountNeeded_WeeklySchedule(t *testing.T) {
	// Weekday matches dayOne, so dayOne-21 and dayOne-7 are use days.
	s := weekly(amountUnit, dayOne.Weekday(), dayOne.AddDays(-23), dayOne.AddDays(-2).Ptr())

	tests := []struct {
		name string
		day  generic.TimePoint
		want float64
	}{
		{"before start date", dayOne.AddDays(-24), 0},
		{"start date is not the weekday", dayOne.AddDays(-23), 0},
		{"first matching weekday", dayOne.AddDays(-21), amountUnit},
		{"second matching weekday", dayOne.AddDays(-7), amountUnit},
		{"matching weekday after end date", dayOne, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.AmountNeeded(tt.day)
			require.NoError(t, err)
			assertAmount(t, tt.want, got)
		})
	}
}

func TestAmountNeeded_UnendingWeeklySchedule(t *testing.T) {
	start := dayOne.AddDays(-23)
	s := weekly(amountUnit, start.Weekday(), start, nil)

	tests := []struct {
		name string
		day  generic.TimePoint
		want float64
	}{
		{"before start date", dayOne.AddDays(-24), 0},
		{"start date is the weekday", start, amountUnit},
		{"not the weekday", dayOne.AddDays(-21), 0},
		{"one week later", start.AddDays(7), amountUnit},
		{"a year of weeks later", start.AddDays(7 * 52), amountUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.AmountNeeded(tt.day)
			require.NoError(t, err)
			assertAmount(t, tt.want, got)
		})
	}
}

func TestAmountNeeded_InvalidScheduleFailsLoudly(t *testing.T) {
	// GIVEN: Schedules that cannot say which days they consume on
	// WHEN: Asking for demand on a day inside their range
	// THEN: An error, not a silent zero

	noWeekday := inventory.ScheduledUse{
		ID:          "no-weekday",
		Amount:      ml(amountUnit),
		Periodicity: inventory.Weekly,
		Start:       dayOne.AddDays(-7),
	}
	_, err := noWeekday.AmountNeeded(dayOne)
	assert.ErrorIs(t, err, generic.ErrInvalidSchedule)
	assert.Contains(t, err.Error(), "no-weekday")

	monthly := inventory.ScheduledUse{
		Amount:      ml(amountUnit),
		Periodicity: "monthly",
		Start:       dayOne.AddDays(-7),
	}
	_, err = monthly.AmountNeeded(dayOne)
	assert.ErrorIs(t, err, generic.ErrInvalidSchedule)
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"monday", time.Monday, true},
		{"Monday", time.Monday, true},
		{" SUN ", time.Sunday, true},
		{"thurs", time.Thursday, true},
		{"6", time.Saturday, true},
		{"0", time.Sunday, true},
		{"7", 0, false},
		{"-1", 0, false},
		{"funday", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := inventory.ParseWeekday(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParsePeriodicity(t *testing.T) {
	assert.Equal(t, inventory.Daily, inventory.ParsePeriodicity(" Daily "))
	assert.Equal(t, inventory.Weekly, inventory.ParsePeriodicity("WEEKLY"))
	assert.False(t, inventory.ParsePeriodicity("monthly").IsKnown())
}

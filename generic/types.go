/*
Package generic provides the domain-agnostic primitives of the forecaster.

PURPOSE:
  This package contains the value types every other package builds on:
  quantities, calendar days, day ranges and the error taxonomy. It knows
  nothing about chemicals, schedules or HTTP.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit label (e.g., 250 ml, 10 g, 3 units)
  - Unit: The label attached to a quantity. Units are never converted.

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift while
     a balance is drawn down day after day
  2. Immutability: Every Amount operation returns a new value
  3. Labels only: Unit travels with the value but arithmetic never checks it

USAGE:
  onHand := generic.NewAmount(129.87, generic.UnitMilliliters)
  perUse := generic.NewAmountFromInt(10, generic.UnitMilliliters)
  if !perUse.GreaterThan(onHand) {
      onHand = onHand.Sub(perUse)
  }

SEE ALSO:
  - time.go: TimePoint, the calendar day cursor
  - period.go: Period, an inclusive range of days
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitNone        Unit = ""
	UnitUnits       Unit = "units"
	UnitMilliliters Unit = "ml"
	UnitLiters      Unit = "l"
	UnitGrams       Unit = "g"
	UnitKilograms   Unit = "kg"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

// ParseAmount parses a decimal string such as "12.987".
func ParseAmount(s string, unit Unit) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d, Unit: unit}, nil
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// Float64 is for display only. Arithmetic stays in decimal.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string {
	if a.Unit == UnitNone {
		return a.Value.String()
	}
	return a.Value.String() + " " + string(a.Unit)
}

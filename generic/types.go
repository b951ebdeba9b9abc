/*
Package generic provides the domain-agnostic core of the payroll engine.

PURPOSE:
  This package contains the primitives every calculation is built from:
  quantities with units, calendar dates, clock times, periods, holiday
  calendars, errors and the immutable audit snapshot. It knows nothing about
  wages or labor law; the labor package supplies that meaning.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 4 hours, 15 days, 40000 won)
  - EntityID: Type-safe identifier of the worker a calculation is about
  - Rounding helpers: the three currency conventions the engine uses
    (round to nearest unit, truncate, floor to a multiple of 10)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift in
     hours x rate products
  2. Explicit rounding: Values stay exact until a rule says how to round
  3. Type Safety: Strong typing for IDs and units

USAGE:
  hours := generic.NewAmount(4, generic.UnitHours)
  pay := generic.RoundCurrency(hours.Value.Mul(rate))

SEE ALSO:
  - time.go: TimePoint, ClockTime, Clock and holiday calendar
  - period.go: Period, weeks and months
  - snapshot.go: CalculationResult audit records
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
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
	UnitWon   Unit = "won"
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

func (a Amount) Zero() Amount           { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount    { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount    { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsNegative() bool       { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool       { return a.Value.IsPositive() }
func (a Amount) LessThan(b Amount) bool { return a.Value.LessThan(b.Value) }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ClampZero returns a with negative values replaced by zero.
func (a Amount) ClampZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntityID identifies the worker (or any owner of schedules and records).
type EntityID string

// =============================================================================
// ROUNDING - Currency conventions
// =============================================================================

var ten = decimal.NewFromInt(10)

// RoundCurrency rounds to the nearest whole currency unit, halves away from zero.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// TruncateCurrency drops the fractional currency part.
func TruncateCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(0)
}

// FloorToTen implements floor(x / 10) * 10.
func FloorToTen(d decimal.Decimal) decimal.Decimal {
	return d.Div(ten).Floor().Mul(ten)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

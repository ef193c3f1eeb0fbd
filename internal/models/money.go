package models

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for amounts.
const MoneyScale = 2

// moneyLimit is the smallest magnitude that no longer fits numeric(10,2).
var moneyLimit = decimal.NewFromInt(100_000_000)

// Money is an amount in currency units. It is stored as numeric(10,2) and
// serialized as a string with exactly two decimal places.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromString parses s, panicking on malformed input.
func MoneyFromString(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

// FitsMoney reports whether d can be stored as numeric(10,2) without
// rounding or overflow.
func FitsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale)) && d.Abs().LessThan(moneyLimit)
}

func (m Money) String() string {
	return m.StringFixed(MoneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(MoneyScale) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// centsPlaces is the precision every stored or displayed amount is rounded to.
const centsPlaces = 2

// Money is an immutable amount in the shop's single currency (BRL).
// The zero value is R$ 0,00.
type Money struct {
	amount decimal.Decimal
}

// Zero is R$ 0,00.
var Zero = Money{}

// NewMoney wraps a decimal amount.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// MoneyFromString parses a plain decimal string such as "120.5".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return Money{amount: d}, nil
}

// MustMoney is MoneyFromString for literals known to be valid.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}

	return m
}

// Decimal returns the underlying amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Times returns m multiplied by a decimal factor (hours, quantity).
func (m Money) Times(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// Rounded rounds to cents, half away from zero.
func (m Money) Rounded() Money {
	return Money{amount: m.amount.Round(centsPlaces)}
}

// Equal compares amounts numerically (1.5 equals 1.50).
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders the plain amount with two decimals, e.g. "1234.50".
func (m Money) String() string {
	return m.amount.StringFixed(centsPlaces)
}

// Display renders the amount for people: "R$ 1234,50". There is no
// thousands grouping.
func (m Money) Display() string {
	return "R$ " + strings.Replace(m.String(), ".", ",", 1)
}

// MarshalJSON encodes the amount as a two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	m.amount = d

	return nil
}

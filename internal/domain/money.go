package domain

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in a single currency. Arithmetic between
// two Money values of different currencies is refused; convert first.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds a Money value, validating the currency code against the
// ISO-4217 registry.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if money.GetCurrency(currency) == nil {
		return Money{}, fmt.Errorf("NewMoney: %w: unknown currency code %q", ErrValidation, currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// M is a test and seed-data helper; it panics on an unknown currency code.
func M(amount string, currency string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// Add returns m + n. The currencies must match.
func (m Money) Add(n Money) (Money, error) {
	if m.Currency != n.Currency {
		return Money{}, fmt.Errorf("Money.Add: %w: currency mismatch %s != %s", ErrValidation, m.Currency, n.Currency)
	}
	return Money{Amount: m.Amount.Add(n.Amount), Currency: m.Currency}, nil
}

// Sub returns m - n. The currencies must match.
func (m Money) Sub(n Money) (Money, error) {
	if m.Currency != n.Currency {
		return Money{}, fmt.Errorf("Money.Sub: %w: currency mismatch %s != %s", ErrValidation, m.Currency, n.Currency)
	}
	return Money{Amount: m.Amount.Sub(n.Amount), Currency: m.Currency}, nil
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal reports whether amount and currency both match.
func (m Money) Equal(n Money) bool {
	return m.Currency == n.Currency && m.Amount.Equal(n.Amount)
}

// String formats the amount with the currency's symbol and fraction digits,
// e.g. "$1,300.00" for USD.
func (m Money) String() string {
	cur := money.GetCurrency(m.Currency)
	if cur == nil {
		return m.Amount.StringFixed(2) + " " + m.Currency
	}
	shifted := m.Amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(shifted.IntPart())
}

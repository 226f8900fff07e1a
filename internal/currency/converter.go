// Package currency converts amounts between currencies through a fixed base
// currency using a mutable in-process rate table.
package currency

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// BaseCurrency is the pivot of the rate table. Its rate is immutably 1; every
// conversion goes through it.
const BaseCurrency = "HKD"

// Rounding precision, in decimal places.
const (
	amountScale = 2
	rateScale   = 6
)

// Converter holds exchange rates expressed as units of the base currency per
// one unit of the keyed currency. Safe for concurrent use: reads take a
// shared lock, UpdateRate takes an exclusive one.
type Converter struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewConverter returns a converter seeded with the default table. The seed
// rates are illustrative, not live market data.
func NewConverter() *Converter {
	return &Converter{
		rates: map[string]decimal.Decimal{
			BaseCurrency: decimal.NewFromInt(1),
			"USD":        decimal.RequireFromString("7.77"), // 1 USD = 7.77 HKD
			"EUR":        decimal.RequireFromString("9.01"), // 1 EUR = 9.01 HKD
			"CNY":        decimal.RequireFromString("1.09"), // 1 CNY = 1.09 HKD
			"SGD":        decimal.RequireFromString("5.97"), // 1 SGD = 5.97 HKD
		},
	}
}

// Convert converts amount from one currency to another, rounding the result
// to 2 decimal places, half away from zero. The same-currency case returns
// the amount untouched, with no rounding.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	fromRate, fromOK := c.rates[from]
	toRate, toOK := c.rates[to]
	if !fromOK {
		return decimal.Decimal{}, fmt.Errorf("Convert: %w: %s", domain.ErrUnsupportedCurrency, from)
	}
	if !toOK {
		return decimal.Decimal{}, fmt.Errorf("Convert: %w: %s", domain.ErrUnsupportedCurrency, to)
	}

	inBase := amount.Mul(fromRate)
	return inBase.DivRound(toRate, amountScale), nil
}

// Rate returns the pairwise exchange rate from one currency to another,
// rounded to 6 decimal places, half away from zero. The same-currency rate is
// exactly 1. Unlike Convert, the error does not name the offending code.
func (c *Converter) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	fromRate, fromOK := c.rates[from]
	toRate, toOK := c.rates[to]
	if !fromOK || !toOK {
		return decimal.Decimal{}, fmt.Errorf("Rate: %w", domain.ErrUnsupportedCurrency)
	}

	return toRate.DivRound(fromRate, rateScale), nil
}

// UpdateRate replaces the stored rate for a non-base currency. The base
// currency's rate cannot be changed.
func (c *Converter) UpdateRate(code string, rate decimal.Decimal) error {
	if code == BaseCurrency {
		return fmt.Errorf("UpdateRate: %w: cannot update %s rate, it is the base currency (1.0)",
			domain.ErrInvalidOperation, BaseCurrency)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("UpdateRate: %w: rate must be positive, got %s", domain.ErrValidation, rate)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[code] = rate
	return nil
}

// Rates returns a copy of the full rate table. Mutating the returned map
// does not affect the converter.
func (c *Converter) Rates() map[string]decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(c.rates))
	for code, rate := range c.rates {
		out[code] = rate
	}
	return out
}

// Supported reports whether the table has a rate for the given code.
func (c *Converter) Supported(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rates[code]
	return ok
}

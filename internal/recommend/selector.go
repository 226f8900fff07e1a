// Package recommend maps computed financial metrics onto pre-authored
// textual recommendations.
package recommend

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// Fallback is returned by Pick when no rule matches.
const Fallback = "Your financial health looks good! Keep maintaining your current habits."

// Thresholds compare against percentage-valued metrics (0-100), matching the
// convention of domain.FinancialMetrics.
var (
	lowSavingsThreshold      = decimal.NewFromInt(10)
	moderateSavingsThreshold = decimal.NewFromInt(20)
	highExpenseThreshold     = decimal.NewFromInt(90)
	moderateExpenseThreshold = decimal.NewFromInt(70)
)

// Selector picks recommendations for a set of metrics. The zero value is not
// usable; construct with NewSelector.
type Selector struct {
	// intn returns a uniform value in [0, n). Injectable for tests.
	intn func(n int) int
}

// NewSelector returns a selector backed by the process-level random source.
func NewSelector() *Selector {
	return &Selector{intn: rand.IntN}
}

// NewSelectorWithRand returns a selector drawing from the given source.
func NewSelectorWithRand(intn func(n int) int) *Selector {
	return &Selector{intn: intn}
}

// Generate returns the full recommendation pool for the metrics. Rules are
// evaluated independently, and matching pools are appended in a fixed order:
// savings rate, expense ratio, cash flow.
func (s *Selector) Generate(m domain.FinancialMetrics) []string {
	var out []string

	switch {
	case m.SavingsRate.LessThan(lowSavingsThreshold):
		out = append(out, lowSavingsRate...)
	case m.SavingsRate.LessThan(moderateSavingsThreshold):
		out = append(out, moderateSavingsRate...)
	default:
		out = append(out, highSavingsRate...)
	}

	switch {
	case m.ExpenseToIncomeRatio.GreaterThan(highExpenseThreshold):
		out = append(out, highExpenseRatio...)
	case m.ExpenseToIncomeRatio.GreaterThan(moderateExpenseThreshold):
		out = append(out, moderateExpenseRatio...)
	}

	if m.NetCashFlow.IsNegative() {
		out = append(out, negativeCashFlow...)
	}

	return out
}

// Pick returns one recommendation chosen uniformly at random from Generate's
// output, or Fallback when that output is empty.
func (s *Selector) Pick(m domain.FinancialMetrics) string {
	return s.pickFrom(s.Generate(m))
}

func (s *Selector) pickFrom(pool []string) string {
	if len(pool) == 0 {
		return Fallback
	}
	return pool[s.intn(len(pool))]
}

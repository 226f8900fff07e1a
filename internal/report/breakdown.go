package report

import (
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// Breakdown computes each category's percentage share of total expenses.
//
// Only expense transactions count. Categories group by exact string match,
// no trimming or case folding, and keep first-seen order. Each share is
// rounded independently to 4 decimal places, half away from zero, so the
// shares need not re-sum to exactly 100. A set with no expenses yields a
// zero total and no shares.
func Breakdown(txs []domain.Transaction) domain.ExpenseCategoryBreakdown {
	totals := make(map[string]decimal.Decimal)
	var order []string
	totalExpenses := decimal.Zero

	for _, tx := range txs {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		totalExpenses = totalExpenses.Add(tx.Amount)
	}

	b := domain.ExpenseCategoryBreakdown{TotalExpenses: totalExpenses}
	if !totalExpenses.IsPositive() {
		return b
	}

	b.Shares = make([]domain.CategoryShare, 0, len(order))
	for _, category := range order {
		share := totals[category].Div(totalExpenses).Mul(hundred).Round(percentScale)
		b.Shares = append(b.Shares, domain.CategoryShare{Category: category, Percent: share})
	}
	return b
}

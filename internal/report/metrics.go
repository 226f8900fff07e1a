// Package report aggregates transaction sets into period financial metrics
// and expense-category breakdowns. It performs no date filtering; callers
// scope the input to one period and one currency first.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// percentScale is the precision of percentage metrics, in decimal places.
const percentScale = 4

var hundred = decimal.NewFromInt(100)

// Metrics computes the financial metrics for a transaction set.
//
// SavingsRate and ExpenseToIncomeRatio are percentages rounded to 4 decimal
// places, half away from zero. When total income is zero they stay exactly
// zero rather than dividing by zero, even for expense-only periods.
func Metrics(txs []domain.Transaction) domain.FinancialMetrics {
	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionIncome:
			totalIncome = totalIncome.Add(tx.Amount)
		case domain.TransactionExpense:
			totalExpenses = totalExpenses.Add(tx.Amount)
		}
	}

	m := domain.FinancialMetrics{
		TotalIncome:          totalIncome,
		TotalExpenses:        totalExpenses,
		NetCashFlow:          totalIncome.Sub(totalExpenses),
		SavingsRate:          decimal.Zero,
		ExpenseToIncomeRatio: decimal.Zero,
	}

	if totalIncome.IsPositive() {
		savings := totalIncome.Sub(totalExpenses)
		m.SavingsRate = savings.Div(totalIncome).Mul(hundred).Round(percentScale)
		m.ExpenseToIncomeRatio = totalExpenses.Div(totalIncome).Mul(hundred).Round(percentScale)
	}

	return m
}

package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FinancialMetrics are the derived figures for one period and one currency.
// SavingsRate and ExpenseToIncomeRatio are percentages (0-100); both are
// exactly zero when TotalIncome is zero.
type FinancialMetrics struct {
	TotalIncome          decimal.Decimal `json:"total_income"`
	TotalExpenses        decimal.Decimal `json:"total_expenses"`
	NetCashFlow          decimal.Decimal `json:"net_cash_flow"`
	SavingsRate          decimal.Decimal `json:"savings_rate"`
	ExpenseToIncomeRatio decimal.Decimal `json:"expense_to_income_ratio"`
}

func (m FinancialMetrics) String() string {
	return fmt.Sprintf("income=%s, expenses=%s, netFlow=%s, savingsRate=%s%%, expenseRatio=%s%%",
		m.TotalIncome.StringFixed(2), m.TotalExpenses.StringFixed(2), m.NetCashFlow.StringFixed(2),
		m.SavingsRate.StringFixed(2), m.ExpenseToIncomeRatio.StringFixed(2))
}

// CategoryShare is one category's percentage of total expenses.
type CategoryShare struct {
	Category string          `json:"category"`
	Percent  decimal.Decimal `json:"percent"`
}

// ExpenseCategoryBreakdown is the per-category percentage split of a period's
// expenses. Shares keep the order categories were first seen in; the
// percentages need not re-sum to exactly 100 because each is rounded
// independently.
type ExpenseCategoryBreakdown struct {
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Shares        []CategoryShare `json:"shares"`
}

// Percent returns the share for a category, and whether it is present.
func (b ExpenseCategoryBreakdown) Percent(category string) (decimal.Decimal, bool) {
	for _, s := range b.Shares {
		if s.Category == category {
			return s.Percent, true
		}
	}
	return decimal.Decimal{}, false
}

func (b ExpenseCategoryBreakdown) String() string {
	if len(b.Shares) == 0 {
		return "No expenses for the selected period."
	}
	var sb strings.Builder
	sb.WriteString("Expense breakdown (percent of total):\n")
	for _, s := range b.Shares {
		fmt.Fprintf(&sb, "- %s: %s%%\n", s.Category, s.Percent.StringFixed(2))
	}
	return sb.String()
}

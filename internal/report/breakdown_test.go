package report

import (
	"testing"

	"github.com/moneyapps/ledger/internal/domain"
)

func TestBreakdown(t *testing.T) {
	txs := []domain.Transaction{
		tx(domain.TransactionExpense, "300", "Food & Dining"),
		tx(domain.TransactionExpense, "100", "Transportation"),
		tx(domain.TransactionExpense, "100", "Entertainment"),
		tx(domain.TransactionIncome, "9999", "Salary"), // ignored
	}

	b := Breakdown(txs)

	if !b.TotalExpenses.Equal(dec("500")) {
		t.Fatalf("TotalExpenses = %s, want 500", b.TotalExpenses)
	}

	want := []struct {
		category string
		percent  string
	}{
		{"Food & Dining", "60.0000"},
		{"Transportation", "20.0000"},
		{"Entertainment", "20.0000"},
	}
	if len(b.Shares) != len(want) {
		t.Fatalf("Shares has %d entries, want %d", len(b.Shares), len(want))
	}
	for i, w := range want {
		if b.Shares[i].Category != w.category {
			t.Errorf("Shares[%d].Category = %q, want %q (first-seen order)", i, b.Shares[i].Category, w.category)
		}
		if !b.Shares[i].Percent.Equal(dec(w.percent)) {
			t.Errorf("Shares[%d].Percent = %s, want %s", i, b.Shares[i].Percent, w.percent)
		}
	}
}

func TestBreakdownGroupsByExactMatch(t *testing.T) {
	// No normalization: differing case or whitespace makes a new category.
	txs := []domain.Transaction{
		tx(domain.TransactionExpense, "50", "Utilities"),
		tx(domain.TransactionExpense, "50", "utilities"),
		tx(domain.TransactionExpense, "100", "Utilities"),
	}

	b := Breakdown(txs)

	if len(b.Shares) != 2 {
		t.Fatalf("Shares has %d entries, want 2", len(b.Shares))
	}
	if p, ok := b.Percent("Utilities"); !ok || !p.Equal(dec("75.0000")) {
		t.Errorf("Percent(Utilities) = %s, %v; want 75.0000, true", p, ok)
	}
	if p, ok := b.Percent("utilities"); !ok || !p.Equal(dec("25.0000")) {
		t.Errorf("Percent(utilities) = %s, %v; want 25.0000, true", p, ok)
	}
}

func TestBreakdownNoExpenses(t *testing.T) {
	txs := []domain.Transaction{
		tx(domain.TransactionIncome, "5000", "Salary"),
	}

	for _, input := range [][]domain.Transaction{nil, txs} {
		b := Breakdown(input)
		if !b.TotalExpenses.IsZero() {
			t.Errorf("TotalExpenses = %s, want 0", b.TotalExpenses)
		}
		if len(b.Shares) != 0 {
			t.Errorf("Shares has %d entries, want 0", len(b.Shares))
		}
	}
}

func TestBreakdownIndependentRounding(t *testing.T) {
	// Three equal thirds each round to 33.3333; the sum is 99.9999, not 100.
	txs := []domain.Transaction{
		tx(domain.TransactionExpense, "1", "Healthcare"),
		tx(domain.TransactionExpense, "1", "Utilities"),
		tx(domain.TransactionExpense, "1", "Transportation"),
	}

	b := Breakdown(txs)

	sum := dec("0")
	for _, s := range b.Shares {
		if !s.Percent.Equal(dec("33.3333")) {
			t.Errorf("Percent(%s) = %s, want 33.3333", s.Category, s.Percent)
		}
		sum = sum.Add(s.Percent)
	}
	if !sum.Equal(dec("99.9999")) {
		t.Errorf("sum of shares = %s, want 99.9999", sum)
	}
}

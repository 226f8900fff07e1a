package recommend

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

func metrics(savingsRate, expenseRatio, netCashFlow string) domain.FinancialMetrics {
	return domain.FinancialMetrics{
		SavingsRate:          decimal.RequireFromString(savingsRate),
		ExpenseToIncomeRatio: decimal.RequireFromString(expenseRatio),
		NetCashFlow:          decimal.RequireFromString(netCashFlow),
	}
}

func TestGenerate(t *testing.T) {
	s := NewSelector()

	tests := []struct {
		name    string
		metrics domain.FinancialMetrics
		want    int    // expected pool size (buckets of five)
		first   string // first message, pins bucket order
	}{
		{
			name:    "healthy saver",
			metrics: metrics("60.0000", "40.0000", "3000"),
			want:    5, // high savings only
			first:   highSavingsRate[0],
		},
		{
			name:    "low savings high expenses negative flow",
			metrics: metrics("5.0000", "95.0000", "-200"),
			want:    15,
			first:   lowSavingsRate[0],
		},
		{
			name:    "moderate savings moderate expenses",
			metrics: metrics("15.0000", "75.0000", "500"),
			want:    10,
			first:   moderateSavingsRate[0],
		},
		{
			name:    "boundary savings rate 10 is moderate",
			metrics: metrics("10.0000", "40.0000", "100"),
			want:    5,
			first:   moderateSavingsRate[0],
		},
		{
			name:    "boundary expense ratio 90 is moderate",
			metrics: metrics("25.0000", "90.0000", "100"),
			want:    10,
			first:   highSavingsRate[0],
		},
		{
			name:    "boundary expense ratio 70 adds nothing",
			metrics: metrics("25.0000", "70.0000", "100"),
			want:    5,
			first:   highSavingsRate[0],
		},
		{
			name:    "zero-income month",
			metrics: metrics("0", "0", "-1000"),
			want:    10, // low savings + negative cash flow
			first:   lowSavingsRate[0],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Generate(tt.metrics)
			if len(got) != tt.want {
				t.Fatalf("Generate returned %d messages, want %d", len(got), tt.want)
			}
			if got[0] != tt.first {
				t.Errorf("Generate first message = %q, want %q", got[0], tt.first)
			}
		})
	}
}

func TestGenerateBucketOrder(t *testing.T) {
	s := NewSelector()
	got := s.Generate(metrics("5.0000", "95.0000", "-200"))

	// Fixed order: savings, expense ratio, cash flow.
	if got[0] != lowSavingsRate[0] || got[5] != highExpenseRatio[0] || got[10] != negativeCashFlow[0] {
		t.Errorf("buckets out of order: boundaries are %q / %q / %q", got[0], got[5], got[10])
	}
}

func TestPickIsMemberOfGenerate(t *testing.T) {
	m := metrics("5.0000", "95.0000", "-200")

	// Walk every index with a deterministic source: each pick must be a
	// member of the generated pool.
	pool := NewSelector().Generate(m)
	for i := range pool {
		s := NewSelectorWithRand(func(n int) int { return i % n })
		got := s.Pick(m)
		if !slices.Contains(pool, got) {
			t.Fatalf("Pick returned %q, not a member of the generated pool", got)
		}
	}
}

func TestPickFallback(t *testing.T) {
	// The savings bucket always contributes, so an empty pool cannot happen
	// with the current rules. Exercise the fallback path directly.
	s := NewSelectorWithRand(func(n int) int {
		t.Fatalf("random source used for an empty pool")
		return 0
	})
	if got := s.pickFrom(nil); got != Fallback {
		t.Errorf("pickFrom(nil) = %q, want fallback", got)
	}
}

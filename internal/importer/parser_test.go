package importer

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

const sampleStatement = `CCY,Date,Details,Deposit,Withdrawal,Balance
HKD,1 Jan,B/F BALANCE,,,"5,000.00"
HKD,2 Jan,SALARY PAYMENT,"20,000.00",,"25,000.00"
HKD,3 Jan,SUPERMARKET,,450.50,"24,549.50"
USD,5 Jan,ONLINE SUBSCRIPTION,,12.99,"24,448.56"

HKD,31 Jan,C/F BALANCE,,,"24,448.56"
Transaction Summary,,,,,
`

func TestParseStatement(t *testing.T) {
	parsed, err := ParseStatement(strings.NewReader(sampleStatement), 2025)
	if err != nil {
		t.Fatalf("ParseStatement failed: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("parsed %d transactions, want 3", len(parsed))
	}

	salary := parsed[0]
	if salary.Transaction.Type != domain.TransactionIncome {
		t.Errorf("deposit row type = %s, want INCOME", salary.Transaction.Type)
	}
	if !salary.Transaction.Amount.Equal(decimal.RequireFromString("20000.00")) {
		t.Errorf("deposit amount = %s, want 20000.00", salary.Transaction.Amount)
	}
	if salary.Transaction.Date != (civil.Date{Year: 2025, Month: 1, Day: 2}) {
		t.Errorf("deposit date = %v, want 2025-01-02", salary.Transaction.Date)
	}
	if salary.Transaction.Category != domain.ImportReviewCategory {
		t.Errorf("category = %q, want %q", salary.Transaction.Category, domain.ImportReviewCategory)
	}
	if salary.Transaction.Notes != "Original currency: HKD" {
		t.Errorf("notes = %q", salary.Transaction.Notes)
	}

	grocery := parsed[1]
	if grocery.Transaction.Type != domain.TransactionExpense {
		t.Errorf("withdrawal row type = %s, want EXPENSE", grocery.Transaction.Type)
	}
	if !grocery.Transaction.Amount.Equal(decimal.RequireFromString("450.50")) {
		t.Errorf("withdrawal amount = %s, want 450.50", grocery.Transaction.Amount)
	}

	if parsed[2].Currency != "USD" {
		t.Errorf("third row currency = %q, want USD", parsed[2].Currency)
	}
}

func TestParseStatementSkipRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"header only", "CCY,Date,Details,Deposit,Withdrawal,Balance\n", 0},
		{"balance rows only", "HKD,1 Jan,B/F BALANCE,,,100\nHKD,31 Jan,C/F BALANCE,,,100\n", 0},
		{"summary row", "Transaction Summary,,,,,\n", 0},
		{"short row ignored", "HKD,2 Jan,PARTIAL\nHKD,3 Jan,SHOP,,10.00,90.00\n", 1},
		{"neither column has money", "HKD,2 Jan,NOTE ROW,,,100.00\n", 0},
		{"blank lines", "\n\nHKD,2 Jan,SHOP,,10.00,90.00\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseStatement(strings.NewReader(tt.input), 2025)
			if err != nil {
				t.Fatalf("ParseStatement failed: %v", err)
			}
			if len(parsed) != tt.want {
				t.Errorf("parsed %d transactions, want %d", len(parsed), tt.want)
			}
		})
	}
}

func TestParseStatementBadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad date", "HKD,32 Jan,SHOP,,10.00,90.00\n"},
		{"leap day in non-leap year", "HKD,29 Feb,SHOP,,10.00,90.00\n"},
		{"bad amount", "HKD,2 Jan,SHOP,,ten,90.00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseStatement(strings.NewReader(tt.input), 2025); err == nil {
				t.Error("ParseStatement succeeded, want error")
			}
		})
	}
}

func TestParseStatementDate(t *testing.T) {
	d, err := parseStatementDate(" 17 Mar ", 2024)
	if err != nil {
		t.Fatalf("parseStatementDate failed: %v", err)
	}
	if d != (civil.Date{Year: 2024, Month: 3, Day: 17}) {
		t.Errorf("date = %v, want 2024-03-17", d)
	}
}

func TestParseStatementDateLeapDay(t *testing.T) {
	d, err := parseStatementDate("29 Feb", 2024)
	if err != nil {
		t.Fatalf("parseStatementDate failed for leap year: %v", err)
	}
	if d != (civil.Date{Year: 2024, Month: 2, Day: 29}) {
		t.Errorf("date = %v, want 2024-02-29", d)
	}

	if _, err := parseStatementDate("29 Feb", 2025); err == nil {
		t.Error("parseStatementDate accepted 29 Feb in a non-leap year")
	}
}

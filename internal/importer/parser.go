package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// statement CSV column layout: CCY, Date, Details, Deposit, Withdrawal, Balance.
const (
	colCurrency = iota
	colDate
	colDetails
	colDeposit
	colWithdrawal
	minFields = 6
)

// ParsedTransaction is one statement row converted to a transaction plus
// the currency the statement reported it in.
type ParsedTransaction struct {
	Transaction domain.Transaction
	Currency    string
}

// skipRow reports whether a statement row is a header, summary, or
// carried-balance line rather than a transaction.
func skipRow(record []string) bool {
	if len(record) == 0 {
		return true
	}
	joined := strings.ToUpper(strings.Join(record, " "))
	if strings.Contains(joined, "B/F BALANCE") || strings.Contains(joined, "C/F BALANCE") {
		return true
	}
	if strings.Contains(joined, "TRANSACTION SUMMARY") {
		return true
	}
	// Header row repeats the column names.
	if len(record) > colDate && strings.TrimSpace(strings.ToUpper(record[colDate])) == "DATE" {
		return true
	}
	empty := true
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			empty = false
			break
		}
	}
	return empty
}

// parseStatementDate parses dates like "2 Jan", attaching the statement year.
func parseStatementDate(raw string, year int) (civil.Date, error) {
	t, err := time.Parse("2 Jan", strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}
	// The reference year of the layout is a leap year, so "29 Feb" parses;
	// re-check against the statement's actual year.
	date := civil.Date{Year: year, Month: t.Month(), Day: t.Day()}
	if !date.IsValid() {
		return civil.Date{}, fmt.Errorf("date %q does not exist in %d", raw, year)
	}
	return date, nil
}

func parseStatementAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	return d, nil
}

// ParseStatement reads a bank statement CSV and returns the transactions it
// contains. Rows that are headers, balance carry-overs, or summaries are
// skipped silently; malformed transaction rows produce an error naming the
// line. Imported transactions land in the review category until a user
// recategorizes them.
func ParseStatement(r io.Reader, year int) ([]ParsedTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []ParsedTransaction
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ParseStatement: line %d: %w", line, err)
		}
		if skipRow(record) {
			continue
		}
		if len(record) < minFields {
			continue
		}

		date, err := parseStatementDate(record[colDate], year)
		if err != nil {
			return nil, fmt.Errorf("ParseStatement: line %d: %w", line, err)
		}
		deposit, err := parseStatementAmount(record[colDeposit])
		if err != nil {
			return nil, fmt.Errorf("ParseStatement: line %d: %w", line, err)
		}
		withdrawal, err := parseStatementAmount(record[colWithdrawal])
		if err != nil {
			return nil, fmt.Errorf("ParseStatement: line %d: %w", line, err)
		}

		var txType domain.TransactionType
		var amount decimal.Decimal
		switch {
		case deposit.IsPositive():
			txType, amount = domain.TransactionIncome, deposit
		case withdrawal.IsPositive():
			txType, amount = domain.TransactionExpense, withdrawal
		default:
			// Neither column carries money; not a transaction row.
			continue
		}

		cur := strings.ToUpper(strings.TrimSpace(record[colCurrency]))
		out = append(out, ParsedTransaction{
			Transaction: domain.Transaction{
				Description: strings.TrimSpace(record[colDetails]),
				Amount:      amount,
				Type:        txType,
				Category:    domain.ImportReviewCategory,
				Date:        date,
				Notes:       fmt.Sprintf("Original currency: %s", cur),
			},
			Currency: cur,
		})
	}

	return out, nil
}

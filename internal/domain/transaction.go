package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// ParseTransactionType parses the stored string form of a transaction type.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TransactionIncome, TransactionExpense:
		return t, nil
	default:
		return "", fmt.Errorf("ParseTransactionType: %w: unknown transaction type %q", ErrValidation, s)
	}
}

// Transaction is one income or expense event against an account. The amount
// is always positive; the type carries the direction, and the currency is the
// owning account's. Immutable once persisted, except for category relabeling
// during import review (which happens before the insert).
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	AccountID   int64           `json:"account_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Date        civil.Date      `json:"date"`
	Notes       string          `json:"notes,omitempty"`
}

// Validate checks the invariants a transaction must satisfy before it is
// applied to an account.
func (t *Transaction) Validate() error {
	if t.AccountID == 0 {
		return fmt.Errorf("Transaction.Validate: %w: account id is required", ErrValidation)
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("Transaction.Validate: %w: amount must be positive, got %s", ErrValidation, t.Amount)
	}
	if !t.Date.IsValid() {
		return fmt.Errorf("Transaction.Validate: %w: date is required", ErrValidation)
	}
	return nil
}

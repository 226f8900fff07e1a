package domain

import (
	"fmt"
	"time"
)

// AccountType categorizes an account.
type AccountType string

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountCreditCard AccountType = "CREDIT_CARD"
	AccountInvestment AccountType = "INVESTMENT"
	AccountCash       AccountType = "CASH"
)

var validAccountTypes = map[AccountType]bool{
	AccountChecking:   true,
	AccountSavings:    true,
	AccountCreditCard: true,
	AccountInvestment: true,
	AccountCash:       true,
}

// ValidAccountType returns true if t is a known account type.
func ValidAccountType(t AccountType) bool {
	return validAccountTypes[t]
}

// ParseAccountType parses the stored string form of an account type.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !validAccountTypes[t] {
		return "", fmt.Errorf("ParseAccountType: %w: unknown account type %q", ErrValidation, s)
	}
	return t, nil
}

// Account is a user-owned balance container. The balance is mutated only by
// applying transactions, never edited directly by an aggregation.
type Account struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   Money       `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
}

package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// NUMERIC columns carry nine fractional digits.
const numericScale = 9

type AccountRow struct {
	AccountID   int64     `bigquery:"account_id"`   // REQUIRED
	UserID      int64     `bigquery:"user_id"`      // REQUIRED
	AccountName string    `bigquery:"account_name"` // REQUIRED
	AccountType string    `bigquery:"account_type"` // REQUIRED
	Balance     *big.Rat  `bigquery:"balance"`      // REQUIRED NUMERIC
	Currency    string    `bigquery:"currency"`     // REQUIRED
	CreatedTS   time.Time `bigquery:"created_ts"`   // REQUIRED
}

func accountToRow(account *domain.Account) *AccountRow {
	return &AccountRow{
		AccountID:   account.ID,
		UserID:      account.UserID,
		AccountName: account.Name,
		AccountType: string(account.Type),
		Balance:     account.Balance.Amount.Rat(),
		Currency:    account.Balance.Currency,
		CreatedTS:   account.CreatedAt,
	}
}

func (r *AccountRow) toDomain() (*domain.Account, error) {
	accountType, err := domain.ParseAccountType(r.AccountType)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", r.AccountID, err)
	}
	return &domain.Account{
		ID:     r.AccountID,
		UserID: r.UserID,
		Name:   r.AccountName,
		Type:   accountType,
		Balance: domain.Money{
			Amount:   decimal.NewFromBigRat(r.Balance, numericScale),
			Currency: r.Currency,
		},
		CreatedAt: r.CreatedTS,
	}, nil
}

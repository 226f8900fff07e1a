package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

type TransactionRow struct {
	TransactionID int64 `bigquery:"transaction_id"` // REQUIRED
	UserID        int64 `bigquery:"user_id"`        // REQUIRED
	AccountID     int64 `bigquery:"account_id"`     // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Description     string     `bigquery:"description"`      // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC
	TransactionType string     `bigquery:"transaction_type"` // REQUIRED
	CategoryName    string     `bigquery:"category_name"`    // REQUIRED
	Notes           string     `bigquery:"notes"`            // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

func transactionToRow(tx *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		UserID:          tx.UserID,
		AccountID:       tx.AccountID,
		TransactionDate: tx.Date,
		Description:     tx.Description,
		Amount:          tx.Amount.Rat(),
		TransactionType: string(tx.Type),
		CategoryName:    tx.Category,
		Notes:           tx.Notes,
		CreatedTS:       time.Now().UTC(),
	}
}

func (r *TransactionRow) toDomain() (*domain.Transaction, error) {
	txType, err := domain.ParseTransactionType(r.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", r.TransactionID, err)
	}
	return &domain.Transaction{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		AccountID:   r.AccountID,
		Description: r.Description,
		Amount:      decimal.NewFromBigRat(r.Amount, numericScale),
		Type:        txType,
		Category:    r.CategoryName,
		Date:        r.TransactionDate,
		Notes:       r.Notes,
	}, nil
}

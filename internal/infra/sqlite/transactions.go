package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

// TransactionStore persists transactions in SQLite. It also implements the
// atomic balance-plus-insert write the ledger service prefers.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func scanTransaction(rows interface{ Scan(...any) error }) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		dateStr   string
		amountStr string
		typeStr   string
	)
	if err := rows.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &dateStr, &tx.Description,
		&amountStr, &typeStr, &tx.Category, &tx.Notes); err != nil {
		return nil, err
	}

	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: parsing date %q: %w", tx.ID, dateStr, err)
	}
	tx.Date = date

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: parsing amount %q: %w", tx.ID, amountStr, err)
	}
	tx.Amount = amount

	txType, err := domain.ParseTransactionType(typeStr)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}
	tx.Type = txType
	return &tx, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, tx *domain.Transaction) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, account_id, txn_date, description, amount, txn_type, category, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.AccountID, tx.Date.String(), tx.Description,
		tx.Amount.String(), string(tx.Type), tx.Category, tx.Notes,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Insert persists a new transaction and returns its id.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) (int64, error) {
	id, err := insertTransaction(ctx, s.db, tx)
	if err != nil {
		return 0, fmt.Errorf("TransactionStore.Insert: %w", err)
	}
	return id, nil
}

// ApplyTransaction writes the new account balance and inserts the
// transaction in a single database transaction.
func (s *TransactionStore) ApplyTransaction(ctx context.Context, accountID int64, newBalance domain.Money, tx *domain.Transaction) (int64, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("TransactionStore.ApplyTransaction: begin: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, currency = ? WHERE id = ?`,
		newBalance.Amount.String(), newBalance.Currency, accountID); err != nil {
		return 0, fmt.Errorf("TransactionStore.ApplyTransaction: updating balance: %w", err)
	}

	id, err := insertTransaction(ctx, dbTx, tx)
	if err != nil {
		return 0, fmt.Errorf("TransactionStore.ApplyTransaction: inserting: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("TransactionStore.ApplyTransaction: commit: %w", err)
	}
	return id, nil
}

const selectTransaction = `
	SELECT id, user_id, account_id, txn_date, description, amount, txn_type, category, notes
	FROM transactions`

func (s *TransactionStore) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// FindByAccount returns the account's transactions, newest date first.
func (s *TransactionStore) FindByAccount(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	txs, err := s.queryTransactions(ctx,
		selectTransaction+` WHERE account_id = ? ORDER BY txn_date DESC, id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("TransactionStore.FindByAccount: %w", err)
	}
	return txs, nil
}

// FindByDateRange returns the user's transactions dated within [start, end]
// inclusive, in date order.
func (s *TransactionStore) FindByDateRange(ctx context.Context, userID int64, start, end civil.Date) ([]*domain.Transaction, error) {
	txs, err := s.queryTransactions(ctx,
		selectTransaction+` WHERE user_id = ? AND txn_date >= ? AND txn_date <= ? ORDER BY txn_date, id`,
		userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("TransactionStore.FindByDateRange: %w", err)
	}
	return txs, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/domain"
)

const timeFormat = "2006-01-02 15:04:05"

// AccountStore persists accounts in SQLite.
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var (
		account    domain.Account
		typeStr    string
		balanceStr string
		currency   string
		createdAt  string
	)
	if err := row.Scan(&account.ID, &account.UserID, &account.Name, &typeStr, &balanceStr, &currency, &createdAt); err != nil {
		return nil, err
	}

	accountType, err := domain.ParseAccountType(typeStr)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", account.ID, err)
	}
	account.Type = accountType

	amount, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("account %d: parsing balance %q: %w", account.ID, balanceStr, err)
	}
	account.Balance = domain.Money{Amount: amount, Currency: currency}

	if t, err := time.Parse(timeFormat, createdAt); err == nil {
		account.CreatedAt = t
	}
	return &account, nil
}

// Insert persists a new account and returns its id.
func (s *AccountStore) Insert(ctx context.Context, account *domain.Account) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, name, account_type, balance, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		account.UserID, account.Name, string(account.Type),
		account.Balance.Amount.String(), account.Balance.Currency,
		account.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("AccountStore.Insert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("AccountStore.Insert: last insert id: %w", err)
	}
	return id, nil
}

// FindByID returns the account, or nil when it does not exist.
func (s *AccountStore) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, account_type, balance, currency, created_at
		FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("AccountStore.FindByID: %w", err)
	}
	return account, nil
}

// FindByUser returns all accounts owned by the user.
func (s *AccountStore) FindByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, account_type, balance, currency, created_at
		FROM accounts WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("AccountStore.FindByUser: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("AccountStore.FindByUser: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpdateBalance overwrites the stored balance of an account.
func (s *AccountStore) UpdateBalance(ctx context.Context, id int64, balance domain.Money) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, currency = ? WHERE id = ?`,
		balance.Amount.String(), balance.Currency, id)
	if err != nil {
		return fmt.Errorf("AccountStore.UpdateBalance: %w", err)
	}
	return nil
}

package ledger

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/moneyapps/ledger/internal/domain"
)

// AccountStore is the persistence contract for accounts.
type AccountStore interface {
	// Insert persists a new account and returns its id.
	Insert(ctx context.Context, account *domain.Account) (int64, error)

	// FindByID returns the account, or nil when it does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Account, error)

	// FindByUser returns all accounts owned by the user.
	FindByUser(ctx context.Context, userID int64) ([]*domain.Account, error)

	// UpdateBalance overwrites the stored balance of an account.
	UpdateBalance(ctx context.Context, id int64, balance domain.Money) error
}

// TransactionStore is the persistence contract for transactions.
type TransactionStore interface {
	// Insert persists a new transaction and returns its id.
	Insert(ctx context.Context, tx *domain.Transaction) (int64, error)

	// FindByAccount returns the account's transactions, newest date first.
	FindByAccount(ctx context.Context, accountID int64) ([]*domain.Transaction, error)

	// FindByDateRange returns the user's transactions dated within
	// [start, end] inclusive, in date order.
	FindByDateRange(ctx context.Context, userID int64, start, end civil.Date) ([]*domain.Transaction, error)
}

// AtomicApplier is an optional store capability: apply a balance update and a
// transaction insert as one atomic write. Stores that implement it (the
// SQLite store does) free the service from its compensating-write fallback.
type AtomicApplier interface {
	// ApplyTransaction atomically writes the new balance and inserts the
	// transaction, returning the transaction id.
	ApplyTransaction(ctx context.Context, accountID int64, newBalance domain.Money, tx *domain.Transaction) (int64, error)
}

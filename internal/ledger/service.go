// Package ledger orchestrates accounts, transactions, currency conversion
// and the derived reports behind one service type.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/domain"
	"github.com/moneyapps/ledger/internal/recommend"
	"github.com/moneyapps/ledger/internal/report"
)

// Service exposes the ledger operations. Every aggregation is scoped to a
// user id; there is no global, cross-tenant view.
type Service struct {
	accounts  AccountStore
	txs       TransactionStore
	converter *currency.Converter
	selector  *recommend.Selector
	log       zerolog.Logger

	// mu guards the per-account lock table; each account's writes are
	// serialized to prevent lost balance updates.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService wires the service with its stores and collaborators.
func NewService(accounts AccountStore, txs TransactionStore, converter *currency.Converter, log zerolog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		txs:       txs,
		converter: converter,
		selector:  recommend.NewSelector(),
		log:       log,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Converter exposes the rate table for the rate endpoints and CLI commands.
func (s *Service) Converter() *currency.Converter { return s.converter }

func (s *Service) accountLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateAccount validates and persists a new account.
func (s *Service) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.UserID == 0 {
		return nil, fmt.Errorf("CreateAccount: %w: user id is required", domain.ErrValidation)
	}
	if account.Name == "" {
		return nil, fmt.Errorf("CreateAccount: %w: name is required", domain.ErrValidation)
	}
	if !domain.ValidAccountType(account.Type) {
		return nil, fmt.Errorf("CreateAccount: %w: unknown account type %q", domain.ErrValidation, account.Type)
	}
	if _, err := domain.NewMoney(account.Balance.Amount, account.Balance.Currency); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	id, err := s.accounts.Insert(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: inserting account: %w", err)
	}
	account.ID = id

	s.log.Info().Int64("account_id", id).Int64("user_id", account.UserID).
		Str("type", string(account.Type)).Msg("Account created")
	return account, nil
}

// Account returns one account by id.
func (s *Service) Account(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Account: finding account %d: %w", id, err)
	}
	if account == nil {
		return nil, fmt.Errorf("Account: account %d: %w", id, domain.ErrAccountNotFound)
	}
	return account, nil
}

// AccountsByUser returns all of a user's accounts.
func (s *Service) AccountsByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	accounts, err := s.accounts.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("AccountsByUser: finding accounts for user %d: %w", userID, err)
	}
	return accounts, nil
}

// AccountTransactions returns an account's transactions, newest date first.
func (s *Service) AccountTransactions(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	txs, err := s.txs.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("AccountTransactions: finding transactions for account %d: %w", accountID, err)
	}
	return txs, nil
}

// ApplyTransaction applies a transaction to its account: the balance moves up
// for income, down for expenses, and the transaction record is persisted.
//
// Writers against the same account are serialized. When the transaction
// store also implements AtomicApplier both writes happen in one storage
// transaction; otherwise the balance is written first and restored on a
// failed insert.
func (s *Service) ApplyTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Account, error) {
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("ApplyTransaction: %w", err)
	}

	lock := s.accountLock(tx.AccountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.accounts.FindByID(ctx, tx.AccountID)
	if err != nil {
		return nil, fmt.Errorf("ApplyTransaction: finding account %d: %w", tx.AccountID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("ApplyTransaction: account %d: %w", tx.AccountID, domain.ErrAccountNotFound)
	}
	if tx.UserID == 0 {
		tx.UserID = account.UserID
	}

	delta := tx.Amount
	if tx.Type == domain.TransactionExpense {
		delta = delta.Neg()
	}
	oldBalance := account.Balance
	newBalance := domain.Money{Amount: oldBalance.Amount.Add(delta), Currency: oldBalance.Currency}

	if atomic, ok := s.txs.(AtomicApplier); ok {
		id, err := atomic.ApplyTransaction(ctx, account.ID, newBalance, tx)
		if err != nil {
			return nil, fmt.Errorf("ApplyTransaction: atomic apply on account %d: %w", account.ID, err)
		}
		tx.ID = id
		account.Balance = newBalance
		return account, nil
	}

	if err := s.accounts.UpdateBalance(ctx, account.ID, newBalance); err != nil {
		return nil, fmt.Errorf("ApplyTransaction: updating balance of account %d: %w", account.ID, err)
	}

	id, err := s.txs.Insert(ctx, tx)
	if err != nil {
		// Compensate: put the old balance back so the ledger and the
		// balance do not diverge. A failure here is logged and reported.
		if restoreErr := s.accounts.UpdateBalance(ctx, account.ID, oldBalance); restoreErr != nil {
			s.log.Error().Err(restoreErr).Int64("account_id", account.ID).
				Msg("Failed to restore balance after insert failure")
			return nil, fmt.Errorf("ApplyTransaction: inserting transaction: %w (balance restore also failed: %v)", err, restoreErr)
		}
		return nil, fmt.Errorf("ApplyTransaction: inserting transaction: %w", err)
	}

	tx.ID = id
	account.Balance = newBalance
	return account, nil
}

// NetWorth sums the user's account balances converted to the target
// currency. A user without accounts has a zero net worth.
func (s *Service) NetWorth(ctx context.Context, userID int64, targetCurrency string) (domain.Money, error) {
	accounts, err := s.accounts.FindByUser(ctx, userID)
	if err != nil {
		return domain.Money{}, fmt.Errorf("NetWorth: finding accounts for user %d: %w", userID, err)
	}

	total := decimal.Zero
	for _, account := range accounts {
		converted, err := s.converter.Convert(account.Balance.Amount, account.Balance.Currency, targetCurrency)
		if err != nil {
			return domain.Money{}, fmt.Errorf("NetWorth: converting account %d balance: %w", account.ID, err)
		}
		total = total.Add(converted)
	}

	return domain.Money{Amount: total, Currency: targetCurrency}, nil
}

// monthRange returns the first and last calendar day of a month.
func monthRange(year int, month time.Month) (civil.Date, civil.Date) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return civil.DateOf(first), civil.DateOf(last)
}

// MonthlyMetrics computes the user's financial metrics for one calendar
// month, inclusive of its first and last day.
func (s *Service) MonthlyMetrics(ctx context.Context, userID int64, year int, month time.Month) (domain.FinancialMetrics, error) {
	start, end := monthRange(year, month)
	txs, err := s.txs.FindByDateRange(ctx, userID, start, end)
	if err != nil {
		return domain.FinancialMetrics{}, fmt.Errorf("MonthlyMetrics: finding transactions for user %d: %w", userID, err)
	}

	flat := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		flat = append(flat, *tx)
	}
	return report.Metrics(flat), nil
}

// CategoryBreakdown computes the user's expense-category percentages for one
// calendar month. A non-zero accountID restricts it to that account.
func (s *Service) CategoryBreakdown(ctx context.Context, userID int64, year int, month time.Month, accountID int64) (domain.ExpenseCategoryBreakdown, error) {
	start, end := monthRange(year, month)
	txs, err := s.txs.FindByDateRange(ctx, userID, start, end)
	if err != nil {
		return domain.ExpenseCategoryBreakdown{}, fmt.Errorf("CategoryBreakdown: finding transactions for user %d: %w", userID, err)
	}

	flat := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if accountID != 0 && tx.AccountID != accountID {
			continue
		}
		flat = append(flat, *tx)
	}
	return report.Breakdown(flat), nil
}

// Recommendation computes the month's metrics and picks one recommendation.
func (s *Service) Recommendation(ctx context.Context, userID int64, year int, month time.Month) (string, error) {
	metrics, err := s.MonthlyMetrics(ctx, userID, year, month)
	if err != nil {
		return "", fmt.Errorf("Recommendation: %w", err)
	}
	return s.selector.Pick(metrics), nil
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// mockAccountStore is an in-memory AccountStore for testing.
type mockAccountStore struct {
	accounts map[int64]*domain.Account
	nextID   int64

	updateBalanceErr error
	balanceWrites    []domain.Money
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[int64]*domain.Account), nextID: 1}
}

func (m *mockAccountStore) Insert(ctx context.Context, account *domain.Account) (int64, error) {
	id := m.nextID
	m.nextID++
	cp := *account
	cp.ID = id
	m.accounts[id] = &cp
	return id, nil
}

func (m *mockAccountStore) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

func (m *mockAccountStore) FindByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	var out []*domain.Account
	for id := int64(1); id < m.nextID; id++ {
		if account, ok := m.accounts[id]; ok && account.UserID == userID {
			cp := *account
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockAccountStore) UpdateBalance(ctx context.Context, id int64, balance domain.Money) error {
	if m.updateBalanceErr != nil {
		return m.updateBalanceErr
	}
	account, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account %d not in store", id)
	}
	account.Balance = balance
	m.balanceWrites = append(m.balanceWrites, balance)
	return nil
}

// mockTransactionStore is an in-memory TransactionStore for testing.
type mockTransactionStore struct {
	txs       []*domain.Transaction
	nextID    int64
	insertErr error
}

func newMockTransactionStore() *mockTransactionStore {
	return &mockTransactionStore{nextID: 1}
}

func (m *mockTransactionStore) Insert(ctx context.Context, tx *domain.Transaction) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	id := m.nextID
	m.nextID++
	cp := *tx
	cp.ID = id
	m.txs = append(m.txs, &cp)
	return id, nil
}

func (m *mockTransactionStore) FindByAccount(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tx := range m.txs {
		if tx.AccountID == accountID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTransactionStore) FindByDateRange(ctx context.Context, userID int64, start, end civil.Date) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tx := range m.txs {
		if tx.UserID != userID {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	return out, nil
}

func newTestService(accounts *mockAccountStore, txs TransactionStore) *Service {
	return NewService(accounts, txs, currency.NewConverter(), zerolog.Nop())
}

func seedAccount(t *testing.T, accounts *mockAccountStore, userID int64, balance, cur string) int64 {
	t.Helper()
	id, err := accounts.Insert(context.Background(), &domain.Account{
		UserID:    userID,
		Name:      "test account",
		Type:      domain.AccountChecking,
		Balance:   domain.Money{Amount: dec(balance), Currency: cur},
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seeding account: %v", err)
	}
	return id
}

func TestApplyTransaction(t *testing.T) {
	accounts := newMockAccountStore()
	txs := newMockTransactionStore()
	svc := newTestService(accounts, txs)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, 1, "1000", "USD")

	// Income of 500 raises the balance to 1500.
	account, err := svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:      1,
		AccountID:   accountID,
		Description: "paycheck",
		Amount:      dec("500"),
		Type:        domain.TransactionIncome,
		Category:    "Salary",
		Date:        civil.Date{Year: 2025, Month: 6, Day: 1},
	})
	if err != nil {
		t.Fatalf("ApplyTransaction income failed: %v", err)
	}
	if !account.Balance.Amount.Equal(dec("1500")) {
		t.Errorf("balance after income = %s, want 1500", account.Balance.Amount)
	}

	// Expense of 200 lowers it to 1300.
	account, err = svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:      1,
		AccountID:   accountID,
		Description: "groceries",
		Amount:      dec("200"),
		Type:        domain.TransactionExpense,
		Category:    "Shopping & Groceries",
		Date:        civil.Date{Year: 2025, Month: 6, Day: 2},
	})
	if err != nil {
		t.Fatalf("ApplyTransaction expense failed: %v", err)
	}
	if !account.Balance.Amount.Equal(dec("1300")) {
		t.Errorf("balance after expense = %s, want 1300", account.Balance.Amount)
	}

	if len(txs.txs) != 2 {
		t.Errorf("stored %d transactions, want 2", len(txs.txs))
	}

	// Net worth over this single account.
	worth, err := svc.NetWorth(ctx, 1, "USD")
	if err != nil {
		t.Fatalf("NetWorth failed: %v", err)
	}
	if !worth.Amount.Equal(dec("1300")) {
		t.Errorf("NetWorth = %s, want 1300", worth.Amount)
	}
}

func TestApplyTransactionAccountNotFound(t *testing.T) {
	svc := newTestService(newMockAccountStore(), newMockTransactionStore())

	_, err := svc.ApplyTransaction(context.Background(), &domain.Transaction{
		UserID:    1,
		AccountID: 42,
		Amount:    dec("10"),
		Type:      domain.TransactionExpense,
		Category:  "Other",
		Date:      civil.Date{Year: 2025, Month: 6, Day: 1},
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("ApplyTransaction error = %v, want ErrAccountNotFound", err)
	}
}

// mockAtomicTxStore is a TransactionStore that also offers the atomic
// balance-plus-insert write, like the SQLite store.
type mockAtomicTxStore struct {
	*mockTransactionStore
	accounts *mockAccountStore

	atomicCalls int
	atomicErr   error
}

func (m *mockAtomicTxStore) ApplyTransaction(ctx context.Context, accountID int64, newBalance domain.Money, tx *domain.Transaction) (int64, error) {
	m.atomicCalls++
	if m.atomicErr != nil {
		return 0, m.atomicErr
	}
	account, ok := m.accounts.accounts[accountID]
	if !ok {
		return 0, fmt.Errorf("account %d not in store", accountID)
	}
	account.Balance = newBalance
	return m.mockTransactionStore.Insert(ctx, tx)
}

func TestApplyTransactionUsesAtomicStore(t *testing.T) {
	accounts := newMockAccountStore()
	txs := &mockAtomicTxStore{mockTransactionStore: newMockTransactionStore(), accounts: accounts}
	svc := newTestService(accounts, txs)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, 1, "1000", "USD")

	account, err := svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:    1,
		AccountID: accountID,
		Amount:    dec("500"),
		Type:      domain.TransactionIncome,
		Category:  "Salary",
		Date:      civil.Date{Year: 2025, Month: 6, Day: 1},
	})
	if err != nil {
		t.Fatalf("ApplyTransaction: %v", err)
	}

	if txs.atomicCalls != 1 {
		t.Errorf("atomic applies = %d, want 1", txs.atomicCalls)
	}
	// The single atomic write replaces the balance-then-insert sequence.
	if len(accounts.balanceWrites) != 0 {
		t.Errorf("separate balance writes = %d, want 0", len(accounts.balanceWrites))
	}
	if !account.Balance.Amount.Equal(dec("1500")) {
		t.Errorf("balance = %s, want 1500", account.Balance.Amount)
	}
}

func TestApplyTransactionAtomicFailureLeavesBalance(t *testing.T) {
	accounts := newMockAccountStore()
	txs := &mockAtomicTxStore{mockTransactionStore: newMockTransactionStore(), accounts: accounts}
	txs.atomicErr = errors.New("store unavailable")
	svc := newTestService(accounts, txs)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, 1, "1000", "USD")

	_, err := svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:    1,
		AccountID: accountID,
		Amount:    dec("200"),
		Type:      domain.TransactionExpense,
		Category:  "Utilities",
		Date:      civil.Date{Year: 2025, Month: 6, Day: 2},
	})
	if err == nil {
		t.Fatal("ApplyTransaction succeeded, want atomic apply failure")
	}

	account, _ := accounts.FindByID(ctx, accountID)
	if !account.Balance.Amount.Equal(dec("1000")) {
		t.Errorf("balance after failed atomic apply = %s, want 1000", account.Balance.Amount)
	}
	if len(accounts.balanceWrites) != 0 {
		t.Errorf("separate balance writes = %d, want 0", len(accounts.balanceWrites))
	}
}

func TestApplyTransactionRestoresBalanceOnInsertFailure(t *testing.T) {
	accounts := newMockAccountStore()
	txs := newMockTransactionStore()
	txs.insertErr = errors.New("store unavailable")
	svc := newTestService(accounts, txs)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, 1, "1000", "USD")

	_, err := svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:    1,
		AccountID: accountID,
		Amount:    dec("500"),
		Type:      domain.TransactionIncome,
		Category:  "Salary",
		Date:      civil.Date{Year: 2025, Month: 6, Day: 1},
	})
	if err == nil {
		t.Fatal("ApplyTransaction succeeded, want insert failure")
	}

	account, _ := accounts.FindByID(ctx, accountID)
	if !account.Balance.Amount.Equal(dec("1000")) {
		t.Errorf("balance after failed insert = %s, want 1000 (restored)", account.Balance.Amount)
	}
	// Two writes: the optimistic update and the compensating restore.
	if len(accounts.balanceWrites) != 2 {
		t.Errorf("balance writes = %d, want 2", len(accounts.balanceWrites))
	}
}

func TestNetWorthAcrossCurrencies(t *testing.T) {
	accounts := newMockAccountStore()
	svc := newTestService(accounts, newMockTransactionStore())
	ctx := context.Background()

	seedAccount(t, accounts, 1, "1000", "USD")
	seedAccount(t, accounts, 1, "7770", "HKD")
	seedAccount(t, accounts, 2, "99999", "USD") // other user, excluded

	worth, err := svc.NetWorth(ctx, 1, "USD")
	if err != nil {
		t.Fatalf("NetWorth failed: %v", err)
	}
	// 1000 USD + 7770 HKD at 7.77 HKD/USD = 2000.00 USD.
	if !worth.Amount.Equal(dec("2000.00")) {
		t.Errorf("NetWorth = %s, want 2000.00", worth.Amount)
	}
	if worth.Currency != "USD" {
		t.Errorf("NetWorth currency = %s, want USD", worth.Currency)
	}
}

func TestNetWorthNoAccounts(t *testing.T) {
	svc := newTestService(newMockAccountStore(), newMockTransactionStore())

	worth, err := svc.NetWorth(context.Background(), 7, "HKD")
	if err != nil {
		t.Fatalf("NetWorth failed: %v", err)
	}
	if !worth.Amount.IsZero() {
		t.Errorf("NetWorth = %s, want 0", worth.Amount)
	}
}

func TestMonthlyMetricsScopesToMonthAndUser(t *testing.T) {
	accounts := newMockAccountStore()
	txs := newMockTransactionStore()
	svc := newTestService(accounts, txs)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, 1, "0", "HKD")
	otherAccount := seedAccount(t, accounts, 2, "0", "HKD")

	seed := []struct {
		userID  int64
		account int64
		amount  string
		typ     domain.TransactionType
		date    civil.Date
	}{
		{1, accountID, "5000", domain.TransactionIncome, civil.Date{Year: 2025, Month: 6, Day: 1}},
		{1, accountID, "2000", domain.TransactionExpense, civil.Date{Year: 2025, Month: 6, Day: 30}},
		{1, accountID, "900", domain.TransactionExpense, civil.Date{Year: 2025, Month: 7, Day: 1}}, // next month
		{1, accountID, "800", domain.TransactionExpense, civil.Date{Year: 2025, Month: 5, Day: 31}}, // prior month
		{2, otherAccount, "100", domain.TransactionExpense, civil.Date{Year: 2025, Month: 6, Day: 15}}, // other user
	}
	for _, s := range seed {
		if _, err := svc.ApplyTransaction(ctx, &domain.Transaction{
			UserID:    s.userID,
			AccountID: s.account,
			Amount:    dec(s.amount),
			Type:      s.typ,
			Category:  "Other",
			Date:      s.date,
		}); err != nil {
			t.Fatalf("seeding transaction: %v", err)
		}
	}

	m, err := svc.MonthlyMetrics(ctx, 1, 2025, time.June)
	if err != nil {
		t.Fatalf("MonthlyMetrics failed: %v", err)
	}
	if !m.TotalIncome.Equal(dec("5000")) || !m.TotalExpenses.Equal(dec("2000")) {
		t.Errorf("metrics = income %s / expenses %s, want 5000 / 2000", m.TotalIncome, m.TotalExpenses)
	}
	if !m.SavingsRate.Equal(dec("60.0000")) {
		t.Errorf("SavingsRate = %s, want 60.0000", m.SavingsRate)
	}
}

func TestCategoryBreakdownByAccount(t *testing.T) {
	accounts := newMockAccountStore()
	txs := newMockTransactionStore()
	svc := newTestService(accounts, txs)
	ctx := context.Background()

	a := seedAccount(t, accounts, 1, "0", "HKD")
	b := seedAccount(t, accounts, 1, "0", "HKD")

	date := civil.Date{Year: 2025, Month: 6, Day: 10}
	for _, s := range []struct {
		account  int64
		amount   string
		category string
	}{
		{a, "300", "Food & Dining"},
		{a, "100", "Transportation"},
		{b, "600", "Entertainment"},
	} {
		if _, err := svc.ApplyTransaction(ctx, &domain.Transaction{
			UserID: 1, AccountID: s.account, Amount: dec(s.amount),
			Type: domain.TransactionExpense, Category: s.category, Date: date,
		}); err != nil {
			t.Fatalf("seeding transaction: %v", err)
		}
	}

	// All accounts.
	all, err := svc.CategoryBreakdown(ctx, 1, 2025, time.June, 0)
	if err != nil {
		t.Fatalf("CategoryBreakdown failed: %v", err)
	}
	if !all.TotalExpenses.Equal(dec("1000")) {
		t.Errorf("TotalExpenses = %s, want 1000", all.TotalExpenses)
	}

	// Restricted to account a: 300/100 split.
	only, err := svc.CategoryBreakdown(ctx, 1, 2025, time.June, a)
	if err != nil {
		t.Fatalf("CategoryBreakdown(account) failed: %v", err)
	}
	if !only.TotalExpenses.Equal(dec("400")) {
		t.Errorf("TotalExpenses = %s, want 400", only.TotalExpenses)
	}
	if p, ok := only.Percent("Food & Dining"); !ok || !p.Equal(dec("75.0000")) {
		t.Errorf("Percent(Food & Dining) = %s, %v; want 75.0000", p, ok)
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		first civil.Date
		last  civil.Date
	}{
		{2025, time.June, civil.Date{Year: 2025, Month: 6, Day: 1}, civil.Date{Year: 2025, Month: 6, Day: 30}},
		{2025, time.February, civil.Date{Year: 2025, Month: 2, Day: 1}, civil.Date{Year: 2025, Month: 2, Day: 28}},
		{2024, time.February, civil.Date{Year: 2024, Month: 2, Day: 1}, civil.Date{Year: 2024, Month: 2, Day: 29}},
		{2025, time.December, civil.Date{Year: 2025, Month: 12, Day: 1}, civil.Date{Year: 2025, Month: 12, Day: 31}},
	}

	for _, tt := range tests {
		first, last := monthRange(tt.year, tt.month)
		if first != tt.first || last != tt.last {
			t.Errorf("monthRange(%d, %s) = %v..%v, want %v..%v", tt.year, tt.month, first, last, tt.first, tt.last)
		}
	}
}

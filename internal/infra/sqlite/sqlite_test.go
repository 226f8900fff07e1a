package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/domain"
	"github.com/moneyapps/ledger/internal/importer"
	"github.com/moneyapps/ledger/internal/ledger"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertTestUser(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	id, err := NewUserStore(db).Insert(context.Background(), &domain.User{
		Username:     "alice",
		BaseCurrency: "HKD",
		CreatedAt:    time.Now(),
	}, auth.PasswordHash{Hash: "h", Salt: "s"})
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	return id
}

func insertTestAccount(t *testing.T, db *sql.DB, userID int64, balance, cur string) int64 {
	t.Helper()
	id, err := NewAccountStore(db).Insert(context.Background(), &domain.Account{
		UserID:    userID,
		Name:      "everyday",
		Type:      domain.AccountChecking,
		Balance:   domain.Money{Amount: decimal.RequireFromString(balance), Currency: cur},
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("inserting account: %v", err)
	}
	return id
}

func TestAccountStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewAccountStore(db)
	userID := insertTestUser(t, db)

	accountID := insertTestAccount(t, db, userID, "1234.56", "USD")

	account, err := store.FindByID(ctx, accountID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if account == nil {
		t.Fatal("FindByID returned nil for existing account")
	}
	if !account.Balance.Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("balance = %s, want 1234.56", account.Balance.Amount)
	}
	if account.Type != domain.AccountChecking {
		t.Errorf("type = %s, want CHECKING", account.Type)
	}

	if missing, err := store.FindByID(ctx, 9999); err != nil || missing != nil {
		t.Errorf("FindByID(9999) = %v, %v; want nil, nil", missing, err)
	}

	newBalance := domain.Money{Amount: decimal.RequireFromString("99.01"), Currency: "USD"}
	if err := store.UpdateBalance(ctx, accountID, newBalance); err != nil {
		t.Fatalf("UpdateBalance failed: %v", err)
	}
	account, _ = store.FindByID(ctx, accountID)
	if !account.Balance.Amount.Equal(decimal.RequireFromString("99.01")) {
		t.Errorf("balance after update = %s, want 99.01", account.Balance.Amount)
	}

	insertTestAccount(t, db, userID, "10", "HKD")
	accounts, err := store.FindByUser(ctx, userID)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("FindByUser returned %d accounts, want 2", len(accounts))
	}
}

func TestUserStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewUserStore(db)

	id, err := store.Insert(ctx, &domain.User{
		Username:     "bob",
		Email:        "bob@example.com",
		BaseCurrency: "USD",
		CreatedAt:    time.Now(),
	}, auth.PasswordHash{Hash: "hash1", Salt: "salt1"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	user, hash, err := store.FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if user == nil || user.ID != id {
		t.Fatalf("FindByUsername returned %+v, want user %d", user, id)
	}
	if hash.Hash != "hash1" || hash.Salt != "salt1" {
		t.Errorf("hash = %+v, want hash1/salt1", hash)
	}

	if u, h, err := store.FindByUsername(ctx, "nobody"); err != nil || u != nil || h != nil {
		t.Errorf("FindByUsername(nobody) = %v, %v, %v; want nils", u, h, err)
	}

	if err := store.UpdatePassword(ctx, id, auth.PasswordHash{Hash: "hash2", Salt: "salt2"}); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	_, hash, _ = store.FindByUsername(ctx, "bob")
	if hash.Hash != "hash2" {
		t.Errorf("hash after update = %s, want hash2", hash.Hash)
	}

	// Usernames are unique.
	if _, err := store.Insert(ctx, &domain.User{Username: "bob", BaseCurrency: "USD"}, auth.PasswordHash{}); err == nil {
		t.Error("duplicate username insert succeeded")
	}
}

func TestTransactionStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewTransactionStore(db)
	userID := insertTestUser(t, db)
	accountID := insertTestAccount(t, db, userID, "1000", "HKD")

	seed := []struct {
		amount string
		date   civil.Date
	}{
		{"100.50", civil.Date{Year: 2025, Month: 6, Day: 1}},
		{"200", civil.Date{Year: 2025, Month: 6, Day: 15}},
		{"300", civil.Date{Year: 2025, Month: 7, Day: 1}},
	}
	for _, s := range seed {
		_, err := store.Insert(ctx, &domain.Transaction{
			UserID:      userID,
			AccountID:   accountID,
			Description: "seed",
			Amount:      decimal.RequireFromString(s.amount),
			Type:        domain.TransactionExpense,
			Category:    "Other",
			Date:        s.date,
			Notes:       "n",
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	byAccount, err := store.FindByAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("FindByAccount failed: %v", err)
	}
	if len(byAccount) != 3 {
		t.Fatalf("FindByAccount returned %d, want 3", len(byAccount))
	}
	// Newest first.
	if byAccount[0].Date != (civil.Date{Year: 2025, Month: 7, Day: 1}) {
		t.Errorf("first transaction date = %v, want 2025-07-01", byAccount[0].Date)
	}
	if !byAccount[2].Amount.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("oldest amount = %s, want 100.50", byAccount[2].Amount)
	}

	june, err := store.FindByDateRange(ctx, userID,
		civil.Date{Year: 2025, Month: 6, Day: 1}, civil.Date{Year: 2025, Month: 6, Day: 30})
	if err != nil {
		t.Fatalf("FindByDateRange failed: %v", err)
	}
	if len(june) != 2 {
		t.Errorf("FindByDateRange returned %d, want 2", len(june))
	}

	other, err := store.FindByDateRange(ctx, userID+1,
		civil.Date{Year: 2025, Month: 6, Day: 1}, civil.Date{Year: 2025, Month: 6, Day: 30})
	if err != nil {
		t.Fatalf("FindByDateRange failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other user sees %d transactions, want 0", len(other))
	}
}

func TestApplyTransactionAtomic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewTransactionStore(db)
	accounts := NewAccountStore(db)
	userID := insertTestUser(t, db)
	accountID := insertTestAccount(t, db, userID, "1000", "HKD")

	newBalance := domain.Money{Amount: decimal.RequireFromString("1500"), Currency: "HKD"}
	id, err := store.ApplyTransaction(ctx, accountID, newBalance, &domain.Transaction{
		UserID:    userID,
		AccountID: accountID,
		Amount:    decimal.RequireFromString("500"),
		Type:      domain.TransactionIncome,
		Category:  "Salary",
		Date:      civil.Date{Year: 2025, Month: 6, Day: 1},
	})
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}
	if id == 0 {
		t.Error("ApplyTransaction returned zero id")
	}

	account, _ := accounts.FindByID(ctx, accountID)
	if !account.Balance.Amount.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("balance = %s, want 1500", account.Balance.Amount)
	}

	// A failing insert must roll back the balance write. The foreign key on
	// account_id rejects the unknown account.
	badBalance := domain.Money{Amount: decimal.RequireFromString("9999"), Currency: "HKD"}
	_, err = store.ApplyTransaction(ctx, accountID, badBalance, &domain.Transaction{
		UserID:    userID,
		AccountID: 424242,
		Amount:    decimal.RequireFromString("1"),
		Type:      domain.TransactionExpense,
		Category:  "Other",
		Date:      civil.Date{Year: 2025, Month: 6, Day: 2},
	})
	if err == nil {
		t.Fatal("ApplyTransaction with bad account succeeded, want error")
	}

	account, _ = accounts.FindByID(ctx, accountID)
	if !account.Balance.Amount.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("balance after rollback = %s, want 1500", account.Balance.Amount)
	}
}

func TestRunStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewRunStore(db, zerolog.Nop())
	userID := insertTestUser(t, db)
	accountID := insertTestAccount(t, db, userID, "0", "HKD")

	doc := &importer.StatementDocument{
		DocumentID: "doc-1",
		UserID:     userID,
		AccountID:  accountID,
		GCSURI:     "gs://bucket/jan.csv",
		Filename:   "jan.csv",
		UploadedAt: time.Now(),
	}
	if err := store.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	runID, err := store.StartRun(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	var status string
	if err := db.QueryRow(`SELECT status FROM import_runs WHERE import_run_id = ?`, runID).Scan(&status); err != nil {
		t.Fatalf("reading run: %v", err)
	}
	if status != "RUNNING" {
		t.Errorf("status = %s, want RUNNING", status)
	}

	if err := store.MarkRunSucceeded(ctx, runID, 12, 3); err != nil {
		t.Fatalf("MarkRunSucceeded failed: %v", err)
	}
	var imported, skipped int
	if err := db.QueryRow(`SELECT status, imported_count, skipped_count FROM import_runs WHERE import_run_id = ?`, runID).
		Scan(&status, &imported, &skipped); err != nil {
		t.Fatalf("reading run: %v", err)
	}
	if status != "SUCCESS" || imported != 12 || skipped != 3 {
		t.Errorf("run = %s/%d/%d, want SUCCESS/12/3", status, imported, skipped)
	}

	runID2, _ := store.StartRun(ctx, doc.DocumentID)
	store.MarkRunFailed(ctx, runID2, context.DeadlineExceeded)
	var errMsg string
	if err := db.QueryRow(`SELECT status, error_message FROM import_runs WHERE import_run_id = ?`, runID2).
		Scan(&status, &errMsg); err != nil {
		t.Fatalf("reading run: %v", err)
	}
	if status != "FAILED" || errMsg == "" {
		t.Errorf("run = %s/%q, want FAILED with message", status, errMsg)
	}
}

func TestServiceApplyTakesAtomicPath(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := insertTestUser(t, db)
	accountID := insertTestAccount(t, db, userID, "1000", "HKD")

	accounts := NewAccountStore(db)
	svc := ledger.NewService(accounts, NewTransactionStore(db), currency.NewConverter(), zerolog.Nop())

	account, err := svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:    userID,
		AccountID: accountID,
		Amount:    decimal.RequireFromString("250"),
		Type:      domain.TransactionIncome,
		Category:  "Salary",
		Date:      civil.Date{Year: 2025, Month: 3, Day: 10},
	})
	if err != nil {
		t.Fatalf("applying transaction: %v", err)
	}
	if !account.Balance.Amount.Equal(decimal.RequireFromString("1250")) {
		t.Errorf("returned balance = %s, want 1250", account.Balance.Amount)
	}

	// A transaction naming a nonexistent user trips the foreign key inside
	// the store's single write, so the balance must come back untouched.
	_, err = svc.ApplyTransaction(ctx, &domain.Transaction{
		UserID:    userID + 99,
		AccountID: accountID,
		Amount:    decimal.RequireFromString("40"),
		Type:      domain.TransactionExpense,
		Category:  "Utilities",
		Date:      civil.Date{Year: 2025, Month: 3, Day: 11},
	})
	if err == nil {
		t.Fatal("expected foreign key failure applying transaction for unknown user")
	}

	stored, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !stored.Balance.Amount.Equal(decimal.RequireFromString("1250")) {
		t.Errorf("balance after failed apply = %s, want 1250", stored.Balance.Amount)
	}
}

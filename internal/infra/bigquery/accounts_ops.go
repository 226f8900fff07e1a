package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/moneyapps/ledger/internal/domain"
)

const accountsTable = "accounts"

// AccountStore persists accounts in BigQuery.
type AccountStore struct {
	c *Client
}

func NewAccountStore(c *Client) *AccountStore {
	return &AccountStore{c: c}
}

// Insert writes a new account row and returns its generated ID.
func (s *AccountStore) Insert(ctx context.Context, account *domain.Account) (int64, error) {
	row := accountToRow(account)
	if row.AccountID == 0 {
		row.AccountID = newID()
	}

	if err := s.c.inserter(accountsTable).Put(ctx, row); err != nil {
		return 0, fmt.Errorf("AccountStore.Insert: inserting row: %w", err)
	}
	return row.AccountID, nil
}

// FindByID returns the account or nil when no row matches.
func (s *AccountStore) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	q := s.c.bq.Query(fmt.Sprintf(`
		SELECT account_id, user_id, account_name, account_type, balance, currency, created_ts
		FROM %s
		WHERE account_id = @account_id
		LIMIT 1
	`, s.c.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: id},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("AccountStore.FindByID: reading query: %w", err)
	}

	var row AccountRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("AccountStore.FindByID: iterating: %w", err)
	}
	return row.toDomain()
}

// FindByUser returns the user's accounts, newest first.
func (s *AccountStore) FindByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	q := s.c.bq.Query(fmt.Sprintf(`
		SELECT account_id, user_id, account_name, account_type, balance, currency, created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, s.c.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("AccountStore.FindByUser: reading query: %w", err)
	}

	var accounts []*domain.Account
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("AccountStore.FindByUser: iterating: %w", err)
		}
		account, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("AccountStore.FindByUser: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// UpdateBalance overwrites the account's balance.
func (s *AccountStore) UpdateBalance(ctx context.Context, id int64, balance domain.Money) error {
	err := s.c.runDML(ctx, fmt.Sprintf(`
		UPDATE %s
		SET balance = @balance, currency = @currency
		WHERE account_id = @account_id
	`, s.c.table(accountsTable)), []bigquery.QueryParameter{
		{Name: "balance", Value: balance.Amount.Rat()},
		{Name: "currency", Value: balance.Currency},
		{Name: "account_id", Value: id},
	})
	if err != nil {
		return fmt.Errorf("AccountStore.UpdateBalance: %w", err)
	}
	return nil
}

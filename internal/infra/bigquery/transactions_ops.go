package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/moneyapps/ledger/internal/domain"
)

const transactionsTable = "transactions"

// TransactionStore persists transactions in BigQuery.
type TransactionStore struct {
	c *Client
}

func NewTransactionStore(c *Client) *TransactionStore {
	return &TransactionStore{c: c}
}

// Insert writes a new transaction row and returns its generated ID.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) (int64, error) {
	row := transactionToRow(tx)
	if row.TransactionID == 0 {
		row.TransactionID = newID()
	}

	if err := s.c.inserter(transactionsTable).Put(ctx, row); err != nil {
		return 0, fmt.Errorf("TransactionStore.Insert: inserting row: %w", err)
	}
	return row.TransactionID, nil
}

func (s *TransactionStore) readRows(ctx context.Context, q *bigquery.Query) ([]*domain.Transaction, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading query: %w", err)
	}

	var txs []*domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating: %w", err)
		}
		tx, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// FindByAccount returns the account's transactions, newest first.
func (s *TransactionStore) FindByAccount(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	q := s.c.bq.Query(fmt.Sprintf(`
		SELECT transaction_id, user_id, account_id, transaction_date,
		       description, amount, transaction_type, category_name, notes, created_ts
		FROM %s
		WHERE account_id = @account_id
		ORDER BY transaction_date DESC, created_ts DESC
	`, s.c.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
	}

	txs, err := s.readRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("TransactionStore.FindByAccount: %w", err)
	}
	return txs, nil
}

// FindByDateRange returns the user's transactions with dates inside the
// inclusive range, ordered by date.
func (s *TransactionStore) FindByDateRange(ctx context.Context, userID int64, start, end civil.Date) ([]*domain.Transaction, error) {
	q := s.c.bq.Query(fmt.Sprintf(`
		SELECT transaction_id, user_id, account_id, transaction_date,
		       description, amount, transaction_type, category_name, notes, created_ts
		FROM %s
		WHERE user_id = @user_id
		  AND transaction_date >= @start_date
		  AND transaction_date <= @end_date
		ORDER BY transaction_date, created_ts
	`, s.c.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: start},
		{Name: "end_date", Value: end},
	}

	txs, err := s.readRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("TransactionStore.FindByDateRange: %w", err)
	}
	return txs, nil
}

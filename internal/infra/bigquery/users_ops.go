package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/domain"
)

const usersTable = "users"

// UserStore persists users and password hashes in BigQuery.
type UserStore struct {
	c *Client
}

func NewUserStore(c *Client) *UserStore {
	return &UserStore{c: c}
}

// Insert writes a new user row and returns its generated ID.
func (s *UserStore) Insert(ctx context.Context, user *domain.User, hash auth.PasswordHash) (int64, error) {
	row := &UserRow{
		UserID:       newID(),
		Username:     user.Username,
		Email:        user.Email,
		BaseCurrency: user.BaseCurrency,
		PasswordHash: hash.Hash,
		PasswordSalt: hash.Salt,
		CreatedTS:    user.CreatedAt,
	}

	if err := s.c.inserter(usersTable).Put(ctx, row); err != nil {
		return 0, fmt.Errorf("UserStore.Insert: inserting row: %w", err)
	}
	return row.UserID, nil
}

// FindByUsername returns the user and stored hash, or nils when no row matches.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, *auth.PasswordHash, error) {
	q := s.c.bq.Query(fmt.Sprintf(`
		SELECT user_id, username, email, base_currency, password_hash, password_salt, created_ts
		FROM %s
		WHERE username = @username
		LIMIT 1
	`, s.c.table(usersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "username", Value: username},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("UserStore.FindByUsername: reading query: %w", err)
	}

	var row UserRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("UserStore.FindByUsername: iterating: %w", err)
	}
	return row.toDomain(), &auth.PasswordHash{Hash: row.PasswordHash, Salt: row.PasswordSalt}, nil
}

// UpdatePassword overwrites the user's stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, userID int64, hash auth.PasswordHash) error {
	err := s.c.runDML(ctx, fmt.Sprintf(`
		UPDATE %s
		SET password_hash = @password_hash, password_salt = @password_salt
		WHERE user_id = @user_id
	`, s.c.table(usersTable)), []bigquery.QueryParameter{
		{Name: "password_hash", Value: hash.Hash},
		{Name: "password_salt", Value: hash.Salt},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		return fmt.Errorf("UserStore.UpdatePassword: %w", err)
	}
	return nil
}

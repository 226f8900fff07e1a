package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/domain"
)

// UserStore persists users and password hashes in SQLite.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Insert persists a new user with their password hash and returns the id.
func (s *UserStore) Insert(ctx context.Context, user *domain.User, hash auth.PasswordHash) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, base_currency, password_hash, password_salt, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.BaseCurrency, hash.Hash, hash.Salt,
		user.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("UserStore.Insert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("UserStore.Insert: last insert id: %w", err)
	}
	return id, nil
}

// FindByUsername returns the user and stored hash, or nils when no row matches.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, *auth.PasswordHash, error) {
	var (
		user      domain.User
		hash      auth.PasswordHash
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, base_currency, password_hash, password_salt, created_at
		FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.BaseCurrency, &hash.Hash, &hash.Salt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("UserStore.FindByUsername: %w", err)
	}

	if t, err := time.Parse(timeFormat, createdAt); err == nil {
		user.CreatedAt = t
	}
	return &user, &hash, nil
}

// UpdatePassword overwrites the user's stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, userID int64, hash auth.PasswordHash) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, password_salt = ? WHERE id = ?`,
		hash.Hash, hash.Salt, userID)
	if err != nil {
		return fmt.Errorf("UserStore.UpdatePassword: %w", err)
	}
	return nil
}

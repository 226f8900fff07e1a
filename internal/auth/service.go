package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/domain"
)

// ErrInvalidCredentials is returned by Login and ChangePassword when the
// username or password does not match a stored user. It deliberately does
// not distinguish an unknown user from a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

const minPasswordLength = 6

// UserStore persists users and their password hashes.
type UserStore interface {
	Insert(ctx context.Context, user *domain.User, hash PasswordHash) (int64, error)
	// FindByUsername returns nil, nil when no such user exists.
	FindByUsername(ctx context.Context, username string) (*domain.User, *PasswordHash, error)
	UpdatePassword(ctx context.Context, userID int64, hash PasswordHash) error
}

// Service implements registration and credential checks on top of a UserStore.
type Service struct {
	users UserStore
	log   zerolog.Logger
}

func NewService(users UserStore, log zerolog.Logger) *Service {
	return &Service{users: users, log: log}
}

// Register creates a new user. The base currency must be a known ISO code
// and the username must not already be taken.
func (s *Service) Register(ctx context.Context, username, email, password, baseCurrency string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("Register: %w: username is required", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("Register: %w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if money.GetCurrency(baseCurrency) == nil {
		return nil, fmt.Errorf("Register: %w: %s", domain.ErrUnsupportedCurrency, baseCurrency)
	}

	existing, _, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("Register: checking username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("Register: %w: username %q is taken", domain.ErrValidation, username)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		BaseCurrency: baseCurrency,
		CreatedAt:    time.Now().UTC(),
	}
	id, err := s.users.Insert(ctx, user, hash)
	if err != nil {
		return nil, fmt.Errorf("Register: inserting user: %w", err)
	}
	user.ID = id

	s.log.Info().Int64("user_id", id).Str("username", username).Msg("registered user")
	return user, nil
}

// Login verifies the credentials and returns the user on success.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, hash, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("Login: finding user: %w", err)
	}
	if user == nil || hash == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, *hash)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if len(next) < minPasswordLength {
		return fmt.Errorf("ChangePassword: %w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	user, err := s.Login(ctx, username, current)
	if err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("ChangePassword: updating password: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("changed password")
	return nil
}

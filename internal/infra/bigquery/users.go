package bigquery

import (
	"time"

	"github.com/moneyapps/ledger/internal/domain"
)

type UserRow struct {
	UserID       int64     `bigquery:"user_id"`       // REQUIRED
	Username     string    `bigquery:"username"`      // REQUIRED
	Email        string    `bigquery:"email"`         // NULLABLE
	BaseCurrency string    `bigquery:"base_currency"` // REQUIRED
	PasswordHash string    `bigquery:"password_hash"` // REQUIRED
	PasswordSalt string    `bigquery:"password_salt"` // REQUIRED
	CreatedTS    time.Time `bigquery:"created_ts"`    // REQUIRED
}

func (r *UserRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.UserID,
		Username:     r.Username,
		Email:        r.Email,
		BaseCurrency: r.BaseCurrency,
		CreatedAt:    r.CreatedTS,
	}
}

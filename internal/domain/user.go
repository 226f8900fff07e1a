package domain

import "time"

// User is a registered owner of accounts and transactions. Credentials are
// held by the user store, never on this struct.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	BaseCurrency string    `json:"base_currency"`
	CreatedAt    time.Time `json:"created_at"`
}

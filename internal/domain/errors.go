package domain

import "errors"

// Error kinds shared across the service and store layers. Callers match with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrUnsupportedCurrency indicates a currency code with no entry in the
	// exchange-rate table.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrInvalidOperation indicates an operation that is never allowed,
	// such as overriding the base currency's exchange rate.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrAccountNotFound indicates a transaction or query referencing an
	// account that does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrValidation indicates malformed input rejected at a boundary.
	ErrValidation = errors.New("validation failed")
)

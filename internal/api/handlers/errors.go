package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/domain"
)

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrInvalidOperation):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

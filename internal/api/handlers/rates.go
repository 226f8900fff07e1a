package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/currency"
)

// RatesHandler handles the exchange-rate endpoints.
type RatesHandler struct {
	converter *currency.Converter
	log       zerolog.Logger
}

// NewRatesHandler creates a new rates handler.
func NewRatesHandler(converter *currency.Converter, log zerolog.Logger) *RatesHandler {
	return &RatesHandler{converter: converter, log: log}
}

// List handles GET /api/rates
func (h *RatesHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"base":  currency.BaseCurrency,
		"rates": h.converter.Rates(),
	})
}

// Update handles PUT /api/rates/{code}
func (h *RatesHandler) Update(w http.ResponseWriter, r *http.Request, code string) {
	var req struct {
		Rate string `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid rate")
		return
	}

	if err := h.converter.UpdateRate(code, rate); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.log.Info().Str("currency", code).Str("rate", rate.String()).Msg("exchange rate updated")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currency": code,
		"rate":     rate,
	})
}

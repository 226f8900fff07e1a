package handlers

import (
	"encoding/json"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/domain"
	"github.com/moneyapps/ledger/internal/ledger"
)

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc *ledger.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, log: log}
}

// Create handles POST /api/transactions. The transaction is validated,
// applied to the account's balance, and persisted in one step.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64  `json:"user_id"`
		AccountID   int64  `json:"account_id"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Date        string `json:"date"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD")
		return
	}

	tx := &domain.Transaction{
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		Description: req.Description,
		Amount:      amount,
		Type:        domain.TransactionType(req.Type),
		Category:    req.Category,
		Date:        date,
		Notes:       req.Notes,
	}

	account, err := h.svc.ApplyTransaction(r.Context(), tx)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": tx,
		"balance":     account.Balance,
	})
}

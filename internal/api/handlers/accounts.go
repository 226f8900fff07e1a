package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/domain"
	"github.com/moneyapps/ledger/internal/ledger"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(svc *ledger.Service, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{svc: svc, log: log}
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   int64  `json:"user_id"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid balance amount")
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), &domain.Account{
		UserID:    req.UserID,
		Name:      req.Name,
		Type:      domain.AccountType(req.Type),
		Balance:   domain.Money{Amount: balance, Currency: req.Currency},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, account)
}

// List handles GET /api/accounts?user_id=N
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	accounts, err := h.svc.AccountsByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// Get handles GET /api/accounts/{id}
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request, accountID int64) {
	account, err := h.svc.Account(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, account)
}

// Transactions handles GET /api/accounts/{id}/transactions
func (h *AccountsHandler) Transactions(w http.ResponseWriter, r *http.Request, accountID int64) {
	txs, err := h.svc.AccountTransactions(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

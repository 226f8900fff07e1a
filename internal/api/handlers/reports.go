package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/ledger"
)

// ReportsHandler handles the aggregation endpoints: monthly metrics,
// category breakdown, net worth, and recommendations.
type ReportsHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(svc *ledger.Service, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{svc: svc, log: log}
}

// periodParams reads user_id, year, and month query parameters. Year and
// month default to the current month.
func periodParams(r *http.Request) (userID int64, year int, month time.Month, err error) {
	q := r.URL.Query()

	userID, err = strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil {
		return 0, 0, 0, err
	}

	now := time.Now()
	year, month = now.Year(), now.Month()
	if y := q.Get("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil {
			return 0, 0, 0, err
		}
	}
	if m := q.Get("month"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, 0, 0, err
		}
		if n < 1 || n > 12 {
			return 0, 0, 0, fmt.Errorf("month %d out of range", n)
		}
		month = time.Month(n)
	}
	return userID, year, month, nil
}

// Metrics handles GET /api/reports/metrics?user_id=N&year=Y&month=M
func (h *ReportsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, year, month, err := periodParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required; year and month must be numeric")
		return
	}

	metrics, err := h.svc.MonthlyMetrics(r.Context(), userID, year, month)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, metrics)
}

// Breakdown handles GET /api/reports/breakdown?user_id=N&year=Y&month=M&account_id=A
// account_id is optional; when absent the breakdown spans all accounts.
func (h *ReportsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	userID, year, month, err := periodParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required; year and month must be numeric")
		return
	}

	var accountID int64
	if a := r.URL.Query().Get("account_id"); a != "" {
		accountID, err = strconv.ParseInt(a, 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid account_id")
			return
		}
	}

	breakdown, err := h.svc.CategoryBreakdown(r.Context(), userID, year, month, accountID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, breakdown)
}

// NetWorth handles GET /api/reports/networth?user_id=N&currency=HKD
func (h *ReportsHandler) NetWorth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	cur := q.Get("currency")
	if cur == "" {
		middleware.WriteError(w, http.StatusBadRequest, "currency is required")
		return
	}

	worth, err := h.svc.NetWorth(r.Context(), userID, cur)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"net_worth": worth,
	})
}

// Recommendation handles GET /api/reports/recommendation?user_id=N&year=Y&month=M
func (h *ReportsHandler) Recommendation(w http.ResponseWriter, r *http.Request) {
	userID, year, month, err := periodParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required; year and month must be numeric")
		return
	}

	message, err := h.svc.Recommendation(r.Context(), userID, year, month)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"recommendation": message,
	})
}

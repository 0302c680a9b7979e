package handler

import (
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stellarnova/limitd/internal/service"
)

// BalanceHandler handles HTTP requests for balance endpoints.
type BalanceHandler struct {
	balanceSvc *service.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceSvc *service.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceSvc: balanceSvc}
}

// fundsRequest is the JSON request body for deposits and withdrawals.
type fundsRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// Deposit handles POST /balances/{user_id}/deposit.
func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.balanceSvc.Deposit)
}

// Withdraw handles POST /balances/{user_id}/withdraw.
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.balanceSvc.Withdraw)
}

// GetBalances handles GET /balances/{user_id}.
func (h *BalanceHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	balances, err := h.balanceSvc.Balances(userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make(map[string]string, len(balances))
	for asset, amount := range balances {
		resp[asset] = amount.String()
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"balances": resp,
	})
}

func (h *BalanceHandler) moveFunds(w http.ResponseWriter, r *http.Request, op func(string, string, *big.Int) error) {
	userID := chi.URLParam(r, "user_id")

	var req fundsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := op(userID, req.Asset, amount); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"asset":   req.Asset,
		"amount":  amount.String(),
	})
}

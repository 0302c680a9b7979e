package handler

import (
	"net/http"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/engine"
	"github.com/stellarnova/limitd/internal/service"
)

// ExecutionHandler handles the two halves of the execution protocol:
// the executor's trigger and the venue's resolution callback.
type ExecutionHandler struct {
	execSvc *service.ExecutionService
}

// NewExecutionHandler creates a new ExecutionHandler.
func NewExecutionHandler(execSvc *service.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{execSvc: execSvc}
}

// executeRequest is the JSON request body for POST /orders/{order_id}/execute.
type executeRequest struct {
	ExecutorID               string `json:"executor_id"`
	ObservedPriceNumerator   string `json:"observed_price_numerator"`
	ObservedPriceDenominator string `json:"observed_price_denominator"`
}

// Execute handles POST /orders/{order_id}/execute. On success the swap
// request has been dispatched and the response is 202: the order is
// still pending and the outcome arrives later on the resolution
// callback.
func (h *ExecutionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req executeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	observedNum, err := parseAmount(req.ObservedPriceNumerator, "observed_price_numerator")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observedDenom, err := parseAmount(req.ObservedPriceDenominator, "observed_price_denominator")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.execSvc.Begin(r.Context(), orderID, req.ExecutorID, observedNum, observedDenom); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]any{
		"order_id": orderID,
		"status":   "dispatched",
	})
}

// swapResultRequest is the JSON request body for the venue's
// resolution callback.
type swapResultRequest struct {
	Success bool                `json:"success"`
	Outputs []swapOutputPayload `json:"outputs"`
	Message string              `json:"message"`
}

type swapOutputPayload struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// settlementResponse summarizes what a resolution did.
type settlementResponse struct {
	OrderID      uint64  `json:"order_id"`
	Outcome      string  `json:"outcome"`
	OrderStatus  string  `json:"order_status"`
	OutputAmount *string `json:"output_amount"`
	Fee          *string `json:"fee"`
	UserAmount   *string `json:"user_amount"`
}

// Resolve handles POST /swaps/{order_id}/result, the venue's
// resolution callback. Exactly one delivery per dispatched request
// settles; duplicates fail with context_not_found.
func (h *ExecutionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req swapResultRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result := domain.SwapResult{
		Success: req.Success,
		Message: req.Message,
	}
	for _, out := range req.Outputs {
		amount, err := parseAmount(out.Amount, "outputs[].amount")
		if err != nil {
			writeDomainError(w, err)
			return
		}
		result.Outputs = append(result.Outputs, domain.SwapOutput{
			Asset:  out.Asset,
			Amount: amount,
		})
	}

	st, err := h.execSvc.Resolve(orderID, result)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildSettlementResponse(orderID, st))
}

func buildSettlementResponse(orderID uint64, st *engine.Settlement) settlementResponse {
	resp := settlementResponse{
		OrderID:     orderID,
		Outcome:     string(st.Outcome),
		OrderStatus: string(st.Order.Status),
	}
	if st.OutputAmount != nil {
		s := st.OutputAmount.String()
		resp.OutputAmount = &s
	}
	if st.Fee != nil {
		s := st.Fee.String()
		resp.Fee = &s
	}
	if st.UserAmount != nil {
		s := st.UserAmount.String()
		resp.UserAmount = &s
	}
	return resp
}

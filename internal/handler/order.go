package handler

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// createOrderRequest is the JSON request body for POST /orders.
// Amounts and price components are decimal strings; they can exceed
// 64 bits.
type createOrderRequest struct {
	UserID           string `json:"user_id"`
	FromAsset        string `json:"from_asset"`
	FromAmount       string `json:"from_amount"`
	ToAsset          string `json:"to_asset"`
	PriceNumerator   string `json:"price_numerator"`
	PriceDenominator string `json:"price_denominator"`
	SlippageBP       uint64 `json:"slippage_bp"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

// orderResponse is the JSON response for a single order. Nullable
// fields use pointers and are always present.
type orderResponse struct {
	OrderID          uint64  `json:"order_id"`
	UserID           string  `json:"user_id"`
	FromAsset        string  `json:"from_asset"`
	FromAmount       string  `json:"from_amount"`
	ToAsset          string  `json:"to_asset"`
	PriceNumerator   string  `json:"price_numerator"`
	PriceDenominator string  `json:"price_denominator"`
	SlippageBP       uint64  `json:"slippage_bp"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	ExpiresAt        string  `json:"expires_at"`
	ExecutedAt       *string `json:"executed_at"`
	CancelledAt      *string `json:"cancelled_at"`
	ExpiredAt        *string `json:"expired_at"`
	OutputAmount     *string `json:"output_amount"`
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	fromAmount, err := parseAmount(req.FromAmount, "from_amount")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	priceNum, err := parseAmount(req.PriceNumerator, "price_numerator")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	priceDenom, err := parseAmount(req.PriceDenominator, "price_denominator")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req.ExpiresInSeconds <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "expires_in_seconds must be positive")
		return
	}

	order, err := h.orderSvc.CreateOrder(service.CreateOrderRequest{
		UserID:           req.UserID,
		FromAsset:        req.FromAsset,
		FromAmount:       fromAmount,
		ToAsset:          req.ToAsset,
		PriceNumerator:   priceNum,
		PriceDenominator: priceDenom,
		SlippageBP:       req.SlippageBP,
		ExpiresIn:        time.Duration(req.ExpiresInSeconds) * time.Second,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	order, err := h.orderSvc.GetOrder(orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}. The caller identifies
// itself with the X-User-Id header; only the order's owner may cancel.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	callerID := r.Header.Get("X-User-Id")
	if callerID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "X-User-Id header is required")
		return
	}

	order, err := h.orderSvc.CancelOrder(orderID, callerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// ListPending handles GET /orders. This is the executor's work queue:
// all pending orders in ascending ID order. Only status=pending is
// accepted as a filter; other statuses have no index.
func (h *OrderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" && status != string(domain.OrderStatusPending) {
		WriteError(w, http.StatusBadRequest, "validation_error", "only status=pending is supported")
		return
	}

	orders := h.orderSvc.ListPending()
	WriteJSON(w, http.StatusOK, buildOrderListResponse(orders))
}

// ListUserOrders handles GET /users/{user_id}/orders.
func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	orders, err := h.orderSvc.ListByUser(userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderListResponse(orders))
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
}

func buildOrderListResponse(orders []*domain.Order) orderListResponse {
	result := make([]orderResponse, len(orders))
	for i, o := range orders {
		result[i] = buildOrderResponse(o)
	}
	return orderListResponse{Orders: result, Total: len(result)}
}

func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:          o.OrderID,
		UserID:           o.UserID,
		FromAsset:        o.FromAsset,
		FromAmount:       o.FromAmount.String(),
		ToAsset:          o.ToAsset,
		PriceNumerator:   o.PriceNumerator.String(),
		PriceDenominator: o.PriceDenominator.String(),
		SlippageBP:       o.SlippageBP,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:        o.ExpiresAt.UTC().Format(time.RFC3339),
	}

	if o.ExecutedAt != nil {
		s := o.ExecutedAt.UTC().Format(time.RFC3339)
		resp.ExecutedAt = &s
	}
	if o.CancelledAt != nil {
		s := o.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	if o.ExpiredAt != nil {
		s := o.ExpiredAt.UTC().Format(time.RFC3339)
		resp.ExpiredAt = &s
	}
	if o.OutputAmount != nil {
		s := o.OutputAmount.String()
		resp.OutputAmount = &s
	}

	return resp
}

// parseOrderID extracts and validates the order_id path parameter.
func parseOrderID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "order_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &domain.ValidationError{Message: "order_id must be a positive integer"}
	}
	return id, nil
}

// parseAmount parses a positive decimal-string amount into a big.Int.
func parseAmount(raw, field string) (*big.Int, error) {
	if raw == "" {
		return nil, &domain.ValidationError{Message: field + " is required"}
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() <= 0 {
		return nil, &domain.ValidationError{Message: field + " must be a positive integer"}
	}
	return v, nil
}

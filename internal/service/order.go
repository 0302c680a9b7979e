package service

import (
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/engine"
	"github.com/stellarnova/limitd/internal/store"
)

var (
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	assetRegex  = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,11}(-[a-z0-9]{1,12})?$`)
)

// CreateOrderRequest represents the input for order creation.
type CreateOrderRequest struct {
	UserID           string
	FromAsset        string
	FromAmount       *big.Int
	ToAsset          string
	PriceNumerator   *big.Int
	PriceDenominator *big.Int
	SlippageBP       uint64
	ExpiresIn        time.Duration
}

// OrderService handles order creation, retrieval, cancellation, and
// listing. Semantic validation (whitelist, balance, slippage bound)
// and all state transitions happen inside the ledger; the service
// validates request syntax and dispatches notifications.
type OrderService struct {
	ledger     *engine.Ledger
	orderStore *store.OrderStore
	webhookSvc *WebhookService
	logger     *slog.Logger
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	ledger *engine.Ledger,
	orderStore *store.OrderStore,
	webhookSvc *WebhookService,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		ledger:     ledger,
		orderStore: orderStore,
		webhookSvc: webhookSvc,
		logger:     logger,
	}
}

// CreateOrder validates the request, escrows the sell amount, records
// the order, and dispatches the order.created webhook.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*domain.Order, error) {
	if !userIDRegex.MatchString(req.UserID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if !assetRegex.MatchString(req.FromAsset) {
		return nil, &domain.ValidationError{
			Message: "from_asset is not a valid asset identifier",
		}
	}
	if !assetRegex.MatchString(req.ToAsset) {
		return nil, &domain.ValidationError{
			Message: "to_asset is not a valid asset identifier",
		}
	}

	order, err := s.ledger.CreateOrder(engine.CreateOrderParams{
		UserID:           req.UserID,
		FromAsset:        req.FromAsset,
		FromAmount:       req.FromAmount,
		ToAsset:          req.ToAsset,
		PriceNumerator:   req.PriceNumerator,
		PriceDenominator: req.PriceDenominator,
		SlippageBP:       req.SlippageBP,
		ExpiresIn:        req.ExpiresIn,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		slog.Uint64("order_id", order.OrderID),
		slog.String("user_id", order.UserID),
		slog.String("from_asset", order.FromAsset),
		slog.String("to_asset", order.ToAsset),
	)

	if s.webhookSvc != nil {
		s.webhookSvc.DispatchOrderCreated(order)
	}

	return order, nil
}

// CancelOrder cancels the caller's pending order and returns the full
// escrowed amount. Cancellation is permitted while an execution
// request is in flight; that case is logged because the eventual
// resolution will settle as a late no-op.
func (s *OrderService) CancelOrder(orderID uint64, callerID string) (*domain.Order, error) {
	inFlight, err := s.ledger.HasContext(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.ledger.CancelOrder(orderID, callerID)
	if err != nil {
		return nil, err
	}

	if inFlight {
		s.logger.Warn("order cancelled with execution in flight",
			slog.Uint64("order_id", orderID),
			slog.String("user_id", callerID),
		)
	} else {
		s.logger.Info("order cancelled",
			slog.Uint64("order_id", orderID),
			slog.String("user_id", callerID),
		)
	}

	if s.webhookSvc != nil {
		s.webhookSvc.DispatchOrderCancelled(order)
	}

	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(orderID uint64) (*domain.Order, error) {
	return s.orderStore.Get(orderID)
}

// ListByUser returns the user's orders in creation order.
func (s *OrderService) ListByUser(userID string) ([]*domain.Order, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	return s.orderStore.ListByUser(userID), nil
}

// ListPending returns all pending orders, the executor's work queue.
func (s *OrderService) ListPending() []*domain.Order {
	return s.orderStore.ListPending()
}

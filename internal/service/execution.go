package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/engine"
	"github.com/stellarnova/limitd/internal/exchange"
)

// ExecutionService orchestrates the two halves of an execution: Begin
// validates the attempt, persists the execution context, and dispatches
// the swap request to the venue; Resolve consumes the venue's callback.
// Between the two the order stays pending and only the durable context
// ties them together.
type ExecutionService struct {
	ledger     *engine.Ledger
	dispatcher exchange.Dispatcher
	webhookSvc *WebhookService
	logger     *slog.Logger
}

// NewExecutionService creates a new ExecutionService with the given
// dependencies.
func NewExecutionService(
	ledger *engine.Ledger,
	dispatcher exchange.Dispatcher,
	webhookSvc *WebhookService,
	logger *slog.Logger,
) *ExecutionService {
	return &ExecutionService{
		ledger:     ledger,
		dispatcher: dispatcher,
		webhookSvc: webhookSvc,
		logger:     logger,
	}
}

// Begin runs an execution attempt for the order: precondition checks,
// context persistence, and the dispatch to the venue. The dispatch is
// the suspension point — Begin returns without knowing the swap
// outcome, and order status is untouched until resolution.
//
// If the dispatch itself fails synchronously, the just-written context
// is cleared so the attempt leaves no partial state and the order can
// be retried immediately.
func (s *ExecutionService) Begin(ctx context.Context, orderID uint64, callerID string, observedNum, observedDenom *big.Int) error {
	if !userIDRegex.MatchString(callerID) {
		return &domain.ValidationError{
			Message: "executor_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	req, err := s.ledger.BeginExecution(orderID, callerID, observedNum, observedDenom)
	if err != nil {
		return err
	}

	if err := s.dispatcher.Dispatch(ctx, req); err != nil {
		if abortErr := s.ledger.AbortExecution(orderID); abortErr != nil {
			s.logger.Error("failed to clear context after dispatch failure",
				slog.Uint64("order_id", orderID),
				slog.String("error", abortErr.Error()),
			)
		}
		s.logger.Error("swap dispatch failed",
			slog.Uint64("order_id", orderID),
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}

	s.logger.Info("swap request dispatched",
		slog.Uint64("order_id", orderID),
		slog.String("request_id", req.RequestID),
		slog.String("min_amount_out", req.MinAmountOut.String()),
	)

	return nil
}

// Resolve consumes the venue's resolution for a dispatched request and
// applies the settlement. A duplicate or stray delivery fails with
// domain.ErrContextNotFound; an output below the stored minimum fails
// with domain.ErrSlippageViolation.
func (s *ExecutionService) Resolve(orderID uint64, result domain.SwapResult) (*engine.Settlement, error) {
	st, err := s.ledger.ResolveExecution(orderID, result)
	if err != nil {
		if errors.Is(err, domain.ErrSlippageViolation) {
			s.logger.Warn("swap output below stored minimum",
				slog.Uint64("order_id", orderID),
			)
		}
		return nil, err
	}

	switch st.Outcome {
	case engine.OutcomeExecuted:
		s.logger.Info("order executed",
			slog.Uint64("order_id", orderID),
			slog.String("output", st.OutputAmount.String()),
			slog.String("fee", st.Fee.String()),
			slog.String("user_amount", st.UserAmount.String()),
		)
		if s.webhookSvc != nil {
			s.webhookSvc.DispatchOrderExecuted(st.Order)
		}
	case engine.OutcomeFailed:
		s.logger.Warn("swap failed, order remains pending",
			slog.Uint64("order_id", orderID),
			slog.String("message", st.Message),
		)
	case engine.OutcomeLate:
		s.logger.Warn("late resolution for settled order, output credited to user",
			slog.Uint64("order_id", orderID),
			slog.String("order_status", string(st.Order.Status)),
			slog.String("output", st.OutputAmount.String()),
		)
	}

	return st, nil
}

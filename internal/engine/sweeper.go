package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
)

// OrderNotifier dispatches order event notifications from the engine
// layer without depending on the service layer directly.
type OrderNotifier interface {
	DispatchOrderExpired(order *domain.Order)
}

// Sweeper periodically reclaims stale execution contexts and expires
// past-due pending orders. Reclamation runs first in each pass, so an
// order whose stuck context was just cleared becomes expirable on a
// later pass.
type Sweeper struct {
	interval   time.Duration
	contextTTL time.Duration
	ledger     *Ledger
	notifier   OrderNotifier
	logger     *slog.Logger
}

// NewSweeper creates a Sweeper with the given tick interval and
// context time-to-live.
func NewSweeper(
	interval time.Duration,
	contextTTL time.Duration,
	ledger *Ledger,
	notifier OrderNotifier,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		interval:   interval,
		contextTTL: contextTTL,
		ledger:     ledger,
		notifier:   notifier,
		logger:     logger,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// tick runs one reclamation-then-expiry pass.
func (s *Sweeper) tick() {
	reclaimed, err := s.ledger.ReclaimStale(s.contextTTL)
	if err != nil {
		s.logger.Error("context reclamation failed", slog.String("error", err.Error()))
	}
	for _, c := range reclaimed {
		s.logger.Warn("reclaimed stale execution context",
			slog.Uint64("order_id", c.OrderID),
			slog.Time("dispatched_at", c.DispatchedAt),
		)
	}

	expired, err := s.ledger.ExpireDue()
	if err != nil {
		s.logger.Error("order expiry sweep failed", slog.String("error", err.Error()))
	}
	for _, o := range expired {
		s.logger.Info("order expired",
			slog.Uint64("order_id", o.OrderID),
			slog.String("user_id", o.UserID),
		)
		// Fire webhook outside the ledger lock.
		if s.notifier != nil {
			s.notifier.DispatchOrderExpired(o)
		}
	}
}

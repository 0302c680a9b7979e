package engine

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/store"
)

// Ledger is the serialized state-transition core. Every operation that
// moves funds or mutates order state runs under a single mutex, so each
// operation is atomic relative to all others — there is no partial
// visibility of an in-progress transition. The unbounded gap between
// BeginExecution and ResolveExecution is bridged only by the durable
// execution context; its single-context-per-order invariant is the
// concurrency control across that gap.
type Ledger struct {
	mu       sync.Mutex
	orders   *store.OrderStore
	balances *store.BalanceStore
	contexts *store.ContextStore
	assets   *domain.AssetRegistry
	params   *domain.ExecutionParams

	now func() time.Time // overridden in tests
}

// NewLedger creates a Ledger over the given stores, whitelist, and
// execution policy.
func NewLedger(
	orders *store.OrderStore,
	balances *store.BalanceStore,
	contexts *store.ContextStore,
	assets *domain.AssetRegistry,
	params *domain.ExecutionParams,
) *Ledger {
	return &Ledger{
		orders:   orders,
		balances: balances,
		contexts: contexts,
		assets:   assets,
		params:   params,
		now:      time.Now,
	}
}

// CreateOrderParams is the validated input for order creation.
type CreateOrderParams struct {
	UserID           string
	FromAsset        string
	FromAmount       *big.Int
	ToAsset          string
	PriceNumerator   *big.Int
	PriceDenominator *big.Int
	SlippageBP       uint64
	ExpiresIn        time.Duration
}

// CreateOrder validates the creation invariants, escrows the sell
// amount out of the user's balance, and records a new pending order.
// Custody moves with the act of creation, not at execution time.
func (l *Ledger) CreateOrder(p CreateOrderParams) (*domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.params.Paused() {
		return nil, domain.ErrPaused
	}
	if !l.assets.Allowed(p.FromAsset) || !l.assets.Allowed(p.ToAsset) {
		return nil, domain.ErrAssetNotAllowed
	}
	if p.FromAsset == p.ToAsset {
		return nil, &domain.ValidationError{Message: "cannot swap an asset to itself"}
	}
	if p.FromAmount == nil || p.FromAmount.Sign() <= 0 {
		return nil, &domain.ValidationError{Message: "from_amount must be greater than zero"}
	}
	if p.PriceNumerator == nil || p.PriceNumerator.Sign() <= 0 {
		return nil, &domain.ValidationError{Message: "price numerator must be positive"}
	}
	if p.PriceDenominator == nil || p.PriceDenominator.Sign() <= 0 {
		return nil, &domain.ValidationError{Message: "price denominator must be positive"}
	}
	if p.SlippageBP > l.params.MaxSlippageBP() {
		return nil, domain.ErrSlippageTooHigh
	}
	if p.ExpiresIn <= 0 {
		return nil, &domain.ValidationError{Message: "expires_in must be positive"}
	}

	now := l.now()
	o := &domain.Order{
		UserID:           p.UserID,
		FromAsset:        p.FromAsset,
		FromAmount:       new(big.Int).Set(p.FromAmount),
		ToAsset:          p.ToAsset,
		PriceNumerator:   new(big.Int).Set(p.PriceNumerator),
		PriceDenominator: new(big.Int).Set(p.PriceDenominator),
		SlippageBP:       p.SlippageBP,
		CreatedAt:        now,
		ExpiresAt:        now.Add(p.ExpiresIn),
	}

	if err := l.balances.Debit(p.UserID, p.FromAsset, o.FromAmount); err != nil {
		return nil, err
	}
	l.orders.Create(o)
	l.balances.RecordEscrow(o.OrderID, o.UserID, o.FromAsset, o.FromAmount)

	return o, nil
}

// CancelOrder cancels the caller's own pending order and returns the
// full escrowed amount — no fee, no partial return. Cancellation is
// permitted even while an execution context is outstanding; the
// resolution path re-checks order status and handles that race.
func (l *Ledger) CancelOrder(orderID uint64, callerID string) (*domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, err := l.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != callerID {
		return nil, domain.ErrNotOwner
	}
	if o.Status != domain.OrderStatusPending {
		return nil, domain.ErrInvalidState
	}

	if err := l.orders.Retire(orderID, domain.OrderStatusCancelled, l.now()); err != nil {
		return nil, err
	}
	l.balances.ReleaseEscrow(orderID)

	return o, nil
}

// BeginExecution validates an execution attempt and persists its
// context, returning the swap request to dispatch to the venue. The
// preconditions are checked in order, each failing fast with a
// distinct error: not paused, caller is the registered executor, order
// exists and is pending, not expired, and the observed price is at or
// better than the order's target. Order status does not change here —
// it changes only on resolution.
func (l *Ledger) BeginExecution(orderID uint64, callerID string, observedNum, observedDenom *big.Int) (*domain.SwapRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.params.Paused() {
		return nil, domain.ErrPaused
	}
	if callerID != l.params.ExecutorID() {
		return nil, domain.ErrNotExecutor
	}
	o, err := l.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusPending {
		return nil, domain.ErrInvalidState
	}
	now := l.now()
	if o.ExpiredBy(now) {
		return nil, domain.ErrOrderExpired
	}
	if observedNum == nil || observedNum.Sign() <= 0 || observedDenom == nil || observedDenom.Sign() <= 0 {
		return nil, &domain.ValidationError{Message: "observed price must be positive"}
	}
	if !o.PriceMet(observedNum, observedDenom) {
		return nil, domain.ErrPriceNotMet
	}

	minOut, err := domain.MinimumOutput(o.FromAmount, o.PriceNumerator, o.PriceDenominator, o.SlippageBP)
	if err != nil {
		return nil, err
	}

	ctx := &domain.ExecutionContext{
		OrderID:      orderID,
		UserID:       o.UserID,
		ExecutorID:   callerID,
		ToAsset:      o.ToAsset,
		MinAmountOut: minOut,
		DispatchedAt: now,
	}
	if err := l.contexts.Put(ctx); err != nil {
		return nil, err
	}

	return &domain.SwapRequest{
		RequestID:    uuid.New().String(),
		OrderID:      orderID,
		FromAsset:    o.FromAsset,
		FromAmount:   new(big.Int).Set(o.FromAmount),
		ToAsset:      o.ToAsset,
		MinAmountOut: new(big.Int).Set(minOut),
	}, nil
}

// AbortExecution clears the order's execution context. Used when the
// dispatch to the venue fails synchronously, so the aborted attempt
// leaves no trace and the order is immediately eligible for a retry.
func (l *Ledger) AbortExecution(orderID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.contexts.Take(orderID)
	return err
}

// HasContext reports whether an execution context is outstanding for
// the order.
func (l *Ledger) HasContext(orderID uint64) (bool, error) {
	return l.contexts.Has(orderID)
}

// SettlementOutcome classifies what a resolution did.
type SettlementOutcome string

const (
	// OutcomeExecuted: the swap succeeded and the order settled.
	OutcomeExecuted SettlementOutcome = "executed"
	// OutcomeFailed: the venue reported failure; the order stays
	// pending with its escrow intact, eligible for a fresh attempt.
	OutcomeFailed SettlementOutcome = "failed"
	// OutcomeLate: the resolution arrived after the order had already
	// left pending (cancelled or expired) while the request was in
	// flight.
	OutcomeLate SettlementOutcome = "late"
)

// Settlement describes the effect of one resolution.
type Settlement struct {
	Outcome      SettlementOutcome
	Order        *domain.Order
	Context      *domain.ExecutionContext
	OutputAmount *big.Int // total venue output in the target asset
	Fee          *big.Int // executor's share
	UserAmount   *big.Int // user's share
	Message      string   // venue failure message when Outcome is failed
}

// ResolveExecution consumes the order's execution context and settles
// the venue's result. The context is removed before any other effect is
// applied, so a duplicate delivery finds no context and fails with
// domain.ErrContextNotFound rather than double-paying.
//
// On success the output in the target asset is checked against the
// stored minimum (domain.ErrSlippageViolation below it — terminal for
// the attempt, custody is not rolled back automatically), the escrow is
// consumed, the fee split is credited, and the order flips to executed.
// On a failure result the order is left pending for a future attempt;
// the escrowed input was only offered, never released.
//
// If the order left pending while the request was in flight, the
// escrow was already returned but the venue consumed real input: the
// full output is credited to the user with no executor fee and no
// status change, and the settlement is marked late for the caller to
// log.
func (l *Ledger) ResolveExecution(orderID uint64, result domain.SwapResult) (*Settlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, err := l.contexts.Take(orderID)
	if err != nil {
		return nil, err
	}

	o, err := l.orders.Get(orderID)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		return &Settlement{Outcome: OutcomeFailed, Order: o, Context: ctx, Message: result.Message}, nil
	}

	output := result.OutputFor(ctx.ToAsset)
	if output.Cmp(ctx.MinAmountOut) < 0 {
		return nil, domain.ErrSlippageViolation
	}

	if o.Status != domain.OrderStatusPending {
		l.balances.Credit(ctx.UserID, ctx.ToAsset, output)
		return &Settlement{
			Outcome:      OutcomeLate,
			Order:        o,
			Context:      ctx,
			OutputAmount: output,
			UserAmount:   output,
		}, nil
	}

	fee, userAmount := domain.SplitFee(output, l.params.FeeBPS())

	l.balances.ConsumeEscrow(orderID)
	if fee.Sign() > 0 {
		l.balances.Credit(ctx.ExecutorID, ctx.ToAsset, fee)
	}
	l.balances.Credit(ctx.UserID, ctx.ToAsset, userAmount)

	o.OutputAmount = userAmount
	if err := l.orders.Retire(orderID, domain.OrderStatusExecuted, l.now()); err != nil {
		return nil, err
	}

	return &Settlement{
		Outcome:      OutcomeExecuted,
		Order:        o,
		Context:      ctx,
		OutputAmount: output,
		Fee:          fee,
		UserAmount:   userAmount,
	}, nil
}

// ExpireDue transitions pending orders whose expiry has passed to
// expired and returns their escrow in full. Orders with a live
// execution context are skipped: the in-flight request must resolve or
// be reclaimed first, after which the order expires on a later pass.
// Returns the orders expired on this pass.
func (l *Ledger) ExpireDue() ([]*domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var expired []*domain.Order
	for _, o := range l.orders.ListPending() {
		if !o.ExpiredBy(now) {
			continue
		}
		inFlight, err := l.contexts.Has(o.OrderID)
		if err != nil {
			return expired, err
		}
		if inFlight {
			continue
		}
		if err := l.orders.Retire(o.OrderID, domain.OrderStatusExpired, now); err != nil {
			return expired, err
		}
		l.balances.ReleaseEscrow(o.OrderID)
		expired = append(expired, o)
	}
	return expired, nil
}

// ReclaimStale removes execution contexts whose request has been
// outstanding for at least ttl, unblocking future execution attempts
// for their orders. Returns the reclaimed contexts.
func (l *Ledger) ReclaimStale(ttl time.Duration) ([]*domain.ExecutionContext, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ctxs, err := l.contexts.List()
	if err != nil {
		return nil, err
	}

	var reclaimed []*domain.ExecutionContext
	for _, c := range ctxs {
		if !c.StaleBy(now, ttl) {
			continue
		}
		if _, err := l.contexts.Take(c.OrderID); err != nil {
			return reclaimed, err
		}
		reclaimed = append(reclaimed, c)
	}
	return reclaimed, nil
}

// Deposit credits the user's balance.
func (l *Ledger) Deposit(userID, asset string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances.Credit(userID, asset, amount)
}

// Withdraw debits the user's balance. Fails with
// domain.ErrInsufficientBalance if the free balance cannot cover the
// amount; escrowed funds are not withdrawable.
func (l *Ledger) Withdraw(userID, asset string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances.Debit(userID, asset, amount)
}

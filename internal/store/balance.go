package store

import (
	"math/big"
	"sync"

	"github.com/stellarnova/limitd/internal/domain"
)

// EscrowEntry records the funds held by the system for one order.
type EscrowEntry struct {
	UserID string
	Asset  string
	Amount *big.Int
}

// BalanceStore is a thread-safe ledger of user asset balances and
// per-order escrow. Creating an order moves funds from the user's
// balance into escrow; cancellation moves them back in full; a settled
// execution consumes the escrow (the venue took the input) and credits
// the swap output.
//
// All amounts are defensively copied on the way in and out so callers
// cannot alias the store's internal big.Int values.
type BalanceStore struct {
	mu       sync.RWMutex
	balances map[string]map[string]*big.Int // user_id → asset → amount
	escrow   map[uint64]*EscrowEntry        // order_id → escrowed funds
}

// NewBalanceStore creates an empty BalanceStore.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		balances: make(map[string]map[string]*big.Int),
		escrow:   make(map[uint64]*EscrowEntry),
	}
}

// Credit adds amount of asset to the user's balance.
func (s *BalanceStore) Credit(userID, asset string, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(userID, asset, amount)
}

// Debit subtracts amount of asset from the user's balance. Fails with
// domain.ErrInsufficientBalance without any change if the balance is
// too small.
func (s *BalanceStore) Debit(userID, asset string, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debit(userID, asset, amount)
}

// Balance returns the user's balance in the given asset (zero when the
// user holds none).
func (s *BalanceStore) Balance(userID, asset string) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.balances[userID][asset]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Balances returns a copy of all of the user's non-zero balances.
func (s *BalanceStore) Balances(userID string) map[string]*big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*big.Int)
	for asset, b := range s.balances[userID] {
		if b.Sign() != 0 {
			result[asset] = new(big.Int).Set(b)
		}
	}
	return result
}

// RecordEscrow records funds as escrowed for the order. The caller is
// responsible for having debited the user first; the engine's ledger
// serializes Debit and RecordEscrow under one lock so the pair is
// atomic.
func (s *BalanceStore) RecordEscrow(orderID uint64, userID, asset string, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.escrow[orderID] = &EscrowEntry{
		UserID: userID,
		Asset:  asset,
		Amount: new(big.Int).Set(amount),
	}
}

// ReleaseEscrow returns the order's escrowed funds to the user in full
// and clears the entry. It is a no-op if no escrow exists for the order.
func (s *BalanceStore) ReleaseEscrow(orderID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.escrow[orderID]
	if !ok {
		return
	}
	s.credit(e.UserID, e.Asset, e.Amount)
	delete(s.escrow, orderID)
}

// ConsumeEscrow clears the order's escrow without crediting anyone: the
// external venue consumed the input funds. No-op if no escrow exists.
func (s *BalanceStore) ConsumeEscrow(orderID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.escrow, orderID)
}

// EscrowFor returns a copy of the escrow entry for the order, if any.
func (s *BalanceStore) EscrowFor(orderID uint64) (*EscrowEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.escrow[orderID]
	if !ok {
		return nil, false
	}
	return &EscrowEntry{
		UserID: e.UserID,
		Asset:  e.Asset,
		Amount: new(big.Int).Set(e.Amount),
	}, true
}

func (s *BalanceStore) credit(userID, asset string, amount *big.Int) {
	if s.balances[userID] == nil {
		s.balances[userID] = make(map[string]*big.Int)
	}
	b, ok := s.balances[userID][asset]
	if !ok {
		b = new(big.Int)
		s.balances[userID][asset] = b
	}
	b.Add(b, amount)
}

func (s *BalanceStore) debit(userID, asset string, amount *big.Int) error {
	b, ok := s.balances[userID][asset]
	if !ok || b.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	b.Sub(b, amount)
	return nil
}

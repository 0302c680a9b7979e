package store

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/stellarnova/limitd/internal/domain"
)

// OrderStore is a thread-safe in-memory store for limit orders. It owns
// the authoritative order records and enforces the status state machine:
// pending is the only non-terminal state, and a pending order transitions
// to exactly one of executed, cancelled, or expired.
//
// Indexes: a primary map by order_id, a derived per-user index, and a
// B-tree pending set so listing pending orders does not scan the whole
// identifier range.
type OrderStore struct {
	mu         sync.RWMutex
	nextID     uint64
	orders     map[uint64]*domain.Order
	userOrders map[string][]uint64   // user_id → order ids (append-only)
	pending    *btree.BTreeG[uint64] // pending order ids, ascending
}

// NewOrderStore creates an empty OrderStore. Identifiers start at 1 and
// increase monotonically; they are never reused.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		nextID:     1,
		orders:     make(map[uint64]*domain.Order),
		userOrders: make(map[string][]uint64),
		pending: btree.NewG[uint64](32, func(a, b uint64) bool {
			return a < b
		}),
	}
}

// Create assigns the next identifier, records the order as pending, and
// maintains the user and pending indexes. Returns the assigned ID.
func (s *OrderStore) Create(o *domain.Order) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.OrderID = s.nextID
	s.nextID++
	o.Status = domain.OrderStatusPending

	s.orders[o.OrderID] = o
	s.userOrders[o.UserID] = append(s.userOrders[o.UserID], o.OrderID)
	s.pending.ReplaceOrInsert(o.OrderID)

	return o.OrderID
}

// Get retrieves an order by ID. It returns domain.ErrOrderNotFound if
// the order does not exist.
func (s *OrderStore) Get(id uint64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// ListByUser returns the user's orders in creation order (ascending by
// ID). Returns an empty slice for unknown users.
func (s *OrderStore) ListByUser(userID string) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.userOrders[userID]
	result := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.orders[id])
	}
	return result
}

// ListPending returns all pending orders in ascending ID order, served
// from the pending index rather than a scan of the identifier range.
func (s *OrderStore) ListPending() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Order, 0, s.pending.Len())
	s.pending.Ascend(func(id uint64) bool {
		result = append(result, s.orders[id])
		return true
	})
	return result
}

// Retire transitions a pending order to the given terminal status at
// the given instant, removing it from the pending index and stamping
// the matching timestamp field. Fails with domain.ErrOrderNotFound for
// unknown IDs and domain.ErrInvalidState when the order is not pending
// or the target status is not terminal.
func (s *OrderStore) Retire(id uint64, status domain.OrderStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.OrderStatusPending || !status.Terminal() {
		return domain.ErrInvalidState
	}

	o.Status = status
	ts := at
	switch status {
	case domain.OrderStatusExecuted:
		o.ExecutedAt = &ts
	case domain.OrderStatusCancelled:
		o.CancelledAt = &ts
	case domain.OrderStatusExpired:
		o.ExpiredAt = &ts
	}
	s.pending.Delete(id)

	return nil
}

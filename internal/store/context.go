package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/stellarnova/limitd/internal/domain"
)

var ctxKeyPrefix = []byte("ctx:")

// ContextStore is the durable store for execution contexts, backed by
// pebble so a dispatched-but-unresolved swap request survives a process
// restart. It enforces single-writer-per-key semantics: at most one
// live context per order, checked under an internal mutex so that a
// concurrent Put for the same order cannot race past the existence
// check.
type ContextStore struct {
	mu sync.Mutex
	db *pebble.DB
}

// NewContextStore opens (or creates) the pebble database at path.
func NewContextStore(path string) (*ContextStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open context store: %w", err)
	}
	return &ContextStore{db: db}, nil
}

// Close closes the underlying database.
func (s *ContextStore) Close() error { return s.db.Close() }

func ctxKey(orderID uint64) []byte {
	key := make([]byte, len(ctxKeyPrefix)+8)
	copy(key, ctxKeyPrefix)
	binary.BigEndian.PutUint64(key[len(ctxKeyPrefix):], orderID)
	return key
}

// Put persists a new context for its order. Fails with
// domain.ErrDuplicateExecution if a live context already exists for
// that order. The write is synced before Put returns.
func (s *ContextStore) Put(ctx *domain.ExecutionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ctxKey(ctx.OrderID)
	_, closer, err := s.db.Get(key)
	if err == nil {
		closer.Close()
		return domain.ErrDuplicateExecution
	}
	if err != pebble.ErrNotFound {
		return fmt.Errorf("check context %d: %w", ctx.OrderID, err)
	}

	val, err := json.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("encode context %d: %w", ctx.OrderID, err)
	}
	if err := s.db.Set(key, val, pebble.Sync); err != nil {
		return fmt.Errorf("write context %d: %w", ctx.OrderID, err)
	}
	return nil
}

// Take retrieves and deletes the context for the order as one atomic
// step. Fails with domain.ErrContextNotFound if no live context exists,
// which covers duplicate or stray resolution deliveries.
func (s *ContextStore) Take(orderID uint64) (*domain.ExecutionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ctxKey(orderID)
	val, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, domain.ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read context %d: %w", orderID, err)
	}

	var ctx domain.ExecutionContext
	decodeErr := json.Unmarshal(val, &ctx)
	closer.Close()
	if decodeErr != nil {
		return nil, fmt.Errorf("decode context %d: %w", orderID, decodeErr)
	}

	if err := s.db.Delete(key, pebble.Sync); err != nil {
		return nil, fmt.Errorf("delete context %d: %w", orderID, err)
	}
	return &ctx, nil
}

// Has reports whether a live context exists for the order.
func (s *ContextStore) Has(orderID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, closer, err := s.db.Get(ctxKey(orderID))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check context %d: %w", orderID, err)
	}
	closer.Close()
	return true, nil
}

// List returns all live contexts in ascending order-ID order.
func (s *ContextStore) List() ([]*domain.ExecutionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upper := make([]byte, len(ctxKeyPrefix))
	copy(upper, ctxKeyPrefix)
	upper[len(upper)-1]++

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: ctxKeyPrefix,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf("iterate contexts: %w", err)
	}
	defer iter.Close()

	var result []*domain.ExecutionContext
	for iter.First(); iter.Valid(); iter.Next() {
		var ctx domain.ExecutionContext
		if err := json.Unmarshal(iter.Value(), &ctx); err != nil {
			return nil, fmt.Errorf("decode context at %x: %w", iter.Key(), err)
		}
		result = append(result, &ctx)
	}
	return result, iter.Error()
}

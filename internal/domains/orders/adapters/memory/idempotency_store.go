package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps retry keys for the lifetime of the process. Nothing expires.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]ports.IdempotencyEntry
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[string]ports.IdempotencyEntry)}
}

func (s *IdempotencyStore) Lookup(_ context.Context, key string) (*ports.IdempotencyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (s *IdempotencyStore) Reserve(_ context.Context, entry ports.IdempotencyEntry) (*ports.IdempotencyEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, taken := s.entries[entry.Key]; taken {
		return &stored, false, nil
	}
	entry.OrderID = ""
	s.entries[entry.Key] = entry
	return &entry, true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || !entry.Pending() {
		return fmt.Errorf("idempotency key %q is not reserved", key)
	}
	entry.OrderID = orderID
	s.entries[key] = entry
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok && entry.Pending() {
		delete(s.entries, key)
	}
	return nil
}

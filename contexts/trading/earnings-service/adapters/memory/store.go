package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"inflectiv/contexts/trading/earnings-service/domain/entities"
)

// Store keeps transactions in insertion order with an event-id index for
// replay absorption.
type Store struct {
	mu           sync.RWMutex
	transactions []entities.Transaction
	byEventID    map[string]struct{}
}

func NewStore() *Store {
	return &Store{byEventID: make(map[string]struct{})}
}

func (s *Store) RecordTransaction(_ context.Context, tx entities.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEventID[tx.EventID]; exists {
		return false, nil
	}
	s.byEventID[tx.EventID] = struct{}{}
	s.transactions = append(s.transactions, tx)
	return true, nil
}

func (s *Store) ListByIdentity(_ context.Context, identity string) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.Touches(identity) {
			items = append(items, tx)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].OccurredAt.Before(items[j].OccurredAt) })
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

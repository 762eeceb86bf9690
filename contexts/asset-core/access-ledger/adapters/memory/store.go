package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"inflectiv/contexts/asset-core/access-ledger/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
)

// Store is an in-memory ledger repository for local runtime and tests.
// Each ledger carries its own mutex so mutations of unrelated ledgers never
// serialize against each other; the outer lock only guards the map.
type Store struct {
	mu       sync.RWMutex
	ledgers  map[string]*ledgerState
	sequence uint64
}

type ledgerState struct {
	mu     sync.Mutex
	ledger entities.Ledger
}

func NewStore() *Store {
	return &Store{
		ledgers: make(map[string]*ledgerState),
	}
}

func (s *Store) CreateLedger(_ context.Context, ledger entities.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ledgers[ledger.LedgerID]; exists {
		return fmt.Errorf("ledger %s already exists", ledger.LedgerID)
	}
	s.ledgers[ledger.LedgerID] = &ledgerState{ledger: ledger.Clone()}
	return nil
}

func (s *Store) GetLedger(_ context.Context, ledgerID string) (entities.Ledger, error) {
	state, err := s.state(ledgerID)
	if err != nil {
		return entities.Ledger{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.ledger.Clone(), nil
}

func (s *Store) UpdateLedger(_ context.Context, ledgerID string, mutate func(*entities.Ledger) error) error {
	state, err := s.state(ledgerID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	// Mutations run against a copy so a failed mutate leaves the aggregate
	// byte-identical to before the call.
	working := state.ledger.Clone()
	if err := mutate(&working); err != nil {
		return err
	}
	state.ledger = working
	return nil
}

func (s *Store) DiscardLedger(_ context.Context, ledgerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.ledgers[ledgerID]
	if !ok {
		return domainerrors.ErrLedgerNotFound
	}
	state.mu.Lock()
	attached := state.ledger.Attached
	state.mu.Unlock()
	if attached {
		return domainerrors.ErrLedgerAttached
	}
	delete(s.ledgers, ledgerID)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("ledger-%d", value), nil
}

func (s *Store) state(ledgerID string) (*ledgerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.ledgers[ledgerID]
	if !ok {
		return nil, domainerrors.ErrLedgerNotFound
	}
	return state, nil
}

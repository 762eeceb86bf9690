package memory

import (
	"context"
	"sort"
	"sync"

	"inflectiv/contexts/asset-core/deployer-registry/ports"
)

// Store is an in-memory adapter implementing deployer-registry ports for
// local runtime and tests. It is not intended as production persistence.
type Store struct {
	mu      sync.RWMutex
	entries map[string]bool
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]bool),
	}
}

func (s *Store) GetAuthorization(_ context.Context, identity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[identity], nil
}

func (s *Store) PutAuthorization(_ context.Context, identity string, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity] = authorized
	return nil
}

func (s *Store) ListAuthorized(_ context.Context) ([]ports.Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ports.Authorization, 0, len(s.entries))
	for identity, authorized := range s.entries {
		if !authorized {
			continue
		}
		result = append(result, ports.Authorization{Identity: identity, Authorized: true})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Identity < result[j].Identity
	})
	return result, nil
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"
)

// Store is an in-memory asset repository for local runtime and tests.
// A single mutex section per method approximates transactional semantics:
// record insert, index update and outbox append succeed/fail together.
type Store struct {
	mu          sync.RWMutex
	assets      map[uint64]entities.AssetRecord
	externalIdx map[string]uint64
	nextHandle  uint64
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	outboxSent  map[string]time.Time
	sequence    uint64
}

func NewStore() *Store {
	return &Store{
		assets:      make(map[uint64]entities.AssetRecord),
		externalIdx: make(map[string]uint64),
		nextHandle:  1,
		outbox:      make(map[string]ports.OutboxMessage),
		outboxOrder: make([]string, 0),
		outboxSent:  make(map[string]time.Time),
	}
}

func (s *Store) CreateAsset(_ context.Context, record entities.AssetRecord, event ports.RegisteredEvent) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.externalIdx[record.ExternalID]; exists {
		return 0, domainerrors.ErrAssetAlreadyRegistered
	}

	handle := s.nextHandle
	s.nextHandle++
	record.Handle = handle

	payload, err := marshalRegisteredEvent(handle, event)
	if err != nil {
		return 0, err
	}

	s.assets[handle] = record
	s.externalIdx[record.ExternalID] = handle
	s.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)

	return handle, nil
}

func (s *Store) GetAsset(_ context.Context, handle uint64) (entities.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assets[handle]
	if !ok {
		return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
	}
	return asset, nil
}

func (s *Store) GetAssetByExternalID(_ context.Context, externalID string) (entities.AssetRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handle, ok := s.externalIdx[externalID]
	if !ok {
		return entities.AssetRecord{}, false, nil
	}
	asset, exists := s.assets[handle]
	if !exists {
		return entities.AssetRecord{}, false, fmt.Errorf("external id index points to missing handle %d", handle)
	}
	return asset, true, nil
}

func (s *Store) ListAssetsByOwner(_ context.Context, owner string) ([]entities.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.AssetRecord, 0)
	for _, asset := range s.assets {
		if asset.Owner == owner {
			result = append(result, asset)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Handle < result[j].Handle
	})
	return result, nil
}

func (s *Store) UpdateAsset(_ context.Context, handle uint64, mutate func(*entities.AssetRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[handle]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	if err := mutate(&asset); err != nil {
		return err
	}
	s.assets[handle] = asset
	return nil
}

func (s *Store) DiscardAsset(_ context.Context, handle uint64, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[handle]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	delete(s.assets, handle)
	delete(s.externalIdx, asset.ExternalID)
	delete(s.outbox, eventID)
	for i, id := range s.outboxOrder {
		if id == eventID {
			s.outboxOrder = append(s.outboxOrder[:i], s.outboxOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return fmt.Errorf("unknown outbox id %s", outboxID)
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("asset-evt-%d", value), nil
}

func marshalRegisteredEvent(handle uint64, event ports.RegisteredEvent) ([]byte, error) {
	return json.Marshal(map[string]any{
		"handle":        handle,
		"external_id":   event.ExternalID,
		"owner":         event.Owner,
		"ledger_id":     event.LedgerID,
		"initial_units": event.InitialUnits,
	})
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"inflectiv/contexts/trading/marketplace/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	"inflectiv/contexts/trading/marketplace/ports"
)

type listingState struct {
	mu      sync.Mutex
	listing entities.Listing
}

// Store keeps listings behind one mutex per listing so unrelated purchases
// never serialize on each other. The listing index and the outbox each have
// their own lock; lock order is always index -> listing, and the outbox lock
// is never held together with either.
type Store struct {
	mu            sync.RWMutex
	listings      map[string]*listingState
	activeByAsset map[uint64]string

	outboxMu    sync.Mutex
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	outboxSent  map[string]bool

	sequence uint64
}

func NewStore() *Store {
	return &Store{
		listings:      make(map[string]*listingState),
		activeByAsset: make(map[uint64]string),
		outbox:        make(map[string]ports.OutboxMessage),
		outboxSent:    make(map[string]bool),
	}
}

func (s *Store) CreateListing(_ context.Context, listing entities.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.activeByAsset[listing.AssetHandle]; exists {
		return domainerrors.ErrListingAlreadyActive
	}
	s.listings[listing.ListingID] = &listingState{listing: listing}
	s.activeByAsset[listing.AssetHandle] = listing.ListingID
	return nil
}

func (s *Store) GetListing(_ context.Context, listingID string) (entities.Listing, error) {
	state, err := s.state(listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.listing, nil
}

func (s *Store) GetActiveListingByAsset(_ context.Context, assetHandle uint64) (entities.Listing, bool, error) {
	s.mu.RLock()
	listingID, exists := s.activeByAsset[assetHandle]
	var state *listingState
	if exists {
		state = s.listings[listingID]
	}
	s.mu.RUnlock()
	if !exists {
		return entities.Listing{}, false, nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.listing, true, nil
}

func (s *Store) ListListings(_ context.Context, activeOnly bool) ([]entities.Listing, error) {
	s.mu.RLock()
	states := make([]*listingState, 0, len(s.listings))
	for _, state := range s.listings {
		states = append(states, state)
	}
	s.mu.RUnlock()

	items := make([]entities.Listing, 0, len(states))
	for _, state := range states {
		state.mu.Lock()
		listing := state.listing
		state.mu.Unlock()
		if activeOnly && !listing.Active {
			continue
		}
		items = append(items, listing)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ListingID < items[j].ListingID })
	return items, nil
}

func (s *Store) UpdateListing(_ context.Context, listingID string, mutate func(*entities.Listing) error) error {
	state, err := s.state(listingID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	updated := state.listing
	if err := mutate(&updated); err != nil {
		state.mu.Unlock()
		return err
	}
	wasActive := state.listing.Active
	state.listing = updated
	assetHandle := updated.AssetHandle
	state.mu.Unlock()

	if wasActive && !updated.Active {
		s.mu.Lock()
		if s.activeByAsset[assetHandle] == listingID {
			delete(s.activeByAsset, assetHandle)
		}
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) ReserveUnits(_ context.Context, listingID string, unitCount uint64) (entities.Listing, error) {
	state, err := s.state(listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	if !state.listing.Active {
		return entities.Listing{}, domainerrors.ErrListingNotActive
	}
	if unitCount > state.listing.AvailableUnits {
		return entities.Listing{}, domainerrors.ErrInsufficientAvailableUnits
	}
	state.listing.AvailableUnits -= unitCount
	return state.listing, nil
}

func (s *Store) ReleaseUnits(_ context.Context, listingID string, unitCount uint64) error {
	state, err := s.state(listingID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.listing.AvailableUnits += unitCount
	return nil
}

func (s *Store) FinalizePurchase(_ context.Context, listingID string, unitCount uint64, event ports.PurchaseEvent) error {
	state, err := s.state(listingID)
	if err != nil {
		return err
	}

	payload, err := marshalPurchaseEvent(event)
	if err != nil {
		return err
	}

	state.mu.Lock()
	state.listing.TotalSold += unitCount
	state.mu.Unlock()

	s.outboxMu.Lock()
	s.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)
	s.outboxMu.Unlock()
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	messages := make([]ports.OutboxMessage, 0, limit)
	for _, outboxID := range s.outboxOrder {
		if s.outboxSent[outboxID] {
			continue
		}
		messages = append(messages, s.outbox[outboxID])
		if len(messages) == limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()
	s.outboxSent[outboxID] = true
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("mkt-%d", value), nil
}

func (s *Store) state(listingID string) (*listingState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, exists := s.listings[listingID]
	if !exists {
		return nil, domainerrors.ErrListingNotFound
	}
	return state, nil
}

func marshalPurchaseEvent(event ports.PurchaseEvent) ([]byte, error) {
	return json.Marshal(map[string]any{
		"listing_id":       event.ListingID,
		"asset_handle":     event.AssetHandle,
		"buyer":            event.Buyer,
		"seller":           event.Seller,
		"unit_count":       event.UnitCount,
		"total_price":      event.TotalPrice,
		"platform_fee":     event.PlatformFee,
		"royalty_amount":   event.RoyaltyAmount,
		"royalty_receiver": event.RoyaltyReceiver,
		"seller_proceeds":  event.SellerProceeds,
	})
}

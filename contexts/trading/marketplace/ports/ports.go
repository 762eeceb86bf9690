package ports

import (
	"context"
	"time"

	"inflectiv/contexts/trading/marketplace/domain/entities"
	contractsv1 "inflectiv/contracts/gen/events/v1"
)

// PurchaseEvent is the outbound integration payload persisted to outbox in
// the same atomic step that finalizes a purchase.
type PurchaseEvent struct {
	EventID         string
	EventType       string
	ListingID       string
	AssetHandle     uint64
	Buyer           string
	Seller          string
	UnitCount       uint64
	TotalPrice      uint64
	PlatformFee     uint64
	RoyaltyAmount   uint64
	RoyaltyReceiver string
	SellerProceeds  uint64
	PartitionKey    string
	OccurredAt      time.Time
}

// ListingRepository owns listing persistence. One listing per asset may be
// active at a time; CreateListing enforces that invariant atomically.
type ListingRepository interface {
	CreateListing(ctx context.Context, listing entities.Listing) error
	GetListing(ctx context.Context, listingID string) (entities.Listing, error)
	GetActiveListingByAsset(ctx context.Context, assetHandle uint64) (entities.Listing, bool, error)
	ListListings(ctx context.Context, activeOnly bool) ([]entities.Listing, error)
	// UpdateListing applies the mutation as one atomic unit per listing.
	UpdateListing(ctx context.Context, listingID string, mutate func(*entities.Listing) error) error
	// ReserveUnits atomically re-checks the listing is active and has the
	// requested units, then decrements AvailableUnits. It returns the listing
	// as of the reservation so the caller can detect a price change since its
	// quote.
	ReserveUnits(ctx context.Context, listingID string, unitCount uint64) (entities.Listing, error)
	// ReleaseUnits compensates a failed purchase by restoring reserved units.
	ReleaseUnits(ctx context.Context, listingID string, unitCount uint64) error
	// FinalizePurchase increments TotalSold and appends the purchase outbox
	// event in one atomic step.
	FinalizePurchase(ctx context.Context, listingID string, unitCount uint64, event PurchaseEvent) error
}

// AssetView is the slice of a registered asset the marketplace needs.
type AssetView struct {
	Handle          uint64
	Owner           string
	LedgerID        string
	Active          bool
	RoyaltyReceiver string
	RoyaltyRateBps  uint32
}

// AssetDirectory fronts the asset registry for ownership and royalty lookups.
type AssetDirectory interface {
	GetAsset(ctx context.Context, handle uint64) (AssetView, error)
}

// AccessRights fronts the access-rights ledger in whole access units; the
// adapter owns the base-unit scaling. TransferUnits spends the allowance the
// seller granted to the marketplace's spender identity.
type AccessRights interface {
	TransferUnits(ctx context.Context, ledgerID string, spender string, from string, to string, unitCount uint64) error
	// ReturnUnits hands units back during compensation. It moves the holder's
	// own balance, so it needs no allowance.
	ReturnUnits(ctx context.Context, ledgerID string, from string, to string, unitCount uint64) error
	UnitBalance(ctx context.Context, ledgerID string, identity string) (uint64, error)
}

// PaymentLeg is one recipient of a split payment.
type PaymentLeg struct {
	To     string
	Amount uint64
}

// SplitPayment debits the payer once and credits every leg, atomically.
type SplitPayment struct {
	PaymentID string
	Payer     string
	Legs      []PaymentLeg
}

// PaymentRail is the external settlement system used for the fee split.
// Reverse undoes a previously applied split when a later purchase step fails.
type PaymentRail interface {
	Split(ctx context.Context, payment SplitPayment) error
	Reverse(ctx context.Context, paymentID string) error
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts listing/payment/event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

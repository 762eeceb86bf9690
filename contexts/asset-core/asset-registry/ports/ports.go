package ports

import (
	"context"
	"time"

	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	contractsv1 "inflectiv/contracts/gen/events/v1"
)

// RegisteredEvent is the outbound integration payload persisted to outbox
// when a registration commits. Off-platform metadata stores key their rows by
// the external id carried here.
type RegisteredEvent struct {
	EventID      string
	EventType    string
	ExternalID   string
	Owner        string
	LedgerID     string
	InitialUnits uint64
	PartitionKey string
	OccurredAt   time.Time
}

// Repository owns asset persistence and the registration write boundary.
type Repository interface {
	// CreateAsset atomically assigns the next handle, enforces external-id
	// uniqueness, and appends the registered outbox event. On
	// ErrAssetAlreadyRegistered nothing is persisted and no handle is consumed.
	CreateAsset(ctx context.Context, record entities.AssetRecord, event RegisteredEvent) (uint64, error)
	GetAsset(ctx context.Context, handle uint64) (entities.AssetRecord, error)
	GetAssetByExternalID(ctx context.Context, externalID string) (entities.AssetRecord, bool, error)
	ListAssetsByOwner(ctx context.Context, owner string) ([]entities.AssetRecord, error)
	// UpdateAsset applies the mutation as one atomic unit per aggregate.
	UpdateAsset(ctx context.Context, handle uint64, mutate func(*entities.AssetRecord) error) error
	// DiscardAsset removes a just-created record and its pending outbox event.
	// Registration compensation only; never called once a ledger is attached.
	DiscardAsset(ctx context.Context, handle uint64, eventID string) error
}

// LedgerProvision captures what the registry asks the factory for.
type LedgerProvision struct {
	Controller      string
	InitialUnits    uint64
	AccessThreshold uint64
	BurnOnConsume   bool
}

// LedgerFactory fronts the access-ledger module. ProvisionLedger consults the
// deployer authorization gate with the registry's provisioning identity.
type LedgerFactory interface {
	ProvisionLedger(ctx context.Context, provision LedgerProvision) (string, error)
	AttachLedger(ctx context.Context, ledgerID string) error
	// DiscardLedger compensates a registration that lost the uniqueness race
	// after provisioning; only never-attached ledgers can be discarded.
	DiscardLedger(ctx context.Context, ledgerID string) error
	SetLedgerController(ctx context.Context, ledgerID string, caller string, newController string) error
	MintAdditional(ctx context.Context, ledgerID string, caller string, to string, amount uint64) error
	HasAccess(ctx context.Context, ledgerID string, identity string) (bool, error)
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
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

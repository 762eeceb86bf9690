package ports

import (
	"context"
	"time"

	"inflectiv/contexts/trading/earnings-service/domain/entities"
	contractsv1 "inflectiv/contracts/gen/events/v1"
)

// TransactionRepository persists settled purchases keyed by event id.
type TransactionRepository interface {
	// RecordTransaction inserts the transaction if its event id is new and
	// reports whether an insert happened; redeliveries are absorbed silently.
	RecordTransaction(ctx context.Context, tx entities.Transaction) (bool, error)
	// ListByIdentity returns every transaction the identity participates in,
	// oldest first.
	ListByIdentity(ctx context.Context, identity string) ([]entities.Transaction, error)
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventSubscriber attaches consumer handlers to bus topics.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

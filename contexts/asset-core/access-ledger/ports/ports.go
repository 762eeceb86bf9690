package ports

import (
	"context"
	"time"

	"inflectiv/contexts/asset-core/access-ledger/domain/entities"
)

// Repository owns ledger persistence. UpdateLedger must apply the mutation as
// one atomic unit relative to every other mutation of the same ledger; the
// passed aggregate is discarded when mutate returns an error.
type Repository interface {
	CreateLedger(ctx context.Context, ledger entities.Ledger) error
	GetLedger(ctx context.Context, ledgerID string) (entities.Ledger, error)
	UpdateLedger(ctx context.Context, ledgerID string, mutate func(*entities.Ledger) error) error
	// DiscardLedger removes a never-attached ledger. Registration compensation
	// path only; attached ledgers are never destroyed.
	DiscardLedger(ctx context.Context, ledgerID string) error
}

// DeployerGate is the authorization registry consulted before provisioning.
type DeployerGate interface {
	IsAuthorized(ctx context.Context, identity string) (bool, error)
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts ledger identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

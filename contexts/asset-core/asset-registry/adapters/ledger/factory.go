package ledgeradapter

import (
	"context"
	"math"

	ledgerapp "inflectiv/contexts/asset-core/access-ledger/application"
	ledgerentities "inflectiv/contexts/asset-core/access-ledger/domain/entities"
	registryerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"
)

// Factory adapts the access-ledger module to the registry's LedgerFactory
// port. Provisioning runs under the registry's own identity, which must be an
// authorized deployer.
type Factory struct {
	Ledgers     ledgerapp.Service
	Provisioner string
}

func (f Factory) ProvisionLedger(ctx context.Context, provision ports.LedgerProvision) (string, error) {
	if provision.InitialUnits > math.MaxUint64/ledgerentities.AccessUnitSize {
		return "", registryerrors.ErrInvalidAsset
	}
	ledger, err := f.Ledgers.CreateLedger(ctx, ledgerapp.CreateLedgerInput{
		Provisioner:     f.Provisioner,
		Controller:      provision.Controller,
		InitialSupply:   provision.InitialUnits * ledgerentities.AccessUnitSize,
		AccessThreshold: provision.AccessThreshold,
		BurnOnConsume:   provision.BurnOnConsume,
	})
	if err != nil {
		return "", err
	}
	return ledger.LedgerID, nil
}

func (f Factory) AttachLedger(ctx context.Context, ledgerID string) error {
	return f.Ledgers.Attach(ctx, ledgerID)
}

func (f Factory) DiscardLedger(ctx context.Context, ledgerID string) error {
	return f.Ledgers.Discard(ctx, ledgerID)
}

func (f Factory) SetLedgerController(ctx context.Context, ledgerID string, caller string, newController string) error {
	return f.Ledgers.SetController(ctx, ledgerID, caller, newController)
}

func (f Factory) MintAdditional(ctx context.Context, ledgerID string, caller string, to string, amount uint64) error {
	return f.Ledgers.MintAdditional(ctx, ledgerID, caller, to, amount)
}

func (f Factory) HasAccess(ctx context.Context, ledgerID string, identity string) (bool, error) {
	return f.Ledgers.HasAccess(ctx, ledgerID, identity)
}

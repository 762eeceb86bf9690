package commands

import (
	"context"
	"log/slog"

	application "inflectiv/contexts/asset-core/asset-registry/application"
	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"
)

// MintUnitsUseCase delegates additional minting to the asset's ledger,
// restricted to the asset's current owner.
type MintUnitsUseCase struct {
	Repo    ports.Repository
	Ledgers ports.LedgerFactory
	Logger  *slog.Logger
}

func (u MintUnitsUseCase) Execute(ctx context.Context, caller string, handle uint64, to string, amount uint64) error {
	caller = normalizeIdentity(caller)
	asset, err := u.Repo.GetAsset(ctx, handle)
	if err != nil {
		return err
	}
	if asset.Owner != caller {
		return domainerrors.ErrNotOwner
	}
	if err := u.Ledgers.MintAdditional(ctx, asset.LedgerID, caller, to, amount); err != nil {
		return err
	}
	application.ResolveLogger(u.Logger).Info("additional units minted",
		"event", "asset_units_minted",
		"module", "asset-core/asset-registry",
		"layer", "application",
		"handle", handle,
		"to", normalizeIdentity(to),
		"amount", amount,
	)
	return nil
}

// SetRoyaltyUseCase updates the royalty receiver/rate, owner-only.
type SetRoyaltyUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (u SetRoyaltyUseCase) Execute(ctx context.Context, caller string, handle uint64, receiver string, rateBps uint32) error {
	caller = normalizeIdentity(caller)
	receiver = normalizeIdentity(receiver)
	if receiver == "" {
		return domainerrors.ErrInvalidAsset
	}
	if rateBps > entities.MaxRoyaltyRateBps {
		return domainerrors.ErrInvalidRoyaltyRate
	}
	err := u.Repo.UpdateAsset(ctx, handle, func(asset *entities.AssetRecord) error {
		if asset.Owner != caller {
			return domainerrors.ErrNotOwner
		}
		asset.Royalty = entities.Royalty{Receiver: receiver, RateBps: rateBps}
		return nil
	})
	if err != nil {
		return err
	}
	application.ResolveLogger(u.Logger).Info("royalty updated",
		"event", "asset_royalty_updated",
		"module", "asset-core/asset-registry",
		"layer", "application",
		"handle", handle,
		"receiver", receiver,
		"rate_bps", rateBps,
	)
	return nil
}

// SetActiveUseCase toggles marketplace visibility, owner-only. Existing
// listings and balances are untouched.
type SetActiveUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (u SetActiveUseCase) Execute(ctx context.Context, caller string, handle uint64, active bool) error {
	caller = normalizeIdentity(caller)
	return u.Repo.UpdateAsset(ctx, handle, func(asset *entities.AssetRecord) error {
		if asset.Owner != caller {
			return domainerrors.ErrNotOwner
		}
		asset.Active = active
		return nil
	})
}

// TransferOwnershipUseCase moves the record to a new owner and hands the
// ledger controller role over with it. Royalty configuration is unchanged so
// the original creator keeps receiving their share.
type TransferOwnershipUseCase struct {
	Repo    ports.Repository
	Ledgers ports.LedgerFactory
	Logger  *slog.Logger
}

func (u TransferOwnershipUseCase) Execute(ctx context.Context, caller string, handle uint64, newOwner string) error {
	caller = normalizeIdentity(caller)
	newOwner = normalizeIdentity(newOwner)
	if newOwner == "" {
		return domainerrors.ErrInvalidAsset
	}

	var ledgerID string
	err := u.Repo.UpdateAsset(ctx, handle, func(asset *entities.AssetRecord) error {
		if asset.Owner != caller {
			return domainerrors.ErrNotOwner
		}
		asset.Owner = newOwner
		ledgerID = asset.LedgerID
		return nil
	})
	if err != nil {
		return err
	}
	if err := u.Ledgers.SetLedgerController(ctx, ledgerID, caller, newOwner); err != nil {
		return err
	}

	application.ResolveLogger(u.Logger).Info("asset ownership transferred",
		"event", "asset_ownership_transferred",
		"module", "asset-core/asset-registry",
		"layer", "application",
		"handle", handle,
		"from", caller,
		"to", newOwner,
	)
	return nil
}

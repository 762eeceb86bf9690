package queries

import (
	"context"
	"log/slog"
	"strings"

	"inflectiv/contexts/asset-core/asset-registry/ports"
)

// RoyaltyQuote is the (receiver, amount) pair for one hypothetical sale price.
type RoyaltyQuote struct {
	Receiver string
	Amount   uint64
}

type RoyaltyInfoUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (u RoyaltyInfoUseCase) Execute(ctx context.Context, handle uint64, salePrice uint64) (RoyaltyQuote, error) {
	asset, err := u.Repo.GetAsset(ctx, handle)
	if err != nil {
		return RoyaltyQuote{}, err
	}
	return RoyaltyQuote{
		Receiver: asset.Royalty.Receiver,
		Amount:   asset.RoyaltyAmount(salePrice),
	}, nil
}

// CheckAccessUseCase answers whether an identity holds access to the asset's
// underlying data, delegating the threshold decision to the ledger.
type CheckAccessUseCase struct {
	Repo    ports.Repository
	Ledgers ports.LedgerFactory
	Logger  *slog.Logger
}

func (u CheckAccessUseCase) Execute(ctx context.Context, handle uint64, identity string) (bool, error) {
	asset, err := u.Repo.GetAsset(ctx, handle)
	if err != nil {
		return false, err
	}
	return u.Ledgers.HasAccess(ctx, asset.LedgerID, strings.ToLower(strings.TrimSpace(identity)))
}

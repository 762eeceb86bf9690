package queries

import (
	"context"
	"log/slog"

	"inflectiv/contexts/trading/marketplace/domain/entities"
	"inflectiv/contexts/trading/marketplace/ports"
)

// CalculatePurchaseUseCase is the pre-flight price quote. It reads a single
// consistent snapshot and mutates nothing, so two calls with no intervening
// writes return identical quotes.
type CalculatePurchaseUseCase struct {
	Repo           ports.ListingRepository
	Assets         ports.AssetDirectory
	PlatformFeeBps uint32
	Logger         *slog.Logger
}

func (u CalculatePurchaseUseCase) Execute(ctx context.Context, listingID string, unitCount uint64) (entities.PurchaseQuote, error) {
	listing, err := u.Repo.GetListing(ctx, listingID)
	if err != nil {
		return entities.PurchaseQuote{}, err
	}
	asset, err := u.Assets.GetAsset(ctx, listing.AssetHandle)
	if err != nil {
		return entities.PurchaseQuote{}, err
	}
	return listing.Quote(unitCount, u.PlatformFeeBps, asset.RoyaltyRateBps, asset.RoyaltyReceiver)
}

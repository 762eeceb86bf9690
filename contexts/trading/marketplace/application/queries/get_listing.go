package queries

import (
	"context"
	"log/slog"

	"inflectiv/contexts/trading/marketplace/domain/entities"
	"inflectiv/contexts/trading/marketplace/ports"
)

type GetListingUseCase struct {
	Repo   ports.ListingRepository
	Logger *slog.Logger
}

func (u GetListingUseCase) Execute(ctx context.Context, listingID string) (entities.Listing, error) {
	return u.Repo.GetListing(ctx, listingID)
}

type ListListingsUseCase struct {
	Repo   ports.ListingRepository
	Logger *slog.Logger
}

func (u ListListingsUseCase) Execute(ctx context.Context, activeOnly bool) ([]entities.Listing, error) {
	return u.Repo.ListListings(ctx, activeOnly)
}

// ActiveListingForAssetUseCase resolves the single active listing, if any,
// backing one asset handle.
type ActiveListingForAssetUseCase struct {
	Repo   ports.ListingRepository
	Logger *slog.Logger
}

func (u ActiveListingForAssetUseCase) Execute(ctx context.Context, assetHandle uint64) (entities.Listing, bool, error) {
	return u.Repo.GetActiveListingByAsset(ctx, assetHandle)
}

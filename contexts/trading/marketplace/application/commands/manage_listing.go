package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "inflectiv/contexts/trading/marketplace/application"
	"inflectiv/contexts/trading/marketplace/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	"inflectiv/contexts/trading/marketplace/ports"
)

type CreateListingCommand struct {
	Caller       string
	AssetHandle  uint64
	PricePerUnit uint64
	UnitCount    uint64
}

type CreateListingUseCase struct {
	Repo            ports.ListingRepository
	Assets          ports.AssetDirectory
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	MinListingPrice uint64
	Logger          *slog.Logger
}

// Execute opens a listing for the caller over their own asset. The
// one-active-listing-per-asset invariant is enforced by the repository at
// create time, so a racing second create loses cleanly.
func (u CreateListingUseCase) Execute(ctx context.Context, cmd CreateListingCommand) (entities.Listing, error) {
	caller := normalizeIdentity(cmd.Caller)
	if caller == "" {
		return entities.Listing{}, domainerrors.ErrInvalidListing
	}
	if cmd.PricePerUnit < u.MinListingPrice {
		return entities.Listing{}, domainerrors.ErrPriceTooLow
	}

	asset, err := u.Assets.GetAsset(ctx, cmd.AssetHandle)
	if err != nil {
		return entities.Listing{}, err
	}
	if asset.Owner != caller {
		return entities.Listing{}, domainerrors.ErrNotDatasetOwner
	}
	if !asset.Active {
		return entities.Listing{}, domainerrors.ErrAssetNotTradable
	}

	listingID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Listing{}, err
	}
	listing, err := entities.NewListing(listingID, cmd.AssetHandle, caller, cmd.PricePerUnit, cmd.UnitCount, u.now())
	if err != nil {
		return entities.Listing{}, err
	}
	if err := u.Repo.CreateListing(ctx, listing); err != nil {
		return entities.Listing{}, err
	}

	application.ResolveLogger(u.Logger).Info("listing created",
		"event", "listing_created",
		"module", "trading/marketplace",
		"layer", "application",
		"listing_id", listing.ListingID,
		"asset_handle", cmd.AssetHandle,
		"seller", caller,
		"price_per_unit", cmd.PricePerUnit,
		"unit_count", cmd.UnitCount,
	)
	return listing, nil
}

func (u CreateListingUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

// CancelListingUseCase deactivates a listing. Inactive is terminal; remaining
// declared units are simply dropped, nothing was ever escrowed.
type CancelListingUseCase struct {
	Repo   ports.ListingRepository
	Logger *slog.Logger
}

func (u CancelListingUseCase) Execute(ctx context.Context, caller string, listingID string) error {
	caller = normalizeIdentity(caller)
	err := u.Repo.UpdateListing(ctx, listingID, func(listing *entities.Listing) error {
		if listing.Seller != caller {
			return domainerrors.ErrNotSeller
		}
		listing.Active = false
		return nil
	})
	if err != nil {
		return err
	}
	application.ResolveLogger(u.Logger).Info("listing cancelled",
		"event", "listing_cancelled",
		"module", "trading/marketplace",
		"layer", "application",
		"listing_id", listingID,
		"seller", caller,
	)
	return nil
}

type UpdateListingCommand struct {
	Caller          string
	ListingID       string
	NewPricePerUnit uint64
	AdditionalUnits uint64
}

// UpdateListingUseCase reprices an active listing and/or adds declared units.
type UpdateListingUseCase struct {
	Repo            ports.ListingRepository
	MinListingPrice uint64
	Logger          *slog.Logger
}

func (u UpdateListingUseCase) Execute(ctx context.Context, cmd UpdateListingCommand) error {
	caller := normalizeIdentity(cmd.Caller)
	if cmd.NewPricePerUnit < u.MinListingPrice {
		return domainerrors.ErrPriceTooLow
	}
	return u.Repo.UpdateListing(ctx, cmd.ListingID, func(listing *entities.Listing) error {
		if listing.Seller != caller {
			return domainerrors.ErrNotSeller
		}
		if !listing.Active {
			return domainerrors.ErrListingNotActive
		}
		if cmd.AdditionalUnits > 0 {
			updated := listing.AvailableUnits + cmd.AdditionalUnits
			if updated < listing.AvailableUnits {
				return domainerrors.ErrInvalidListing
			}
			listing.AvailableUnits = updated
		}
		listing.PricePerUnit = cmd.NewPricePerUnit
		return nil
	})
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

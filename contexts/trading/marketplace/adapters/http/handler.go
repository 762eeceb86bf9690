package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"inflectiv/contexts/trading/marketplace/application/commands"
	"inflectiv/contexts/trading/marketplace/application/queries"
	"inflectiv/contexts/trading/marketplace/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	httptransport "inflectiv/contexts/trading/marketplace/transport/http"
)

type Handler struct {
	CreateListing     commands.CreateListingUseCase
	UpdateListing     commands.UpdateListingUseCase
	CancelListing     commands.CancelListingUseCase
	Purchase          commands.PurchaseUseCase
	GetListing        queries.GetListingUseCase
	ActiveListing     queries.ActiveListingForAssetUseCase
	ListListings      queries.ListListingsUseCase
	CalculatePurchase queries.CalculatePurchaseUseCase
	Logger            *slog.Logger
}

// CreateListingHandler godoc
// @Summary Open a listing over the caller's asset
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (asset owner)"
// @Param request body httptransport.CreateListingRequest true "Listing"
// @Success 201 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/listings [post]
func (h Handler) CreateListingHandler(ctx context.Context, caller string, req httptransport.CreateListingRequest) (httptransport.ListingResponse, error) {
	listing, err := h.CreateListing.Execute(ctx, commands.CreateListingCommand{
		Caller:       caller,
		AssetHandle:  req.AssetHandle,
		PricePerUnit: req.PricePerUnit,
		UnitCount:    req.UnitCount,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return mapListing(listing), nil
}

// GetListingHandler godoc
// @Summary Get one listing
// @Tags marketplace
// @Produce json
// @Param listing_id path string true "Listing id"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/listings/{listing_id} [get]
func (h Handler) GetListingHandler(ctx context.Context, listingID string) (httptransport.ListingResponse, error) {
	listing, err := h.GetListing.Execute(ctx, listingID)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return mapListing(listing), nil
}

// ActiveListingForAssetHandler godoc
// @Summary Get the active listing backing an asset
// @Tags marketplace
// @Produce json
// @Param handle path int true "Asset handle"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/listing [get]
func (h Handler) ActiveListingForAssetHandler(ctx context.Context, assetHandle uint64) (httptransport.ListingResponse, error) {
	listing, exists, err := h.ActiveListing.Execute(ctx, assetHandle)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	if !exists {
		return httptransport.ListingResponse{}, domainerrors.ErrListingNotFound
	}
	return mapListing(listing), nil
}

// ListListingsHandler godoc
// @Summary List listings
// @Tags marketplace
// @Produce json
// @Param active query bool false "Only active listings"
// @Success 200 {object} httptransport.ListListingsResponse
// @Router /v1/listings [get]
func (h Handler) ListListingsHandler(ctx context.Context, activeOnly bool) (httptransport.ListListingsResponse, error) {
	items, err := h.ListListings.Execute(ctx, activeOnly)
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}
	response := httptransport.ListListingsResponse{
		Items: make([]httptransport.ListingResponse, 0, len(items)),
		Total: len(items),
	}
	for _, listing := range items {
		response.Items = append(response.Items, mapListing(listing))
	}
	return response, nil
}

// UpdateListingHandler godoc
// @Summary Reprice an active listing or add declared units
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (seller)"
// @Param listing_id path string true "Listing id"
// @Param request body httptransport.UpdateListingRequest true "Update"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/listings/{listing_id} [put]
func (h Handler) UpdateListingHandler(ctx context.Context, caller string, listingID string, req httptransport.UpdateListingRequest) (httptransport.AcceptedResponse, error) {
	err := h.UpdateListing.Execute(ctx, commands.UpdateListingCommand{
		Caller:          caller,
		ListingID:       listingID,
		NewPricePerUnit: req.NewPricePerUnit,
		AdditionalUnits: req.AdditionalUnits,
	})
	if err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{ListingID: listingID, Applied: true}, nil
}

// CancelListingHandler godoc
// @Summary Cancel a listing
// @Description Inactive is terminal; relisting the asset requires a fresh listing.
// @Tags marketplace
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (seller)"
// @Param listing_id path string true "Listing id"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/listings/{listing_id} [delete]
func (h Handler) CancelListingHandler(ctx context.Context, caller string, listingID string) (httptransport.AcceptedResponse, error) {
	if err := h.CancelListing.Execute(ctx, caller, listingID); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{ListingID: listingID, Applied: true}, nil
}

// CalculatePurchaseHandler godoc
// @Summary Quote a purchase without committing to it
// @Tags marketplace
// @Produce json
// @Param listing_id path string true "Listing id"
// @Param unit_count query int true "Units to price"
// @Success 200 {object} httptransport.QuoteResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/listings/{listing_id}/quote [get]
func (h Handler) CalculatePurchaseHandler(ctx context.Context, listingID string, unitCount uint64) (httptransport.QuoteResponse, error) {
	quote, err := h.CalculatePurchase.Execute(ctx, listingID, unitCount)
	if err != nil {
		return httptransport.QuoteResponse{}, err
	}
	return mapQuote(quote), nil
}

// PurchaseHandler godoc
// @Summary Purchase access units from a listing
// @Description Settles the three-way payment split and transfers access rights from seller to buyer as one atomic operation.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (buyer)"
// @Param listing_id path string true "Listing id"
// @Param request body httptransport.PurchaseRequest true "Purchase"
// @Success 200 {object} httptransport.PurchaseResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/listings/{listing_id}/purchase [post]
func (h Handler) PurchaseHandler(ctx context.Context, caller string, listingID string, req httptransport.PurchaseRequest) (httptransport.PurchaseResponse, error) {
	result, err := h.Purchase.Execute(ctx, commands.PurchaseCommand{
		Buyer:         caller,
		ListingID:     listingID,
		UnitCount:     req.UnitCount,
		PaymentAmount: req.PaymentAmount,
	})
	if err != nil {
		return httptransport.PurchaseResponse{}, err
	}
	return httptransport.PurchaseResponse{
		Quote:   mapQuote(result.Quote),
		Listing: mapListing(result.Listing),
	}, nil
}

func mapListing(listing entities.Listing) httptransport.ListingResponse {
	return httptransport.ListingResponse{
		ListingID:      listing.ListingID,
		AssetHandle:    listing.AssetHandle,
		Seller:         listing.Seller,
		PricePerUnit:   listing.PricePerUnit,
		AvailableUnits: listing.AvailableUnits,
		TotalSold:      listing.TotalSold,
		Active:         listing.Active,
		CreatedAt:      listing.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapQuote(quote entities.PurchaseQuote) httptransport.QuoteResponse {
	return httptransport.QuoteResponse{
		ListingID:       quote.ListingID,
		UnitCount:       quote.UnitCount,
		TotalPrice:      quote.TotalPrice,
		PlatformFee:     quote.PlatformFee,
		RoyaltyAmount:   quote.RoyaltyAmount,
		RoyaltyReceiver: quote.RoyaltyReceiver,
		SellerProceeds:  quote.SellerProceeds,
	}
}

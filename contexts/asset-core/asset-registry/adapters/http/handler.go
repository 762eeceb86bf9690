package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"inflectiv/contexts/asset-core/asset-registry/application/commands"
	"inflectiv/contexts/asset-core/asset-registry/application/queries"
	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	httptransport "inflectiv/contexts/asset-core/asset-registry/transport/http"
)

type Handler struct {
	RegisterAsset     commands.RegisterAssetUseCase
	MintUnits         commands.MintUnitsUseCase
	SetRoyalty        commands.SetRoyaltyUseCase
	SetActive         commands.SetActiveUseCase
	TransferOwnership commands.TransferOwnershipUseCase
	GetAsset          queries.GetAssetUseCase
	ListAssets        queries.ListAssetsByOwnerUseCase
	RoyaltyInfo       queries.RoyaltyInfoUseCase
	CheckAccess       queries.CheckAccessUseCase
	Logger            *slog.Logger
}

// RegisterAssetHandler godoc
// @Summary Register a dataset and provision its access ledger
// @Tags asset-registry
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (asset owner)"
// @Param request body httptransport.RegisterAssetRequest true "Registration"
// @Success 201 {object} httptransport.AssetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/assets [post]
func (h Handler) RegisterAssetHandler(ctx context.Context, caller string, req httptransport.RegisterAssetRequest) (httptransport.AssetResponse, error) {
	result, err := h.RegisterAsset.Execute(ctx, commands.RegisterAssetCommand{
		Owner:           caller,
		ExternalID:      req.ExternalID,
		Name:            req.Name,
		Category:        req.Category,
		MetadataRef:     req.MetadataRef,
		InitialUnits:    req.InitialUnits,
		AccessThreshold: req.AccessThreshold,
		BurnOnConsume:   req.BurnOnConsume,
	})
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(result.Asset), nil
}

// GetAssetHandler godoc
// @Summary Get one asset record
// @Tags asset-registry
// @Produce json
// @Param handle path int true "Asset handle"
// @Success 200 {object} httptransport.AssetResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle} [get]
func (h Handler) GetAssetHandler(ctx context.Context, handle uint64) (httptransport.AssetResponse, error) {
	asset, err := h.GetAsset.Execute(ctx, handle)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

// GetAssetByExternalIDHandler godoc
// @Summary Look an asset up by its external id
// @Tags asset-registry
// @Produce json
// @Param external_id query string true "External id"
// @Success 200 {object} httptransport.AssetResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/lookup [get]
func (h Handler) GetAssetByExternalIDHandler(ctx context.Context, externalID string) (httptransport.AssetResponse, error) {
	asset, err := h.GetAsset.ByExternalID(ctx, externalID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

// ListAssetsHandler godoc
// @Summary List assets owned by an identity
// @Tags asset-registry
// @Produce json
// @Param owner query string true "Owner identity"
// @Success 200 {object} httptransport.ListAssetsResponse
// @Router /v1/assets [get]
func (h Handler) ListAssetsHandler(ctx context.Context, owner string) (httptransport.ListAssetsResponse, error) {
	items, err := h.ListAssets.Execute(ctx, owner)
	if err != nil {
		return httptransport.ListAssetsResponse{}, err
	}
	response := httptransport.ListAssetsResponse{
		Items: make([]httptransport.AssetResponse, 0, len(items)),
		Total: len(items),
	}
	for _, asset := range items {
		response.Items = append(response.Items, mapAsset(asset))
	}
	return response, nil
}

// MintUnitsHandler godoc
// @Summary Mint additional access units for an asset
// @Tags asset-registry
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (asset owner)"
// @Param handle path int true "Asset handle"
// @Param request body httptransport.MintUnitsRequest true "Mint"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/mint [post]
func (h Handler) MintUnitsHandler(ctx context.Context, caller string, handle uint64, req httptransport.MintUnitsRequest) (httptransport.AcceptedResponse, error) {
	if err := h.MintUnits.Execute(ctx, caller, handle, req.To, req.Amount); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{Handle: handle, Applied: true}, nil
}

// SetRoyaltyHandler godoc
// @Summary Update the royalty receiver and rate
// @Tags asset-registry
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (asset owner)"
// @Param handle path int true "Asset handle"
// @Param request body httptransport.SetRoyaltyRequest true "Royalty"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/royalty [put]
func (h Handler) SetRoyaltyHandler(ctx context.Context, caller string, handle uint64, req httptransport.SetRoyaltyRequest) (httptransport.AcceptedResponse, error) {
	if err := h.SetRoyalty.Execute(ctx, caller, handle, req.Receiver, req.RateBps); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{Handle: handle, Applied: true}, nil
}

// SetActiveHandler godoc
// @Summary Toggle an asset's marketplace visibility
// @Tags asset-registry
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (asset owner)"
// @Param handle path int true "Asset handle"
// @Param request body httptransport.SetActiveRequest true "Status"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/status [put]
func (h Handler) SetActiveHandler(ctx context.Context, caller string, handle uint64, req httptransport.SetActiveRequest) (httptransport.AcceptedResponse, error) {
	if err := h.SetActive.Execute(ctx, caller, handle, req.Active); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{Handle: handle, Applied: true}, nil
}

// TransferOwnershipHandler godoc
// @Summary Transfer asset ownership and ledger control
// @Tags asset-registry
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (asset owner)"
// @Param handle path int true "Asset handle"
// @Param request body httptransport.TransferOwnershipRequest true "Transfer"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/transfer [post]
func (h Handler) TransferOwnershipHandler(ctx context.Context, caller string, handle uint64, req httptransport.TransferOwnershipRequest) (httptransport.AcceptedResponse, error) {
	if err := h.TransferOwnership.Execute(ctx, caller, handle, req.NewOwner); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{Handle: handle, Applied: true}, nil
}

// RoyaltyInfoHandler godoc
// @Summary Quote the royalty share for a hypothetical sale price
// @Tags asset-registry
// @Produce json
// @Param handle path int true "Asset handle"
// @Param sale_price query int true "Sale price in base currency units"
// @Success 200 {object} httptransport.RoyaltyQuoteResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/royalty [get]
func (h Handler) RoyaltyInfoHandler(ctx context.Context, handle uint64, salePrice uint64) (httptransport.RoyaltyQuoteResponse, error) {
	quote, err := h.RoyaltyInfo.Execute(ctx, handle, salePrice)
	if err != nil {
		return httptransport.RoyaltyQuoteResponse{}, err
	}
	return httptransport.RoyaltyQuoteResponse{
		Handle:    handle,
		SalePrice: salePrice,
		Receiver:  quote.Receiver,
		Amount:    quote.Amount,
	}, nil
}

// CheckAccessHandler godoc
// @Summary Check whether an identity holds access to the asset's data
// @Tags asset-registry
// @Produce json
// @Param handle path int true "Asset handle"
// @Param identity path string true "Holder identity"
// @Success 200 {object} httptransport.AccessCheckResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/assets/{handle}/access/{identity} [get]
func (h Handler) CheckAccessHandler(ctx context.Context, handle uint64, identity string) (httptransport.AccessCheckResponse, error) {
	hasAccess, err := h.CheckAccess.Execute(ctx, handle, identity)
	if err != nil {
		return httptransport.AccessCheckResponse{}, err
	}
	return httptransport.AccessCheckResponse{
		Handle:    handle,
		Identity:  identity,
		HasAccess: hasAccess,
	}, nil
}

func mapAsset(asset entities.AssetRecord) httptransport.AssetResponse {
	return httptransport.AssetResponse{
		Handle:          asset.Handle,
		ExternalID:      asset.ExternalID,
		Name:            asset.Name,
		Category:        asset.Category,
		MetadataRef:     asset.MetadataRef,
		Creator:         asset.Creator,
		Owner:           asset.Owner,
		LedgerID:        asset.LedgerID,
		RoyaltyReceiver: asset.Royalty.Receiver,
		RoyaltyRateBps:  asset.Royalty.RateBps,
		Active:          asset.Active,
		CreatedAt:       asset.CreatedAt.UTC().Format(time.RFC3339),
	}
}

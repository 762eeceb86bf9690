package registryadapter

import (
	"context"

	assetqueries "inflectiv/contexts/asset-core/asset-registry/application/queries"
	"inflectiv/contexts/trading/marketplace/ports"
)

// Directory adapts the asset registry's query side to the marketplace's
// AssetDirectory port.
type Directory struct {
	Assets assetqueries.GetAssetUseCase
}

func (d Directory) GetAsset(ctx context.Context, handle uint64) (ports.AssetView, error) {
	asset, err := d.Assets.Execute(ctx, handle)
	if err != nil {
		return ports.AssetView{}, err
	}
	return ports.AssetView{
		Handle:          asset.Handle,
		Owner:           asset.Owner,
		LedgerID:        asset.LedgerID,
		Active:          asset.Active,
		RoyaltyReceiver: asset.Royalty.Receiver,
		RoyaltyRateBps:  asset.Royalty.RateBps,
	}, nil
}

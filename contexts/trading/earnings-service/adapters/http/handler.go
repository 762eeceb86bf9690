package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "inflectiv/contexts/trading/earnings-service/application"
	"inflectiv/contexts/trading/earnings-service/domain/entities"
	httptransport "inflectiv/contexts/trading/earnings-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// SummaryHandler godoc
// @Summary Aggregate earnings for one identity
// @Tags earnings
// @Produce json
// @Param identity path string true "Identity"
// @Success 200 {object} httptransport.SummaryResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/earnings/{identity} [get]
func (h Handler) SummaryHandler(ctx context.Context, identity string) (httptransport.SummaryResponse, error) {
	summary, err := h.Service.Summary(ctx, identity)
	if err != nil {
		return httptransport.SummaryResponse{}, err
	}
	return httptransport.SummaryResponse{
		Identity:        summary.Identity,
		SalesCount:      summary.SalesCount,
		PurchasesCount:  summary.PurchasesCount,
		UnitsSold:       summary.UnitsSold,
		UnitsBought:     summary.UnitsBought,
		GrossSales:      entities.FormatAmount(summary.GrossSales),
		ProceedsEarned:  entities.FormatAmount(summary.ProceedsEarned),
		RoyaltiesEarned: entities.FormatAmount(summary.RoyaltiesEarned),
		TotalEarned:     entities.FormatAmount(summary.TotalEarned()),
		AmountSpent:     entities.FormatAmount(summary.AmountSpent),
	}, nil
}

// TopAssetsHandler godoc
// @Summary Rank one identity's assets by total earnings
// @Tags earnings
// @Produce json
// @Param identity path string true "Identity"
// @Param limit query int false "Maximum assets to return (1-10, default 5)"
// @Success 200 {object} httptransport.TopAssetsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/earnings/{identity}/top-assets [get]
func (h Handler) TopAssetsHandler(ctx context.Context, identity string, limit int) (httptransport.TopAssetsResponse, error) {
	ranked, err := h.Service.TopAssets(ctx, identity, limit)
	if err != nil {
		return httptransport.TopAssetsResponse{}, err
	}
	response := httptransport.TopAssetsResponse{
		Items: make([]httptransport.AssetEarningsResponse, 0, len(ranked)),
	}
	for i, earnings := range ranked {
		response.Items = append(response.Items, httptransport.AssetEarningsResponse{
			Rank:            i + 1,
			AssetHandle:     earnings.AssetHandle,
			SalesCount:      earnings.SalesCount,
			UnitsSold:       earnings.UnitsSold,
			GrossSales:      entities.FormatAmount(earnings.GrossSales),
			ProceedsEarned:  entities.FormatAmount(earnings.ProceedsEarned),
			RoyaltiesEarned: entities.FormatAmount(earnings.RoyaltiesEarned),
			TotalEarned:     entities.FormatAmount(earnings.TotalEarned()),
		})
	}
	return response, nil
}

// ListTransactionsHandler godoc
// @Summary List one identity's settled transactions
// @Tags earnings
// @Produce json
// @Param identity path string true "Identity"
// @Success 200 {object} httptransport.ListTransactionsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/earnings/{identity}/transactions [get]
func (h Handler) ListTransactionsHandler(ctx context.Context, identity string) (httptransport.ListTransactionsResponse, error) {
	transactions, err := h.Service.ListTransactions(ctx, identity)
	if err != nil {
		return httptransport.ListTransactionsResponse{}, err
	}
	response := httptransport.ListTransactionsResponse{
		Items: make([]httptransport.TransactionResponse, 0, len(transactions)),
		Total: len(transactions),
	}
	for _, tx := range transactions {
		response.Items = append(response.Items, httptransport.TransactionResponse{
			EventID:         tx.EventID,
			ListingID:       tx.ListingID,
			AssetHandle:     tx.AssetHandle,
			Buyer:           tx.Buyer,
			Seller:          tx.Seller,
			UnitCount:       tx.UnitCount,
			TotalPrice:      entities.FormatAmount(tx.TotalPrice),
			PlatformFee:     entities.FormatAmount(tx.PlatformFee),
			RoyaltyAmount:   entities.FormatAmount(tx.RoyaltyAmount),
			RoyaltyReceiver: tx.RoyaltyReceiver,
			SellerProceeds:  entities.FormatAmount(tx.SellerProceeds),
			OccurredAt:      tx.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return response, nil
}

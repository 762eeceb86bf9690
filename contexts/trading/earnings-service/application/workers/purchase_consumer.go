package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "inflectiv/contexts/trading/earnings-service/application"
	"inflectiv/contexts/trading/earnings-service/domain/entities"
	"inflectiv/contexts/trading/earnings-service/ports"
)

const (
	purchaseCompletedTopic = "marketplace.purchase.completed"
	defaultConsumerGroup   = "earnings-service-cg"
)

type purchasePayload struct {
	ListingID       string `json:"listing_id"`
	AssetHandle     uint64 `json:"asset_handle"`
	Buyer           string `json:"buyer"`
	Seller          string `json:"seller"`
	UnitCount       uint64 `json:"unit_count"`
	TotalPrice      uint64 `json:"total_price"`
	PlatformFee     uint64 `json:"platform_fee"`
	RoyaltyAmount   uint64 `json:"royalty_amount"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	SellerProceeds  uint64 `json:"seller_proceeds"`
}

// PurchaseConsumer subscribes to completed purchases and feeds the earnings
// read model. Event ids make replays idempotent, so at-least-once delivery
// from the relay is safe.
type PurchaseConsumer struct {
	Subscriber    ports.EventSubscriber
	Service       application.Service
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c PurchaseConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultConsumerGroup
	}
	logger.Info("purchase consumer starting subscription",
		"event", "earnings_consumer_starting",
		"module", "trading/earnings-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return c.Subscriber.Subscribe(ctx, purchaseCompletedTopic, group, c.handlePurchaseCompleted)
}

func (c PurchaseConsumer) handlePurchaseCompleted(ctx context.Context, envelope ports.EventEnvelope) error {
	var payload purchasePayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		application.ResolveLogger(c.Logger).Error("purchase payload decode failed",
			"event", "earnings_consumer_decode_failed",
			"module", "trading/earnings-service",
			"layer", "worker",
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return err
	}
	return c.Service.RecordPurchase(ctx, entities.Transaction{
		EventID:         envelope.EventID,
		ListingID:       payload.ListingID,
		AssetHandle:     payload.AssetHandle,
		Buyer:           payload.Buyer,
		Seller:          payload.Seller,
		UnitCount:       payload.UnitCount,
		TotalPrice:      payload.TotalPrice,
		PlatformFee:     payload.PlatformFee,
		RoyaltyAmount:   payload.RoyaltyAmount,
		RoyaltyReceiver: payload.RoyaltyReceiver,
		SellerProceeds:  payload.SellerProceeds,
		OccurredAt:      envelope.OccurredAt,
	})
}

package commands

import (
	"context"
	"log/slog"
	"time"

	application "inflectiv/contexts/trading/marketplace/application"
	"inflectiv/contexts/trading/marketplace/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	"inflectiv/contexts/trading/marketplace/ports"
)

const purchaseCompletedEventType = "marketplace.purchase.completed"

type PurchaseCommand struct {
	Buyer         string
	ListingID     string
	UnitCount     uint64
	PaymentAmount uint64
}

type PurchaseResult struct {
	Quote   entities.PurchaseQuote
	Listing entities.Listing
}

// PurchaseUseCase executes a purchase as a compensated sequence over three
// aggregates: listing inventory, the payment rail, and the access-rights
// ledger. Steps run in the order reserve -> split -> rights transfer ->
// finalize; a failure at any step unwinds the earlier ones in reverse so no
// partial effect survives.
type PurchaseUseCase struct {
	Repo            ports.ListingRepository
	Assets          ports.AssetDirectory
	Rights          ports.AccessRights
	Payments        ports.PaymentRail
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	PlatformFeeBps  uint32
	TreasuryAccount string
	SpenderIdentity string
	Logger          *slog.Logger
}

func (u PurchaseUseCase) Execute(ctx context.Context, cmd PurchaseCommand) (PurchaseResult, error) {
	logger := application.ResolveLogger(u.Logger)
	buyer := normalizeIdentity(cmd.Buyer)
	if buyer == "" || cmd.UnitCount == 0 {
		return PurchaseResult{}, domainerrors.ErrInvalidPurchase
	}

	listing, err := u.Repo.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !listing.Active {
		return PurchaseResult{}, domainerrors.ErrListingNotActive
	}

	asset, err := u.Assets.GetAsset(ctx, listing.AssetHandle)
	if err != nil {
		return PurchaseResult{}, err
	}

	quote, err := listing.Quote(cmd.UnitCount, u.PlatformFeeBps, asset.RoyaltyRateBps, asset.RoyaltyReceiver)
	if err != nil {
		return PurchaseResult{}, err
	}
	if cmd.PaymentAmount != quote.TotalPrice {
		return PurchaseResult{}, domainerrors.ErrIncorrectPayment
	}

	reserved, err := u.Repo.ReserveUnits(ctx, cmd.ListingID, cmd.UnitCount)
	if err != nil {
		return PurchaseResult{}, err
	}
	if reserved.PricePerUnit != listing.PricePerUnit {
		// Listing was repriced between quote and reservation; the payment no
		// longer matches, so back out and make the buyer re-quote.
		_ = u.Repo.ReleaseUnits(ctx, cmd.ListingID, cmd.UnitCount)
		return PurchaseResult{}, domainerrors.ErrIncorrectPayment
	}

	paymentID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		_ = u.Repo.ReleaseUnits(ctx, cmd.ListingID, cmd.UnitCount)
		return PurchaseResult{}, err
	}
	if err := u.Payments.Split(ctx, ports.SplitPayment{
		PaymentID: paymentID,
		Payer:     buyer,
		Legs: []ports.PaymentLeg{
			{To: reserved.Seller, Amount: quote.SellerProceeds},
			{To: quote.RoyaltyReceiver, Amount: quote.RoyaltyAmount},
			{To: u.TreasuryAccount, Amount: quote.PlatformFee},
		},
	}); err != nil {
		_ = u.Repo.ReleaseUnits(ctx, cmd.ListingID, cmd.UnitCount)
		return PurchaseResult{}, err
	}

	if err := u.Rights.TransferUnits(ctx, asset.LedgerID, u.SpenderIdentity, reserved.Seller, buyer, cmd.UnitCount); err != nil {
		// Seller moved balance or allowance away out-of-band; undo the
		// settled payment and the reservation.
		if reverseErr := u.Payments.Reverse(ctx, paymentID); reverseErr != nil {
			logger.Error("payment reversal failed after rights-transfer abort",
				"event", "purchase_reversal_failed",
				"module", "trading/marketplace",
				"layer", "application",
				"listing_id", cmd.ListingID,
				"payment_id", paymentID,
				"error", reverseErr.Error(),
			)
		}
		_ = u.Repo.ReleaseUnits(ctx, cmd.ListingID, cmd.UnitCount)
		return PurchaseResult{}, err
	}

	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		logger.Warn("event id generation failed, reusing payment id",
			"event", "purchase_event_id_fallback",
			"module", "trading/marketplace",
			"layer", "application",
			"listing_id", cmd.ListingID,
			"payment_id", paymentID,
			"error", err.Error(),
		)
		eventID = paymentID
	}
	now := u.now()
	if err := u.Repo.FinalizePurchase(ctx, cmd.ListingID, cmd.UnitCount, ports.PurchaseEvent{
		EventID:         eventID,
		EventType:       purchaseCompletedEventType,
		ListingID:       cmd.ListingID,
		AssetHandle:     reserved.AssetHandle,
		Buyer:           buyer,
		Seller:          reserved.Seller,
		UnitCount:       cmd.UnitCount,
		TotalPrice:      quote.TotalPrice,
		PlatformFee:     quote.PlatformFee,
		RoyaltyAmount:   quote.RoyaltyAmount,
		RoyaltyReceiver: quote.RoyaltyReceiver,
		SellerProceeds:  quote.SellerProceeds,
		PartitionKey:    cmd.ListingID,
		OccurredAt:      now,
	}); err != nil {
		// The trade never happened as far as the listing record is concerned,
		// so unwind the settled legs in reverse: rights back, payment back,
		// reservation released.
		if returnErr := u.Rights.ReturnUnits(ctx, asset.LedgerID, buyer, reserved.Seller, cmd.UnitCount); returnErr != nil {
			logger.Error("rights return failed after finalize abort",
				"event", "purchase_reversal_failed",
				"module", "trading/marketplace",
				"layer", "application",
				"listing_id", cmd.ListingID,
				"ledger_id", asset.LedgerID,
				"error", returnErr.Error(),
			)
		}
		if reverseErr := u.Payments.Reverse(ctx, paymentID); reverseErr != nil {
			logger.Error("payment reversal failed after finalize abort",
				"event", "purchase_reversal_failed",
				"module", "trading/marketplace",
				"layer", "application",
				"listing_id", cmd.ListingID,
				"payment_id", paymentID,
				"error", reverseErr.Error(),
			)
		}
		_ = u.Repo.ReleaseUnits(ctx, cmd.ListingID, cmd.UnitCount)
		return PurchaseResult{}, err
	}

	final, err := u.Repo.GetListing(ctx, cmd.ListingID)
	if err != nil {
		final = reserved
	}

	logger.Info("purchase completed",
		"event", "purchase_completed",
		"module", "trading/marketplace",
		"layer", "application",
		"listing_id", cmd.ListingID,
		"asset_handle", reserved.AssetHandle,
		"buyer", buyer,
		"seller", reserved.Seller,
		"unit_count", cmd.UnitCount,
		"total_price", quote.TotalPrice,
		"platform_fee", quote.PlatformFee,
		"royalty_amount", quote.RoyaltyAmount,
		"seller_proceeds", quote.SellerProceeds,
	)
	return PurchaseResult{Quote: quote, Listing: final}, nil
}

func (u PurchaseUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

package entities

import (
	"math"
	"strings"
	"time"

	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
)

// PlatformFeeBps is the default platform cut per sale: 2.5% to the treasury.
const PlatformFeeBps uint32 = 250

// Listing is a seller's standing offer over one asset's access units.
// AvailableUnits is a declared ceiling, not an escrow of the seller's ledger
// balance; the seller can move balance away out-of-band, in which case a
// later purchase aborts cleanly at the rights-transfer step.
type Listing struct {
	ListingID      string
	AssetHandle    uint64
	Seller         string
	PricePerUnit   uint64
	AvailableUnits uint64
	TotalSold      uint64
	Active         bool
	CreatedAt      time.Time
}

func NewListing(listingID string, assetHandle uint64, seller string, pricePerUnit uint64, unitCount uint64, createdAt time.Time) (Listing, error) {
	if strings.TrimSpace(listingID) == "" || strings.TrimSpace(seller) == "" {
		return Listing{}, domainerrors.ErrInvalidListing
	}
	if unitCount == 0 {
		return Listing{}, domainerrors.ErrInvalidListing
	}
	return Listing{
		ListingID:      listingID,
		AssetHandle:    assetHandle,
		Seller:         seller,
		PricePerUnit:   pricePerUnit,
		AvailableUnits: unitCount,
		Active:         true,
		CreatedAt:      createdAt.UTC(),
	}, nil
}

// PurchaseQuote is the exact three-way decomposition of one purchase total.
// PlatformFee + RoyaltyAmount + SellerProceeds == TotalPrice always holds:
// the seller share is computed as the remainder.
type PurchaseQuote struct {
	ListingID       string
	UnitCount       uint64
	TotalPrice      uint64
	PlatformFee     uint64
	RoyaltyAmount   uint64
	RoyaltyReceiver string
	SellerProceeds  uint64
}

// Quote prices unitCount units of the listing against the given fee and
// royalty configuration. Pure; callers use it for both pre-flight display
// and the payment check inside purchase.
func (l Listing) Quote(unitCount uint64, feeBps uint32, royaltyRateBps uint32, royaltyReceiver string) (PurchaseQuote, error) {
	if unitCount == 0 {
		return PurchaseQuote{}, domainerrors.ErrInvalidPurchase
	}
	if unitCount > l.AvailableUnits {
		return PurchaseQuote{}, domainerrors.ErrInsufficientAvailableUnits
	}
	if l.PricePerUnit > 0 && unitCount > math.MaxUint64/l.PricePerUnit {
		return PurchaseQuote{}, domainerrors.ErrPurchaseOverflow
	}
	total := l.PricePerUnit * unitCount
	fee := BpsShare(total, feeBps)
	royalty := BpsShare(total, royaltyRateBps)
	if royalty > total-fee {
		return PurchaseQuote{}, domainerrors.ErrPurchaseOverflow
	}
	return PurchaseQuote{
		ListingID:       l.ListingID,
		UnitCount:       unitCount,
		TotalPrice:      total,
		PlatformFee:     fee,
		RoyaltyAmount:   royalty,
		RoyaltyReceiver: royaltyReceiver,
		SellerProceeds:  total - fee - royalty,
	}, nil
}

// BpsShare computes floor(amount * rateBps / 10000) without intermediate
// overflow by decomposing amount into 10000*q + r.
func BpsShare(amount uint64, rateBps uint32) uint64 {
	quotient := amount / 10_000
	remainder := amount % 10_000
	return quotient*uint64(rateBps) + remainder*uint64(rateBps)/10_000
}

package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainerrors "inflectiv/contexts/trading/earnings-service/domain/errors"
)

// CurrencyDecimals is the scale of the settlement currency: every monetary
// amount in the system is an integer count of 10^-6 currency units.
const CurrencyDecimals int32 = 6

// Transaction is one settled purchase as seen by the earnings read-side.
// EventID doubles as the idempotency key across redeliveries.
type Transaction struct {
	EventID         string
	ListingID       string
	AssetHandle     uint64
	Buyer           string
	Seller          string
	UnitCount       uint64
	TotalPrice      uint64
	PlatformFee     uint64
	RoyaltyAmount   uint64
	RoyaltyReceiver string
	SellerProceeds  uint64
	OccurredAt      time.Time
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.EventID) == "" ||
		strings.TrimSpace(t.ListingID) == "" ||
		strings.TrimSpace(t.Buyer) == "" ||
		strings.TrimSpace(t.Seller) == "" {
		return domainerrors.ErrInvalidTransaction
	}
	if t.UnitCount == 0 {
		return domainerrors.ErrInvalidTransaction
	}
	return nil
}

// Touches reports whether the identity appears in any role of the
// transaction.
func (t Transaction) Touches(identity string) bool {
	return t.Buyer == identity || t.Seller == identity || t.RoyaltyReceiver == identity
}

// Summary aggregates one identity's marketplace activity. Monetary fields
// stay in integer base units; Display converts them for presentation.
type Summary struct {
	Identity        string
	SalesCount      uint64
	PurchasesCount  uint64
	UnitsSold       uint64
	UnitsBought     uint64
	GrossSales      uint64
	ProceedsEarned  uint64
	RoyaltiesEarned uint64
	AmountSpent     uint64
}

func (s *Summary) Apply(tx Transaction) {
	if tx.Seller == s.Identity {
		s.SalesCount++
		s.UnitsSold += tx.UnitCount
		s.GrossSales += tx.TotalPrice
		s.ProceedsEarned += tx.SellerProceeds
	}
	if tx.RoyaltyReceiver == s.Identity {
		s.RoyaltiesEarned += tx.RoyaltyAmount
	}
	if tx.Buyer == s.Identity {
		s.PurchasesCount++
		s.UnitsBought += tx.UnitCount
		s.AmountSpent += tx.TotalPrice
	}
}

// TotalEarned is proceeds plus royalties, in base units.
func (s Summary) TotalEarned() uint64 {
	return s.ProceedsEarned + s.RoyaltiesEarned
}

// AssetEarnings aggregates one asset's sales from a single identity's
// viewpoint: proceeds where it sold, royalties where it received them.
type AssetEarnings struct {
	AssetHandle     uint64
	SalesCount      uint64
	UnitsSold       uint64
	GrossSales      uint64
	ProceedsEarned  uint64
	RoyaltiesEarned uint64
}

func (a *AssetEarnings) Apply(identity string, tx Transaction) {
	if tx.Seller == identity {
		a.SalesCount++
		a.UnitsSold += tx.UnitCount
		a.GrossSales += tx.TotalPrice
		a.ProceedsEarned += tx.SellerProceeds
	}
	if tx.RoyaltyReceiver == identity {
		a.RoyaltiesEarned += tx.RoyaltyAmount
	}
}

func (a AssetEarnings) TotalEarned() uint64 {
	return a.ProceedsEarned + a.RoyaltiesEarned
}

// FormatAmount renders an integer base-unit amount as a decimal currency
// string, e.g. 9_250_000 -> "9.25".
func FormatAmount(amount uint64) string {
	return decimal.NewFromUint64(amount).Shift(-CurrencyDecimals).String()
}

package entities

import (
	"strings"
	"time"

	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
)

const (
	// DefaultRoyaltyRateBps is applied at registration: 5% to the creator.
	DefaultRoyaltyRateBps uint32 = 500
	// MaxRoyaltyRateBps caps the configurable royalty at 100%.
	MaxRoyaltyRateBps uint32 = 10_000
)

// Royalty routes a basis-point share of every sale to a receiver,
// independent of the current seller.
type Royalty struct {
	Receiver string
	RateBps  uint32
}

// AssetRecord is one registered data asset. Handle and ExternalID are
// immutable after creation; LedgerID is set exactly once and never cleared.
type AssetRecord struct {
	Handle      uint64
	ExternalID  string
	Name        string
	Category    string
	MetadataRef string
	Creator     string
	Owner       string
	LedgerID    string
	Royalty     Royalty
	Active      bool
	CreatedAt   time.Time
}

// NewAssetRecord validates registration input. The handle is assigned later,
// by the repository, inside the same atomic step that enforces external-id
// uniqueness.
func NewAssetRecord(
	externalID string,
	name string,
	category string,
	metadataRef string,
	owner string,
	ledgerID string,
	createdAt time.Time,
) (AssetRecord, error) {
	if strings.TrimSpace(externalID) == "" ||
		strings.TrimSpace(name) == "" ||
		strings.TrimSpace(owner) == "" ||
		strings.TrimSpace(ledgerID) == "" {
		return AssetRecord{}, domainerrors.ErrInvalidAsset
	}
	return AssetRecord{
		ExternalID:  strings.TrimSpace(externalID),
		Name:        strings.TrimSpace(name),
		Category:    strings.TrimSpace(category),
		MetadataRef: strings.TrimSpace(metadataRef),
		Creator:     owner,
		Owner:       owner,
		LedgerID:    ledgerID,
		Royalty:     Royalty{Receiver: owner, RateBps: DefaultRoyaltyRateBps},
		Active:      true,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// RoyaltyAmount is floor(salePrice * rateBps / 10000), computed without
// intermediate overflow: salePrice decomposes into 10000*q + r, so the
// product splits into an exact integer part plus a bounded remainder term.
func (a AssetRecord) RoyaltyAmount(salePrice uint64) uint64 {
	return BpsShare(salePrice, a.Royalty.RateBps)
}

// BpsShare computes floor(amount * rateBps / 10000) exactly.
func BpsShare(amount uint64, rateBps uint32) uint64 {
	quotient := amount / 10_000
	remainder := amount % 10_000
	return quotient*uint64(rateBps) + remainder*uint64(rateBps)/10_000
}

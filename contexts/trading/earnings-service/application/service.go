package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"inflectiv/contexts/trading/earnings-service/domain/entities"
	domainerrors "inflectiv/contexts/trading/earnings-service/domain/errors"
	"inflectiv/contexts/trading/earnings-service/ports"
)

type Service struct {
	Repo   ports.TransactionRepository
	Logger *slog.Logger
}

// RecordPurchase stores one settled purchase. Replays of an already-recorded
// event id are absorbed without error.
func (s Service) RecordPurchase(ctx context.Context, tx entities.Transaction) error {
	tx.Buyer = NormalizeIdentity(tx.Buyer)
	tx.Seller = NormalizeIdentity(tx.Seller)
	tx.RoyaltyReceiver = NormalizeIdentity(tx.RoyaltyReceiver)
	if err := tx.Validate(); err != nil {
		return err
	}

	inserted, err := s.Repo.RecordTransaction(ctx, tx)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	ResolveLogger(s.Logger).Info("purchase recorded",
		"event", "earnings_purchase_recorded",
		"module", "trading/earnings-service",
		"layer", "application",
		"event_id", tx.EventID,
		"listing_id", tx.ListingID,
		"buyer", tx.Buyer,
		"seller", tx.Seller,
		"total_price", tx.TotalPrice,
	)
	return nil
}

// Summary folds the identity's transaction history into aggregate earnings.
func (s Service) Summary(ctx context.Context, identity string) (entities.Summary, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return entities.Summary{}, domainerrors.ErrInvalidIdentity
	}
	transactions, err := s.Repo.ListByIdentity(ctx, identity)
	if err != nil {
		return entities.Summary{}, err
	}
	summary := entities.Summary{Identity: identity}
	for _, tx := range transactions {
		summary.Apply(tx)
	}
	return summary, nil
}

const (
	defaultTopAssetsLimit = 5
	maxTopAssetsLimit     = 10
)

// TopAssets ranks the assets the identity earned from, highest total earnings
// first. A non-positive limit falls back to the default; ties keep the lower
// asset handle first so rankings are stable across calls.
func (s Service) TopAssets(ctx context.Context, identity string, limit int) ([]entities.AssetEarnings, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return nil, domainerrors.ErrInvalidIdentity
	}
	if limit <= 0 {
		limit = defaultTopAssetsLimit
	}
	if limit > maxTopAssetsLimit {
		limit = maxTopAssetsLimit
	}

	transactions, err := s.Repo.ListByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	byAsset := make(map[uint64]*entities.AssetEarnings)
	for _, tx := range transactions {
		if tx.Seller != identity && tx.RoyaltyReceiver != identity {
			continue
		}
		earnings, ok := byAsset[tx.AssetHandle]
		if !ok {
			earnings = &entities.AssetEarnings{AssetHandle: tx.AssetHandle}
			byAsset[tx.AssetHandle] = earnings
		}
		earnings.Apply(identity, tx)
	}

	ranked := make([]entities.AssetEarnings, 0, len(byAsset))
	for _, earnings := range byAsset {
		ranked = append(ranked, *earnings)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalEarned() != ranked[j].TotalEarned() {
			return ranked[i].TotalEarned() > ranked[j].TotalEarned()
		}
		return ranked[i].AssetHandle < ranked[j].AssetHandle
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s Service) ListTransactions(ctx context.Context, identity string) ([]entities.Transaction, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return nil, domainerrors.ErrInvalidIdentity
	}
	return s.Repo.ListByIdentity(ctx, identity)
}

func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

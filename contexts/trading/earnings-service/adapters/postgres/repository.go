package postgresadapter

import (
	"context"
	"log/slog"
	"time"

	"inflectiv/contexts/trading/earnings-service/domain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type transactionModel struct {
	EventID         string    `gorm:"primaryKey;column:event_id"`
	ListingID       string    `gorm:"column:listing_id;index"`
	AssetHandle     uint64    `gorm:"column:asset_handle;index"`
	Buyer           string    `gorm:"column:buyer;index"`
	Seller          string    `gorm:"column:seller;index"`
	UnitCount       uint64    `gorm:"column:unit_count"`
	TotalPrice      uint64    `gorm:"column:total_price"`
	PlatformFee     uint64    `gorm:"column:platform_fee"`
	RoyaltyAmount   uint64    `gorm:"column:royalty_amount"`
	RoyaltyReceiver string    `gorm:"column:royalty_receiver;index"`
	SellerProceeds  uint64    `gorm:"column:seller_proceeds"`
	OccurredAt      time.Time `gorm:"column:occurred_at"`
	CreatedAt       time.Time
}

func (transactionModel) TableName() string { return "earnings_transactions" }

func (r *Repository) RecordTransaction(ctx context.Context, tx entities.Transaction) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&transactionModel{
			EventID:         tx.EventID,
			ListingID:       tx.ListingID,
			AssetHandle:     tx.AssetHandle,
			Buyer:           tx.Buyer,
			Seller:          tx.Seller,
			UnitCount:       tx.UnitCount,
			TotalPrice:      tx.TotalPrice,
			PlatformFee:     tx.PlatformFee,
			RoyaltyAmount:   tx.RoyaltyAmount,
			RoyaltyReceiver: tx.RoyaltyReceiver,
			SellerProceeds:  tx.SellerProceeds,
			OccurredAt:      tx.OccurredAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListByIdentity(ctx context.Context, identity string) ([]entities.Transaction, error) {
	var rows []transactionModel
	err := r.db.WithContext(ctx).
		Where("buyer = ? OR seller = ? OR royalty_receiver = ?", identity, identity, identity).
		Order("occurred_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Transaction{
			EventID:         row.EventID,
			ListingID:       row.ListingID,
			AssetHandle:     row.AssetHandle,
			Buyer:           row.Buyer,
			Seller:          row.Seller,
			UnitCount:       row.UnitCount,
			TotalPrice:      row.TotalPrice,
			PlatformFee:     row.PlatformFee,
			RoyaltyAmount:   row.RoyaltyAmount,
			RoyaltyReceiver: row.RoyaltyReceiver,
			SellerProceeds:  row.SellerProceeds,
			OccurredAt:      row.OccurredAt,
		})
	}
	return items, nil
}

package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"inflectiv/contexts/trading/marketplace/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	"inflectiv/contexts/trading/marketplace/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
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

type listingModel struct {
	ListingID      string `gorm:"primaryKey;column:listing_id"`
	AssetHandle    uint64 `gorm:"column:asset_handle;index"`
	Seller         string `gorm:"column:seller;index"`
	PricePerUnit   uint64 `gorm:"column:price_per_unit"`
	AvailableUnits uint64 `gorm:"column:available_units"`
	TotalSold      uint64 `gorm:"column:total_sold"`
	Active         bool   `gorm:"column:active;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (listingModel) TableName() string { return "marketplace_listings" }

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		ListingID:      m.ListingID,
		AssetHandle:    m.AssetHandle,
		Seller:         m.Seller,
		PricePerUnit:   m.PricePerUnit,
		AvailableUnits: m.AvailableUnits,
		TotalSold:      m.TotalSold,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
	}
}

type outboxModel struct {
	OutboxID     string `gorm:"primaryKey;column:outbox_id"`
	EventType    string `gorm:"column:event_type"`
	PartitionKey string `gorm:"column:partition_key"`
	Payload      []byte `gorm:"column:payload"`
	Status       string `gorm:"column:status;index"`
	CreatedAt    time.Time
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "marketplace_outbox" }

func (r *Repository) CreateListing(ctx context.Context, listing entities.Listing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&listingModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_handle = ? AND active = ?", listing.AssetHandle, true).
			Count(&count).
			Error
		if err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrListingAlreadyActive
		}
		return tx.Create(&listingModel{
			ListingID:      listing.ListingID,
			AssetHandle:    listing.AssetHandle,
			Seller:         listing.Seller,
			PricePerUnit:   listing.PricePerUnit,
			AvailableUnits: listing.AvailableUnits,
			TotalSold:      listing.TotalSold,
			Active:         listing.Active,
			CreatedAt:      listing.CreatedAt,
			UpdatedAt:      listing.CreatedAt,
		}).Error
	})
}

func (r *Repository) GetListing(ctx context.Context, listingID string) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetActiveListingByAsset(ctx context.Context, assetHandle uint64) (entities.Listing, bool, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("asset_handle = ? AND active = ?", assetHandle, true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, false, nil
		}
		return entities.Listing{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListListings(ctx context.Context, activeOnly bool) ([]entities.Listing, error) {
	query := r.db.WithContext(ctx).Model(&listingModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var rows []listingModel
	if err := query.Order("listing_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateListing(ctx context.Context, listingID string, mutate func(*entities.Listing) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockListing(tx, listingID)
		if err != nil {
			return err
		}
		listing := row.toEntity()
		if err := mutate(&listing); err != nil {
			return err
		}
		return saveListing(tx, listing)
	})
}

func (r *Repository) ReserveUnits(ctx context.Context, listingID string, unitCount uint64) (entities.Listing, error) {
	var reserved entities.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockListing(tx, listingID)
		if err != nil {
			return err
		}
		listing := row.toEntity()
		if !listing.Active {
			return domainerrors.ErrListingNotActive
		}
		if unitCount > listing.AvailableUnits {
			return domainerrors.ErrInsufficientAvailableUnits
		}
		listing.AvailableUnits -= unitCount
		reserved = listing
		return saveListing(tx, listing)
	})
	if err != nil {
		return entities.Listing{}, err
	}
	return reserved, nil
}

func (r *Repository) ReleaseUnits(ctx context.Context, listingID string, unitCount uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockListing(tx, listingID)
		if err != nil {
			return err
		}
		listing := row.toEntity()
		listing.AvailableUnits += unitCount
		return saveListing(tx, listing)
	})
}

func (r *Repository) FinalizePurchase(ctx context.Context, listingID string, unitCount uint64, event ports.PurchaseEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockListing(tx, listingID)
		if err != nil {
			return err
		}
		listing := row.toEntity()
		listing.TotalSold += unitCount
		if err := saveListing(tx, listing); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"listing_id":       event.ListingID,
			"asset_handle":     event.AssetHandle,
			"buyer":            event.Buyer,
			"seller":           event.Seller,
			"unit_count":       event.UnitCount,
			"total_price":      event.TotalPrice,
			"platform_fee":     event.PlatformFee,
			"royalty_amount":   event.RoyaltyAmount,
			"royalty_receiver": event.RoyaltyReceiver,
			"seller_proceeds":  event.SellerProceeds,
		})
		if err != nil {
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    event.OccurredAt,
		}).Error
	})
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	sentAt = sentAt.UTC()
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": &sentAt,
		}).Error
}

func lockListing(tx *gorm.DB, listingID string) (listingModel, error) {
	var row listingModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ?", listingID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return listingModel{}, domainerrors.ErrListingNotFound
		}
		return listingModel{}, err
	}
	return row, nil
}

func saveListing(tx *gorm.DB, listing entities.Listing) error {
	return tx.Model(&listingModel{}).
		Where("listing_id = ?", listing.ListingID).
		Updates(map[string]any{
			"price_per_unit":  listing.PricePerUnit,
			"available_units": listing.AvailableUnits,
			"total_sold":      listing.TotalSold,
			"active":          listing.Active,
			"updated_at":      time.Now().UTC(),
		}).Error
}

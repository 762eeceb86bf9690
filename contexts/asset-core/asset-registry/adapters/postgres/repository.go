package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	pgUniqueViolation = "23505"
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

type assetModel struct {
	Handle          uint64 `gorm:"primaryKey;autoIncrement;column:handle"`
	ExternalID      string `gorm:"column:external_id;uniqueIndex"`
	Name            string `gorm:"column:name"`
	Category        string `gorm:"column:category"`
	MetadataRef     string `gorm:"column:metadata_ref"`
	Creator         string `gorm:"column:creator"`
	Owner           string `gorm:"column:owner;index"`
	LedgerID        string `gorm:"column:ledger_id"`
	RoyaltyReceiver string `gorm:"column:royalty_receiver"`
	RoyaltyRateBps  uint32 `gorm:"column:royalty_rate_bps"`
	Active          bool   `gorm:"column:active"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (assetModel) TableName() string { return "asset_records" }

type outboxModel struct {
	OutboxID     string `gorm:"primaryKey;column:outbox_id"`
	EventType    string `gorm:"column:event_type"`
	PartitionKey string `gorm:"column:partition_key"`
	Payload      []byte `gorm:"column:payload"`
	Status       string `gorm:"column:status;index"`
	CreatedAt    time.Time
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "asset_registry_outbox" }

func (r *Repository) CreateAsset(ctx context.Context, record entities.AssetRecord, event ports.RegisteredEvent) (uint64, error) {
	var handle uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := assetModel{
			ExternalID:      record.ExternalID,
			Name:            record.Name,
			Category:        record.Category,
			MetadataRef:     record.MetadataRef,
			Creator:         record.Creator,
			Owner:           record.Owner,
			LedgerID:        record.LedgerID,
			RoyaltyReceiver: record.Royalty.Receiver,
			RoyaltyRateBps:  record.Royalty.RateBps,
			Active:          record.Active,
			CreatedAt:       record.CreatedAt,
			UpdatedAt:       record.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return domainerrors.ErrAssetAlreadyRegistered
			}
			return err
		}
		handle = row.Handle

		payload, err := json.Marshal(map[string]any{
			"handle":        row.Handle,
			"external_id":   event.ExternalID,
			"owner":         event.Owner,
			"ledger_id":     event.LedgerID,
			"initial_units": event.InitialUnits,
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
	if err != nil {
		return 0, err
	}
	return handle, nil
}

func (r *Repository) DiscardAsset(ctx context.Context, handle uint64, eventID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("handle = ?", handle).Delete(&assetModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainerrors.ErrAssetNotFound
		}
		return tx.Where("outbox_id = ? AND status = ?", eventID, outboxStatusPending).
			Delete(&outboxModel{}).Error
	})
}

func (r *Repository) GetAsset(ctx context.Context, handle uint64) (entities.AssetRecord, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("handle = ?", handle).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
		}
		return entities.AssetRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetAssetByExternalID(ctx context.Context, externalID string) (entities.AssetRecord, bool, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AssetRecord{}, false, nil
		}
		return entities.AssetRecord{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListAssetsByOwner(ctx context.Context, owner string) ([]entities.AssetRecord, error) {
	var rows []assetModel
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("handle ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.AssetRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, handle uint64, mutate func(*entities.AssetRecord) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row assetModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("handle = ?", handle).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAssetNotFound
			}
			return err
		}

		asset := row.toEntity()
		if err := mutate(&asset); err != nil {
			return err
		}
		return tx.Model(&assetModel{}).
			Where("handle = ?", handle).
			Updates(map[string]any{
				"owner":            asset.Owner,
				"royalty_receiver": asset.Royalty.Receiver,
				"royalty_rate_bps": asset.Royalty.RateBps,
				"active":           asset.Active,
				"updated_at":       time.Now().UTC(),
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

func (m assetModel) toEntity() entities.AssetRecord {
	return entities.AssetRecord{
		Handle:      m.Handle,
		ExternalID:  m.ExternalID,
		Name:        m.Name,
		Category:    m.Category,
		MetadataRef: m.MetadataRef,
		Creator:     m.Creator,
		Owner:       m.Owner,
		LedgerID:    m.LedgerID,
		Royalty: entities.Royalty{
			Receiver: m.RoyaltyReceiver,
			RateBps:  m.RoyaltyRateBps,
		},
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

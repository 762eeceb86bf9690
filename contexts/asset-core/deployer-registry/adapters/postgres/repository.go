package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inflectiv/contexts/asset-core/deployer-registry/ports"

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

type authorizationModel struct {
	Identity   string `gorm:"primaryKey;column:identity"`
	Authorized bool   `gorm:"column:authorized"`
	UpdatedAt  time.Time
}

func (authorizationModel) TableName() string { return "deployer_authorizations" }

func (r *Repository) GetAuthorization(ctx context.Context, identity string) (bool, error) {
	var row authorizationModel
	err := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.Authorized, nil
}

func (r *Repository) PutAuthorization(ctx context.Context, identity string, authorized bool) error {
	row := authorizationModel{
		Identity:   identity,
		Authorized: authorized,
		UpdatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns([]string{"authorized", "updated_at"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ListAuthorized(ctx context.Context) ([]ports.Authorization, error) {
	var rows []authorizationModel
	if err := r.db.WithContext(ctx).
		Where("authorized = ?", true).
		Order("identity ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	result := make([]ports.Authorization, 0, len(rows))
	for _, row := range rows {
		result = append(result, ports.Authorization{Identity: row.Identity, Authorized: row.Authorized})
	}
	return result, nil
}

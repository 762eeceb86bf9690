package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inflectiv/contexts/asset-core/access-ledger/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"

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

type ledgerModel struct {
	LedgerID        string `gorm:"primaryKey;column:ledger_id"`
	Controller      string `gorm:"column:controller"`
	TotalSupply     uint64 `gorm:"column:total_supply"`
	AccessThreshold uint64 `gorm:"column:access_threshold"`
	BurnOnConsume   bool   `gorm:"column:burn_on_consume"`
	Attached        bool   `gorm:"column:attached"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ledgerModel) TableName() string { return "access_ledgers" }

type balanceModel struct {
	LedgerID string `gorm:"primaryKey;column:ledger_id"`
	Identity string `gorm:"primaryKey;column:identity"`
	Balance  uint64 `gorm:"column:balance"`
	Consumed uint64 `gorm:"column:consumed"`
}

func (balanceModel) TableName() string { return "access_ledger_balances" }

type allowanceModel struct {
	LedgerID string `gorm:"primaryKey;column:ledger_id"`
	Owner    string `gorm:"primaryKey;column:owner"`
	Spender  string `gorm:"primaryKey;column:spender"`
	Amount   uint64 `gorm:"column:amount"`
}

func (allowanceModel) TableName() string { return "access_ledger_allowances" }

func (r *Repository) CreateLedger(ctx context.Context, ledger entities.Ledger) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ledgerModel{
			LedgerID:        ledger.LedgerID,
			Controller:      ledger.Controller,
			TotalSupply:     ledger.TotalSupply,
			AccessThreshold: ledger.AccessThreshold,
			BurnOnConsume:   ledger.BurnOnConsume,
			Attached:        ledger.Attached,
			CreatedAt:       ledger.CreatedAt,
			UpdatedAt:       ledger.CreatedAt,
		}).Error; err != nil {
			return err
		}
		return writeLedgerRows(tx, ledger)
	})
}

func (r *Repository) GetLedger(ctx context.Context, ledgerID string) (entities.Ledger, error) {
	var ledger entities.Ledger
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadLedger(tx, ledgerID, false)
		if err != nil {
			return err
		}
		ledger = loaded
		return nil
	})
	return ledger, err
}

// UpdateLedger serializes on the ledger row via SELECT ... FOR UPDATE, applies
// the mutation and rewrites the balance/allowance rows in the same transaction.
func (r *Repository) UpdateLedger(ctx context.Context, ledgerID string, mutate func(*entities.Ledger) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger, err := loadLedger(tx, ledgerID, true)
		if err != nil {
			return err
		}
		if err := mutate(&ledger); err != nil {
			return err
		}
		if err := tx.Model(&ledgerModel{}).
			Where("ledger_id = ?", ledgerID).
			Updates(map[string]any{
				"controller":   ledger.Controller,
				"total_supply": ledger.TotalSupply,
				"attached":     ledger.Attached,
				"updated_at":   time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("ledger_id = ?", ledgerID).Delete(&balanceModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ledger_id = ?", ledgerID).Delete(&allowanceModel{}).Error; err != nil {
			return err
		}
		return writeLedgerRows(tx, ledger)
	})
}

func (r *Repository) DiscardLedger(ctx context.Context, ledgerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger, err := loadLedger(tx, ledgerID, true)
		if err != nil {
			return err
		}
		if ledger.Attached {
			return domainerrors.ErrLedgerAttached
		}
		if err := tx.Where("ledger_id = ?", ledgerID).Delete(&balanceModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ledger_id = ?", ledgerID).Delete(&allowanceModel{}).Error; err != nil {
			return err
		}
		return tx.Where("ledger_id = ?", ledgerID).Delete(&ledgerModel{}).Error
	})
}

func loadLedger(tx *gorm.DB, ledgerID string, forUpdate bool) (entities.Ledger, error) {
	query := tx.Where("ledger_id = ?", ledgerID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row ledgerModel
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ledger{}, domainerrors.ErrLedgerNotFound
		}
		return entities.Ledger{}, err
	}

	var balances []balanceModel
	if err := tx.Where("ledger_id = ?", ledgerID).Find(&balances).Error; err != nil {
		return entities.Ledger{}, err
	}
	var allowances []allowanceModel
	if err := tx.Where("ledger_id = ?", ledgerID).Find(&allowances).Error; err != nil {
		return entities.Ledger{}, err
	}

	ledger := entities.Ledger{
		LedgerID:        row.LedgerID,
		Controller:      row.Controller,
		TotalSupply:     row.TotalSupply,
		AccessThreshold: row.AccessThreshold,
		BurnOnConsume:   row.BurnOnConsume,
		Attached:        row.Attached,
		CreatedAt:       row.CreatedAt,
		Balances:        make(map[string]uint64, len(balances)),
		Allowances:      make(map[string]map[string]uint64),
		Consumed:        make(map[string]uint64),
	}
	for _, balance := range balances {
		if balance.Balance > 0 {
			ledger.Balances[balance.Identity] = balance.Balance
		}
		if balance.Consumed > 0 {
			ledger.Consumed[balance.Identity] = balance.Consumed
		}
	}
	for _, allowance := range allowances {
		grants := ledger.Allowances[allowance.Owner]
		if grants == nil {
			grants = make(map[string]uint64)
			ledger.Allowances[allowance.Owner] = grants
		}
		grants[allowance.Spender] = allowance.Amount
	}
	return ledger, nil
}

func writeLedgerRows(tx *gorm.DB, ledger entities.Ledger) error {
	identities := make(map[string]struct{}, len(ledger.Balances)+len(ledger.Consumed))
	for identity := range ledger.Balances {
		identities[identity] = struct{}{}
	}
	for identity := range ledger.Consumed {
		identities[identity] = struct{}{}
	}

	rows := make([]balanceModel, 0, len(identities))
	for identity := range identities {
		rows = append(rows, balanceModel{
			LedgerID: ledger.LedgerID,
			Identity: identity,
			Balance:  ledger.Balances[identity],
			Consumed: ledger.Consumed[identity],
		})
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	var grants []allowanceModel
	for owner, spenders := range ledger.Allowances {
		for spender, amount := range spenders {
			if amount == 0 {
				continue
			}
			grants = append(grants, allowanceModel{
				LedgerID: ledger.LedgerID,
				Owner:    owner,
				Spender:  spender,
				Amount:   amount,
			})
		}
	}
	if len(grants) > 0 {
		if err := tx.Create(&grants).Error; err != nil {
			return err
		}
	}
	return nil
}

package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "inflectiv/contexts/asset-core/asset-registry/application"
	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"
)

const registeredEventType = "asset.registered"

type RegisterAssetCommand struct {
	Owner           string
	ExternalID      string
	Name            string
	Category        string
	MetadataRef     string
	InitialUnits    uint64
	AccessThreshold uint64
	BurnOnConsume   bool
}

type RegisterAssetResult struct {
	Asset entities.AssetRecord
}

type RegisterAssetUseCase struct {
	Repo        ports.Repository
	Ledgers     ports.LedgerFactory
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute runs registration in this order:
// 1) side-effect-free external-id uniqueness check
// 2) ledger provisioning through the deployer gate
// 3) atomic record + outbox persistence with handle assignment
// 4) ledger attachment.
// Any failure after provisioning discards the orphaned ledger (and, after
// persistence, the record) so a failed registration leaves no state behind.
func (u RegisterAssetUseCase) Execute(ctx context.Context, cmd RegisterAssetCommand) (RegisterAssetResult, error) {
	logger := application.ResolveLogger(u.Logger)
	owner := normalizeIdentity(cmd.Owner)
	externalID := strings.TrimSpace(cmd.ExternalID)
	if owner == "" || externalID == "" || strings.TrimSpace(cmd.Name) == "" {
		return RegisterAssetResult{}, domainerrors.ErrInvalidAsset
	}

	if _, found, err := u.Repo.GetAssetByExternalID(ctx, externalID); err != nil {
		return RegisterAssetResult{}, err
	} else if found {
		logger.Warn("registration rejected for duplicate external id",
			"event", "asset_register_duplicate",
			"module", "asset-core/asset-registry",
			"layer", "application",
			"external_id", externalID,
		)
		return RegisterAssetResult{}, domainerrors.ErrAssetAlreadyRegistered
	}

	ledgerID, err := u.Ledgers.ProvisionLedger(ctx, ports.LedgerProvision{
		Controller:      owner,
		InitialUnits:    cmd.InitialUnits,
		AccessThreshold: cmd.AccessThreshold,
		BurnOnConsume:   cmd.BurnOnConsume,
	})
	if err != nil {
		logger.Error("ledger provisioning failed",
			"event", "asset_register_provision_failed",
			"module", "asset-core/asset-registry",
			"layer", "application",
			"external_id", externalID,
			"error", err.Error(),
		)
		return RegisterAssetResult{}, err
	}

	now := u.now()
	record, err := entities.NewAssetRecord(
		externalID,
		cmd.Name,
		cmd.Category,
		cmd.MetadataRef,
		owner,
		ledgerID,
		now,
	)
	if err != nil {
		// Input was validated above; treat this as a conflict-free abort.
		u.discardLedger(ctx, logger, ledgerID, externalID)
		return RegisterAssetResult{}, err
	}

	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		u.discardLedger(ctx, logger, ledgerID, externalID)
		return RegisterAssetResult{}, err
	}
	event := ports.RegisteredEvent{
		EventID:      eventID,
		EventType:    registeredEventType,
		ExternalID:   externalID,
		Owner:        owner,
		LedgerID:     ledgerID,
		InitialUnits: cmd.InitialUnits,
		PartitionKey: externalID,
		OccurredAt:   now,
	}

	handle, err := u.Repo.CreateAsset(ctx, record, event)
	if err != nil {
		// Whether it was a lost uniqueness race or a persistence failure,
		// nothing was stored: drop the orphaned ledger.
		u.discardLedger(ctx, logger, ledgerID, externalID)
		return RegisterAssetResult{}, err
	}
	record.Handle = handle

	if err := u.Ledgers.AttachLedger(ctx, ledgerID); err != nil {
		if discardErr := u.Repo.DiscardAsset(ctx, handle, eventID); discardErr != nil {
			logger.Error("asset discard failed after attach abort",
				"event", "asset_register_compensation_failed",
				"module", "asset-core/asset-registry",
				"layer", "application",
				"handle", handle,
				"external_id", externalID,
				"error", discardErr.Error(),
			)
		}
		u.discardLedger(ctx, logger, ledgerID, externalID)
		return RegisterAssetResult{}, err
	}

	logger.Info("asset registered",
		"event", "asset_registered",
		"module", "asset-core/asset-registry",
		"layer", "application",
		"handle", handle,
		"external_id", externalID,
		"owner", owner,
		"ledger_id", ledgerID,
		"initial_units", cmd.InitialUnits,
	)
	return RegisterAssetResult{Asset: record}, nil
}

func (u RegisterAssetUseCase) discardLedger(ctx context.Context, logger *slog.Logger, ledgerID string, externalID string) {
	if err := u.Ledgers.DiscardLedger(ctx, ledgerID); err != nil {
		logger.Error("ledger discard failed during registration abort",
			"event", "asset_register_compensation_failed",
			"module", "asset-core/asset-registry",
			"layer", "application",
			"ledger_id", ledgerID,
			"external_id", externalID,
			"error", err.Error(),
		)
	}
}

func (u RegisterAssetUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

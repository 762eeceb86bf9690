package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inflectiv/contexts/asset-core/access-ledger/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	"inflectiv/contexts/asset-core/access-ledger/ports"
)

// Service exposes ledger provisioning and every balance operation. Mutations
// run through Repository.UpdateLedger, which serializes per aggregate.
type Service struct {
	Repo        ports.Repository
	Gate        ports.DeployerGate
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type CreateLedgerInput struct {
	Provisioner     string
	Controller      string
	InitialSupply   uint64
	AccessThreshold uint64
	BurnOnConsume   bool
}

// CreateLedger provisions a fresh ledger after consulting the deployer gate.
// The initial supply is minted to the controller in the same step.
func (s Service) CreateLedger(ctx context.Context, input CreateLedgerInput) (entities.Ledger, error) {
	logger := ResolveLogger(s.Logger)
	provisioner := NormalizeIdentity(input.Provisioner)
	controller := NormalizeIdentity(input.Controller)
	if provisioner == "" || controller == "" {
		return entities.Ledger{}, domainerrors.ErrInvalidIdentity
	}

	authorized, err := s.Gate.IsAuthorized(ctx, provisioner)
	if err != nil {
		return entities.Ledger{}, err
	}
	if !authorized {
		logger.Warn("ledger provisioning rejected",
			"event", "ledger_provisioning_rejected",
			"module", "asset-core/access-ledger",
			"layer", "application",
			"provisioner", provisioner,
		)
		return entities.Ledger{}, domainerrors.ErrDeploymentUnauthorized
	}

	ledgerID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Ledger{}, err
	}
	ledger, err := entities.NewLedger(
		ledgerID,
		controller,
		input.InitialSupply,
		input.AccessThreshold,
		input.BurnOnConsume,
		s.now(),
	)
	if err != nil {
		return entities.Ledger{}, err
	}
	if err := s.Repo.CreateLedger(ctx, ledger); err != nil {
		return entities.Ledger{}, err
	}

	logger.Info("access ledger provisioned",
		"event", "access_ledger_provisioned",
		"module", "asset-core/access-ledger",
		"layer", "application",
		"ledger_id", ledger.LedgerID,
		"controller", controller,
		"initial_supply", input.InitialSupply,
		"burn_on_consume", input.BurnOnConsume,
	)
	return ledger, nil
}

// Attach marks the ledger as bound to an asset record. Attached ledgers can
// no longer be discarded.
func (s Service) Attach(ctx context.Context, ledgerID string) error {
	return s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		ledger.Attached = true
		return nil
	})
}

// Discard removes a ledger that registration provisioned but never attached.
func (s Service) Discard(ctx context.Context, ledgerID string) error {
	ledger, err := s.Repo.GetLedger(ctx, ledgerID)
	if err != nil {
		return err
	}
	if ledger.Attached {
		return domainerrors.ErrLedgerAttached
	}
	return s.Repo.DiscardLedger(ctx, ledgerID)
}

// SetController follows asset ownership transfers. Only the current
// controller may hand the ledger over.
func (s Service) SetController(ctx context.Context, ledgerID string, caller string, newController string) error {
	caller = NormalizeIdentity(caller)
	newController = NormalizeIdentity(newController)
	if newController == "" {
		return domainerrors.ErrInvalidIdentity
	}
	return s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		if caller != ledger.Controller {
			return domainerrors.ErrNotController
		}
		ledger.Controller = newController
		return nil
	})
}

func (s Service) GetLedger(ctx context.Context, ledgerID string) (entities.Ledger, error) {
	return s.Repo.GetLedger(ctx, ledgerID)
}

func (s Service) BalanceOf(ctx context.Context, ledgerID string, identity string) (uint64, error) {
	ledger, err := s.Repo.GetLedger(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	return ledger.BalanceOf(NormalizeIdentity(identity)), nil
}

func (s Service) HasAccess(ctx context.Context, ledgerID string, identity string) (bool, error) {
	ledger, err := s.Repo.GetLedger(ctx, ledgerID)
	if err != nil {
		return false, err
	}
	return ledger.HasAccess(NormalizeIdentity(identity)), nil
}

func (s Service) AccessUnits(ctx context.Context, ledgerID string, identity string) (uint64, error) {
	ledger, err := s.Repo.GetLedger(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	return ledger.AccessUnits(NormalizeIdentity(identity)), nil
}

func (s Service) ConsumedOf(ctx context.Context, ledgerID string, identity string) (uint64, error) {
	ledger, err := s.Repo.GetLedger(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	return ledger.ConsumedOf(NormalizeIdentity(identity)), nil
}

func (s Service) Allowance(ctx context.Context, ledgerID string, owner string, spender string) (uint64, error) {
	ledger, err := s.Repo.GetLedger(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	return ledger.Allowance(NormalizeIdentity(owner), NormalizeIdentity(spender)), nil
}

func (s Service) Transfer(ctx context.Context, ledgerID string, from string, to string, amount uint64) error {
	from = NormalizeIdentity(from)
	to = NormalizeIdentity(to)
	err := s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		return ledger.Transfer(from, to, amount)
	})
	if err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("ledger transfer applied",
		"event", "ledger_transfer_applied",
		"module", "asset-core/access-ledger",
		"layer", "application",
		"ledger_id", ledgerID,
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (s Service) Approve(ctx context.Context, ledgerID string, owner string, spender string, amount uint64) error {
	owner = NormalizeIdentity(owner)
	spender = NormalizeIdentity(spender)
	return s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		return ledger.Approve(owner, spender, amount)
	})
}

func (s Service) TransferFrom(ctx context.Context, ledgerID string, spender string, from string, to string, amount uint64) error {
	spender = NormalizeIdentity(spender)
	from = NormalizeIdentity(from)
	to = NormalizeIdentity(to)
	err := s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		return ledger.TransferFrom(spender, from, to, amount)
	})
	if err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("ledger delegated transfer applied",
		"event", "ledger_transfer_from_applied",
		"module", "asset-core/access-ledger",
		"layer", "application",
		"ledger_id", ledgerID,
		"spender", spender,
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (s Service) Burn(ctx context.Context, ledgerID string, caller string, amount uint64) error {
	caller = NormalizeIdentity(caller)
	return s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		return ledger.Burn(caller, amount)
	})
}

// MintAdditional is restricted to the ledger controller, i.e. the current
// owner of the controlling asset record.
func (s Service) MintAdditional(ctx context.Context, ledgerID string, caller string, to string, amount uint64) error {
	caller = NormalizeIdentity(caller)
	to = NormalizeIdentity(to)
	return s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		if caller != ledger.Controller {
			return domainerrors.ErrNotController
		}
		return ledger.Mint(to, amount)
	})
}

func (s Service) ConsumeAccess(ctx context.Context, ledgerID string, caller string, amount uint64) error {
	caller = NormalizeIdentity(caller)
	return s.Repo.UpdateLedger(ctx, ledgerID, func(ledger *entities.Ledger) error {
		return ledger.Consume(caller, amount)
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

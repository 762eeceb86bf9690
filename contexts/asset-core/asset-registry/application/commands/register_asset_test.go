package commands

import (
	"context"
	"errors"
	"testing"

	ledgermodule "inflectiv/contexts/asset-core/access-ledger"
	ledgerentities "inflectiv/contexts/asset-core/access-ledger/domain/entities"
	ledgererrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	ledgeradapter "inflectiv/contexts/asset-core/asset-registry/adapters/ledger"
	"inflectiv/contexts/asset-core/asset-registry/adapters/memory"
	"inflectiv/contexts/asset-core/asset-registry/application/queries"
	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"
	deployermemory "inflectiv/contexts/asset-core/deployer-registry/adapters/memory"
	deployerapp "inflectiv/contexts/asset-core/deployer-registry/application"
)

const provisionerIdentity = "registry-provisioner"

type fixture struct {
	store    *memory.Store
	ledgers  ledgermodule.Module
	factory  ledgeradapter.Factory
	register RegisterAssetUseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	deployers := deployerapp.Service{
		AdminOwner: "admin",
		Repo:       deployermemory.NewStore(),
	}
	if err := deployers.SetAuthorization(context.Background(), "admin", provisionerIdentity, true); err != nil {
		t.Fatalf("authorizing provisioner: %v", err)
	}

	ledgers := ledgermodule.NewInMemoryModule(deployers, nil)
	store := memory.NewStore()
	factory := ledgeradapter.Factory{
		Ledgers:     ledgers.Service,
		Provisioner: provisionerIdentity,
	}
	return fixture{
		store:   store,
		ledgers: ledgers,
		factory: factory,
		register: RegisterAssetUseCase{
			Repo:        store,
			Ledgers:     factory,
			Clock:       store,
			IDGenerator: store,
		},
	}
}

func (f fixture) mustRegister(t *testing.T, owner string, externalID string, units uint64) entities.AssetRecord {
	t.Helper()
	result, err := f.register.Execute(context.Background(), RegisterAssetCommand{
		Owner:        owner,
		ExternalID:   externalID,
		Name:         "weather telemetry 2025",
		Category:     "telemetry",
		MetadataRef:  "ipfs://bafy-weather",
		InitialUnits: units,
	})
	if err != nil {
		t.Fatalf("registering asset: %v", err)
	}
	return result.Asset
}

func TestRegisterAssetAssignsHandleAndDefaults(t *testing.T) {
	f := newFixture(t)
	asset := f.mustRegister(t, "Alice", "ds-001", 10)

	if asset.Handle != 1 {
		t.Fatalf("expected first handle 1, got %d", asset.Handle)
	}
	if asset.Owner != "alice" || asset.Creator != "alice" {
		t.Fatalf("expected normalized owner/creator, got %q/%q", asset.Owner, asset.Creator)
	}
	if asset.Royalty.Receiver != "alice" || asset.Royalty.RateBps != entities.DefaultRoyaltyRateBps {
		t.Fatalf("unexpected default royalty %+v", asset.Royalty)
	}
	if !asset.Active {
		t.Fatal("expected asset active after registration")
	}

	balance, err := f.ledgers.Service.BalanceOf(context.Background(), asset.LedgerID, "alice")
	if err != nil {
		t.Fatalf("reading owner balance: %v", err)
	}
	if want := 10 * uint64(ledgerentities.AccessUnitSize); balance != want {
		t.Fatalf("expected owner balance %d, got %d", want, balance)
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing outbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending outbox event, got %d", len(pending))
	}
	if pending[0].EventType != "asset.registered" {
		t.Fatalf("unexpected outbox event type %q", pending[0].EventType)
	}
}

func TestRegisterAssetDuplicateExternalIDLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.mustRegister(t, "alice", "ds-001", 10)

	_, err := f.register.Execute(context.Background(), RegisterAssetCommand{
		Owner:        "bob",
		ExternalID:   "ds-001",
		Name:         "duplicate",
		InitialUnits: 5,
	})
	if !errors.Is(err, domainerrors.ErrAssetAlreadyRegistered) {
		t.Fatalf("expected ErrAssetAlreadyRegistered, got %v", err)
	}

	bobAssets, err := f.store.ListAssetsByOwner(context.Background(), "bob")
	if err != nil {
		t.Fatalf("listing bob's assets: %v", err)
	}
	if len(bobAssets) != 0 {
		t.Fatalf("expected no record for rejected registration, got %d", len(bobAssets))
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing outbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected only the first registration's event, got %d", len(pending))
	}
}

// provisionRecorder remembers the last ledger created so tests can assert it
// was discarded when a later registration step fails.
type provisionRecorder struct {
	ports.LedgerFactory
	lastLedgerID string
}

func (r *provisionRecorder) ProvisionLedger(ctx context.Context, provision ports.LedgerProvision) (string, error) {
	ledgerID, err := r.LedgerFactory.ProvisionLedger(ctx, provision)
	r.lastLedgerID = ledgerID
	return ledgerID, err
}

type createFailRepo struct {
	ports.Repository
	err error
}

func (r createFailRepo) CreateAsset(context.Context, entities.AssetRecord, ports.RegisteredEvent) (uint64, error) {
	return 0, r.err
}

type attachFailFactory struct {
	ports.LedgerFactory
	err error
}

func (f attachFailFactory) AttachLedger(context.Context, string) error {
	return f.err
}

func TestRegisterAssetCreateFailureDiscardsProvisionedLedger(t *testing.T) {
	f := newFixture(t)
	recorder := &provisionRecorder{LedgerFactory: f.factory}
	boom := errors.New("write timeout")
	register := RegisterAssetUseCase{
		Repo:        createFailRepo{Repository: f.store, err: boom},
		Ledgers:     recorder,
		Clock:       f.store,
		IDGenerator: f.store,
	}

	_, err := register.Execute(context.Background(), RegisterAssetCommand{
		Owner:        "alice",
		ExternalID:   "ds-flaky",
		Name:         "never lands",
		InitialUnits: 5,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected persistence error to surface, got %v", err)
	}

	if recorder.lastLedgerID == "" {
		t.Fatal("expected a ledger to have been provisioned before the failure")
	}
	if _, err := f.ledgers.Service.BalanceOf(context.Background(), recorder.lastLedgerID, "alice"); !errors.Is(err, ledgererrors.ErrLedgerNotFound) {
		t.Fatalf("expected provisioned ledger to be discarded, got %v", err)
	}
}

func TestRegisterAssetAttachFailureLeavesNoRecordOrLedger(t *testing.T) {
	f := newFixture(t)
	recorder := &provisionRecorder{
		LedgerFactory: attachFailFactory{
			LedgerFactory: f.factory,
			err:           errors.New("attach refused"),
		},
	}
	register := RegisterAssetUseCase{
		Repo:        f.store,
		Ledgers:     recorder,
		Clock:       f.store,
		IDGenerator: f.store,
	}

	_, err := register.Execute(context.Background(), RegisterAssetCommand{
		Owner:        "alice",
		ExternalID:   "ds-detached",
		Name:         "never attaches",
		InitialUnits: 5,
	})
	if err == nil {
		t.Fatal("expected attach failure to surface")
	}

	if _, found, err := f.store.GetAssetByExternalID(context.Background(), "ds-detached"); err != nil {
		t.Fatalf("lookup after abort: %v", err)
	} else if found {
		t.Fatal("expected persisted record to be discarded after attach abort")
	}
	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing outbox: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending outbox event after abort, got %d", len(pending))
	}
	if _, err := f.ledgers.Service.BalanceOf(context.Background(), recorder.lastLedgerID, "alice"); !errors.Is(err, ledgererrors.ErrLedgerNotFound) {
		t.Fatalf("expected provisioned ledger to be discarded, got %v", err)
	}
}

func TestRegisterAssetRejectsUnauthorizedProvisioner(t *testing.T) {
	f := newFixture(t)
	rogue := RegisterAssetUseCase{
		Repo: f.store,
		Ledgers: ledgeradapter.Factory{
			Ledgers:     f.ledgers.Service,
			Provisioner: "rogue",
		},
		Clock:       f.store,
		IDGenerator: f.store,
	}

	_, err := rogue.Execute(context.Background(), RegisterAssetCommand{
		Owner:        "alice",
		ExternalID:   "ds-rogue",
		Name:         "blocked",
		InitialUnits: 1,
	})
	if !errors.Is(err, ledgererrors.ErrDeploymentUnauthorized) {
		t.Fatalf("expected ErrDeploymentUnauthorized, got %v", err)
	}

	if _, found, err := f.store.GetAssetByExternalID(context.Background(), "ds-rogue"); err != nil {
		t.Fatalf("lookup after rejection: %v", err)
	} else if found {
		t.Fatal("expected no partial record after rejected provisioning")
	}
}

func TestMintUnitsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	asset := f.mustRegister(t, "alice", "ds-001", 10)
	mint := MintUnitsUseCase{Repo: f.store, Ledgers: f.factory}

	err := mint.Execute(context.Background(), "mallory", asset.Handle, "mallory", ledgerentities.AccessUnitSize)
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-owner mint, got %v", err)
	}

	if err := mint.Execute(context.Background(), "alice", asset.Handle, "bob", 3*ledgerentities.AccessUnitSize); err != nil {
		t.Fatalf("owner mint failed: %v", err)
	}
	balance, err := f.ledgers.Service.BalanceOf(context.Background(), asset.LedgerID, "bob")
	if err != nil {
		t.Fatalf("reading minted balance: %v", err)
	}
	if want := uint64(3 * ledgerentities.AccessUnitSize); balance != want {
		t.Fatalf("expected bob balance %d, got %d", want, balance)
	}
}

func TestSetRoyaltyValidatesRateAndOwner(t *testing.T) {
	f := newFixture(t)
	asset := f.mustRegister(t, "alice", "ds-001", 10)
	setRoyalty := SetRoyaltyUseCase{Repo: f.store}

	if err := setRoyalty.Execute(context.Background(), "alice", asset.Handle, "alice", entities.MaxRoyaltyRateBps+1); !errors.Is(err, domainerrors.ErrInvalidRoyaltyRate) {
		t.Fatalf("expected ErrInvalidRoyaltyRate, got %v", err)
	}
	if err := setRoyalty.Execute(context.Background(), "mallory", asset.Handle, "mallory", 100); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := setRoyalty.Execute(context.Background(), "alice", asset.Handle, "carol", 750); err != nil {
		t.Fatalf("updating royalty: %v", err)
	}
	quote, err := queries.RoyaltyInfoUseCase{Repo: f.store}.Execute(context.Background(), asset.Handle, 10_000)
	if err != nil {
		t.Fatalf("quoting royalty: %v", err)
	}
	if quote.Receiver != "carol" || quote.Amount != 750 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestRoyaltyQuoteRoundsDown(t *testing.T) {
	f := newFixture(t)
	asset := f.mustRegister(t, "alice", "ds-001", 10)

	quote, err := queries.RoyaltyInfoUseCase{Repo: f.store}.Execute(context.Background(), asset.Handle, 333)
	if err != nil {
		t.Fatalf("quoting royalty: %v", err)
	}
	// floor(333 * 500 / 10000) = 16
	if quote.Amount != 16 {
		t.Fatalf("expected royalty 16, got %d", quote.Amount)
	}
	if quote.Receiver != "alice" {
		t.Fatalf("expected creator as default receiver, got %q", quote.Receiver)
	}
}

func TestTransferOwnershipHandsLedgerControlOver(t *testing.T) {
	f := newFixture(t)
	asset := f.mustRegister(t, "alice", "ds-001", 10)
	transfer := TransferOwnershipUseCase{Repo: f.store, Ledgers: f.factory}
	mint := MintUnitsUseCase{Repo: f.store, Ledgers: f.factory}

	if err := transfer.Execute(context.Background(), "alice", asset.Handle, "bob"); err != nil {
		t.Fatalf("transferring ownership: %v", err)
	}

	if err := mint.Execute(context.Background(), "alice", asset.Handle, "alice", 1); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected former owner to lose mint rights, got %v", err)
	}
	if err := mint.Execute(context.Background(), "bob", asset.Handle, "bob", ledgerentities.AccessUnitSize); err != nil {
		t.Fatalf("new owner mint failed: %v", err)
	}

	updated, err := f.store.GetAsset(context.Background(), asset.Handle)
	if err != nil {
		t.Fatalf("reloading asset: %v", err)
	}
	if updated.Owner != "bob" {
		t.Fatalf("expected owner bob, got %q", updated.Owner)
	}
	if updated.Royalty.Receiver != "alice" {
		t.Fatalf("expected royalty to stay with creator, got %q", updated.Royalty.Receiver)
	}
}

func TestCheckAccessFollowsLedgerThreshold(t *testing.T) {
	f := newFixture(t)
	asset := f.mustRegister(t, "alice", "ds-001", 10)
	check := queries.CheckAccessUseCase{Repo: f.store, Ledgers: f.factory}

	hasAccess, err := check.Execute(context.Background(), asset.Handle, "alice")
	if err != nil {
		t.Fatalf("checking owner access: %v", err)
	}
	if !hasAccess {
		t.Fatal("expected owner to hold access")
	}

	hasAccess, err = check.Execute(context.Background(), asset.Handle, "stranger")
	if err != nil {
		t.Fatalf("checking stranger access: %v", err)
	}
	if hasAccess {
		t.Fatal("expected stranger without balance to lack access")
	}
}

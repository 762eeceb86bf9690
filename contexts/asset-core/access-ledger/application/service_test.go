package application_test

import (
	"context"
	"errors"
	"testing"

	accessledger "inflectiv/contexts/asset-core/access-ledger"
	"inflectiv/contexts/asset-core/access-ledger/application"
	"inflectiv/contexts/asset-core/access-ledger/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	deployerregistry "inflectiv/contexts/asset-core/deployer-registry"
)

const initialSupply = 100 * entities.AccessUnitSize

func newLedgerModule(t *testing.T) accessledger.Module {
	t.Helper()
	deployers := deployerregistry.NewInMemoryModule("0xadmin", nil)
	if err := deployers.Service.SetAuthorization(context.Background(), "0xadmin", "0xregistry", true); err != nil {
		t.Fatalf("authorize provisioner: %v", err)
	}
	return accessledger.NewInMemoryModule(deployers.Service, nil)
}

func provision(t *testing.T, module accessledger.Module, burnOnConsume bool) string {
	t.Helper()
	ledger, err := module.Service.CreateLedger(context.Background(), application.CreateLedgerInput{
		Provisioner:   "0xregistry",
		Controller:    "0xcreator",
		InitialSupply: initialSupply,
		BurnOnConsume: burnOnConsume,
	})
	if err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	return ledger.LedgerID
}

func assertSupplyInvariant(t *testing.T, module accessledger.Module, ledgerID string) {
	t.Helper()
	ledger, err := module.Service.GetLedger(context.Background(), ledgerID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	var sum uint64
	for _, balance := range ledger.Balances {
		sum += balance
	}
	if sum != ledger.TotalSupply {
		t.Fatalf("supply invariant broken: sum(balances)=%d totalSupply=%d", sum, ledger.TotalSupply)
	}
}

func TestCreateLedgerRejectsUnauthorizedProvisioner(t *testing.T) {
	deployers := deployerregistry.NewInMemoryModule("0xadmin", nil)
	module := accessledger.NewInMemoryModule(deployers.Service, nil)

	_, err := module.Service.CreateLedger(context.Background(), application.CreateLedgerInput{
		Provisioner:   "0xrogue",
		Controller:    "0xcreator",
		InitialSupply: initialSupply,
	})
	if !errors.Is(err, domainerrors.ErrDeploymentUnauthorized) {
		t.Fatalf("expected ErrDeploymentUnauthorized, got %v", err)
	}
}

func TestInitialSupplyMintedToController(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)

	balance, err := module.Service.BalanceOf(context.Background(), ledgerID, "0xcreator")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != initialSupply {
		t.Fatalf("expected %d, got %d", initialSupply, balance)
	}
	units, err := module.Service.AccessUnits(context.Background(), ledgerID, "0xcreator")
	if err != nil || units != 100 {
		t.Fatalf("expected 100 access units, got %d (%v)", units, err)
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestTransferMovesBalanceAndGrantsAccess(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	hasAccess, err := module.Service.HasAccess(ctx, ledgerID, "0xbuyer")
	if err != nil || hasAccess {
		t.Fatalf("buyer should not have access yet: %v %v", hasAccess, err)
	}

	if err := module.Service.Transfer(ctx, ledgerID, "0xcreator", "0xbuyer", entities.AccessUnitSize); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	hasAccess, err = module.Service.HasAccess(ctx, ledgerID, "0xbuyer")
	if err != nil || !hasAccess {
		t.Fatalf("buyer should have access after transfer: %v %v", hasAccess, err)
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestTransferInsufficientBalance(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)

	err := module.Service.Transfer(context.Background(), ledgerID, "0xcreator", "0xbuyer", initialSupply+1)
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestTransferFromDecrementsAllowanceExactly(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	if err := module.Service.Approve(ctx, ledgerID, "0xcreator", "0xmarketplace", 30*entities.AccessUnitSize); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := module.Service.TransferFrom(ctx, ledgerID, "0xmarketplace", "0xcreator", "0xbuyer", 10*entities.AccessUnitSize); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}

	allowance, err := module.Service.Allowance(ctx, ledgerID, "0xcreator", "0xmarketplace")
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if allowance != 20*entities.AccessUnitSize {
		t.Fatalf("allowance not decremented exactly: %d", allowance)
	}

	err = module.Service.TransferFrom(ctx, ledgerID, "0xmarketplace", "0xcreator", "0xbuyer", 21*entities.AccessUnitSize)
	if !errors.Is(err, domainerrors.ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestTransferFromInsufficientSellerBalance(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	// Allowance larger than the actual balance: the balance check must win.
	if err := module.Service.Approve(ctx, ledgerID, "0xcreator", "0xmarketplace", 10*initialSupply); err != nil {
		t.Fatalf("approve: %v", err)
	}
	err := module.Service.TransferFrom(ctx, ledgerID, "0xmarketplace", "0xcreator", "0xbuyer", initialSupply+1)
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestBurnReducesSupply(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	if err := module.Service.Burn(ctx, ledgerID, "0xcreator", 10*entities.AccessUnitSize); err != nil {
		t.Fatalf("burn: %v", err)
	}
	ledger, err := module.Service.GetLedger(ctx, ledgerID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if ledger.TotalSupply != 90*entities.AccessUnitSize {
		t.Fatalf("expected supply 90 units, got %d", ledger.TotalSupply)
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestMintAdditionalControllerOnly(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	err := module.Service.MintAdditional(ctx, ledgerID, "0xbuyer", "0xbuyer", entities.AccessUnitSize)
	if !errors.Is(err, domainerrors.ErrNotController) {
		t.Fatalf("expected ErrNotController, got %v", err)
	}

	if err := module.Service.MintAdditional(ctx, ledgerID, "0xcreator", "0xbuyer", 50*entities.AccessUnitSize); err != nil {
		t.Fatalf("mint: %v", err)
	}
	ledger, err := module.Service.GetLedger(ctx, ledgerID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if ledger.TotalSupply != 150*entities.AccessUnitSize {
		t.Fatalf("expected supply 150 units, got %d", ledger.TotalSupply)
	}
	if ledger.BalanceOf("0xbuyer") != 50*entities.AccessUnitSize {
		t.Fatalf("mint recipient balance wrong: %d", ledger.BalanceOf("0xbuyer"))
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestConsumeBurnMode(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, true)
	ctx := context.Background()

	if err := module.Service.ConsumeAccess(ctx, ledgerID, "0xcreator", 5*entities.AccessUnitSize); err != nil {
		t.Fatalf("consume: %v", err)
	}
	ledger, err := module.Service.GetLedger(ctx, ledgerID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if ledger.TotalSupply != 95*entities.AccessUnitSize {
		t.Fatalf("burn-on-consume must reduce supply, got %d", ledger.TotalSupply)
	}
	if ledger.BalanceOf("0xcreator") != 95*entities.AccessUnitSize {
		t.Fatalf("burn-on-consume must reduce balance, got %d", ledger.BalanceOf("0xcreator"))
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestConsumeMeterMode(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	if err := module.Service.ConsumeAccess(ctx, ledgerID, "0xcreator", 60*entities.AccessUnitSize); err != nil {
		t.Fatalf("consume: %v", err)
	}
	ledger, err := module.Service.GetLedger(ctx, ledgerID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if ledger.TotalSupply != initialSupply || ledger.BalanceOf("0xcreator") != initialSupply {
		t.Fatalf("meter mode must leave balance and supply untouched")
	}
	if ledger.ConsumedOf("0xcreator") != 60*entities.AccessUnitSize {
		t.Fatalf("consumed meter wrong: %d", ledger.ConsumedOf("0xcreator"))
	}

	// Remaining allotment is 40 units; consuming 41 must fail.
	err = module.Service.ConsumeAccess(ctx, ledgerID, "0xcreator", 41*entities.AccessUnitSize)
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	assertSupplyInvariant(t, module, ledgerID)
}

func TestDiscardOnlyUnattached(t *testing.T) {
	module := newLedgerModule(t)
	ledgerID := provision(t, module, false)
	ctx := context.Background()

	if err := module.Service.Attach(ctx, ledgerID); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := module.Service.Discard(ctx, ledgerID); !errors.Is(err, domainerrors.ErrLedgerAttached) {
		t.Fatalf("expected ErrLedgerAttached, got %v", err)
	}

	orphanID := provision(t, module, false)
	if err := module.Service.Discard(ctx, orphanID); err != nil {
		t.Fatalf("discard orphan: %v", err)
	}
	if _, err := module.Service.GetLedger(ctx, orphanID); !errors.Is(err, domainerrors.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound after discard, got %v", err)
	}
}

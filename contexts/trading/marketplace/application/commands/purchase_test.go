package commands

import (
	"context"
	"errors"
	"testing"

	ledgermodule "inflectiv/contexts/asset-core/access-ledger"
	ledgerentities "inflectiv/contexts/asset-core/access-ledger/domain/entities"
	ledgererrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	ledgeradapter "inflectiv/contexts/asset-core/asset-registry/adapters/ledger"
	registrymemory "inflectiv/contexts/asset-core/asset-registry/adapters/memory"
	registrycommands "inflectiv/contexts/asset-core/asset-registry/application/commands"
	assetqueries "inflectiv/contexts/asset-core/asset-registry/application/queries"
	deployermemory "inflectiv/contexts/asset-core/deployer-registry/adapters/memory"
	deployerapp "inflectiv/contexts/asset-core/deployer-registry/application"
	"inflectiv/contexts/trading/marketplace/adapters/memory"
	"inflectiv/contexts/trading/marketplace/adapters/payments"
	registryadapter "inflectiv/contexts/trading/marketplace/adapters/registry"
	rightsadapter "inflectiv/contexts/trading/marketplace/adapters/rights"
	"inflectiv/contexts/trading/marketplace/application/queries"
	"inflectiv/contexts/trading/marketplace/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	"inflectiv/contexts/trading/marketplace/ports"
)

const (
	sellerIdentity  = "creator"
	buyerIdentity   = "buyer"
	treasuryAccount = "platform-treasury"
	spenderIdentity = "marketplace-settlement"
)

type fixture struct {
	store    *memory.Store
	rail     *payments.Rail
	ledgers  ledgermodule.Module
	ledgerID string
	handle   uint64

	create    CreateListingUseCase
	update    UpdateListingUseCase
	cancel    CancelListingUseCase
	purchase  PurchaseUseCase
	calculate queries.CalculatePurchaseUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	deployers := deployerapp.Service{
		AdminOwner: "admin",
		Repo:       deployermemory.NewStore(),
	}
	if err := deployers.SetAuthorization(ctx, "admin", "registry-provisioner", true); err != nil {
		t.Fatalf("authorizing provisioner: %v", err)
	}

	ledgers := ledgermodule.NewInMemoryModule(deployers, nil)
	registryStore := registrymemory.NewStore()
	register := registrycommands.RegisterAssetUseCase{
		Repo: registryStore,
		Ledgers: ledgeradapter.Factory{
			Ledgers:     ledgers.Service,
			Provisioner: "registry-provisioner",
		},
		Clock:       registryStore,
		IDGenerator: registryStore,
	}
	registered, err := register.Execute(ctx, registrycommands.RegisterAssetCommand{
		Owner:        sellerIdentity,
		ExternalID:   "asset-1",
		Name:         "asset one",
		InitialUnits: 100,
	})
	if err != nil {
		t.Fatalf("registering asset: %v", err)
	}

	// Seller pre-approves the marketplace's settlement identity as spender.
	if err := ledgers.Service.Approve(ctx, registered.Asset.LedgerID, sellerIdentity, spenderIdentity, 100*ledgerentities.AccessUnitSize); err != nil {
		t.Fatalf("approving marketplace spender: %v", err)
	}

	store := memory.NewStore()
	rail := payments.NewRail()
	directory := registryadapter.Directory{Assets: assetqueries.GetAssetUseCase{Repo: registryStore}}
	rights := rightsadapter.LedgerRights{Ledgers: ledgers.Service}

	return &fixture{
		store:    store,
		rail:     rail,
		ledgers:  ledgers,
		ledgerID: registered.Asset.LedgerID,
		handle:   registered.Asset.Handle,
		create: CreateListingUseCase{
			Repo:            store,
			Assets:          directory,
			Clock:           store,
			IDGenerator:     store,
			MinListingPrice: 1,
		},
		update: UpdateListingUseCase{Repo: store, MinListingPrice: 1},
		cancel: CancelListingUseCase{Repo: store},
		purchase: PurchaseUseCase{
			Repo:            store,
			Assets:          directory,
			Rights:          rights,
			Payments:        rail,
			Clock:           store,
			IDGenerator:     store,
			PlatformFeeBps:  entities.PlatformFeeBps,
			TreasuryAccount: treasuryAccount,
			SpenderIdentity: spenderIdentity,
		},
		calculate: queries.CalculatePurchaseUseCase{
			Repo:           store,
			Assets:         directory,
			PlatformFeeBps: entities.PlatformFeeBps,
		},
	}
}

func (f *fixture) mustList(t *testing.T, pricePerUnit uint64, unitCount uint64) entities.Listing {
	t.Helper()
	listing, err := f.create.Execute(context.Background(), CreateListingCommand{
		Caller:       sellerIdentity,
		AssetHandle:  f.handle,
		PricePerUnit: pricePerUnit,
		UnitCount:    unitCount,
	})
	if err != nil {
		t.Fatalf("creating listing: %v", err)
	}
	return listing
}

func (f *fixture) balance(t *testing.T, identity string) uint64 {
	t.Helper()
	balance, err := f.ledgers.Service.BalanceOf(context.Background(), f.ledgerID, identity)
	if err != nil {
		t.Fatalf("reading balance of %s: %v", identity, err)
	}
	return balance
}

func TestCreateListingRejectsSecondActiveListing(t *testing.T) {
	f := newFixture(t)
	f.mustList(t, 1_000_000, 50)

	_, err := f.create.Execute(context.Background(), CreateListingCommand{
		Caller:       sellerIdentity,
		AssetHandle:  f.handle,
		PricePerUnit: 2_000_000,
		UnitCount:    10,
	})
	if !errors.Is(err, domainerrors.ErrListingAlreadyActive) {
		t.Fatalf("expected ErrListingAlreadyActive, got %v", err)
	}
}

func TestCreateListingRequiresDatasetOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Execute(context.Background(), CreateListingCommand{
		Caller:       "intruder",
		AssetHandle:  f.handle,
		PricePerUnit: 1_000_000,
		UnitCount:    10,
	})
	if !errors.Is(err, domainerrors.ErrNotDatasetOwner) {
		t.Fatalf("expected ErrNotDatasetOwner, got %v", err)
	}
	if _, exists, err := f.store.GetActiveListingByAsset(context.Background(), f.handle); err != nil {
		t.Fatalf("lookup after rejection: %v", err)
	} else if exists {
		t.Fatal("expected no listing after rejected create")
	}
}

func TestCreateListingEnforcesMinimumPrice(t *testing.T) {
	f := newFixture(t)
	f.create.MinListingPrice = 500

	_, err := f.create.Execute(context.Background(), CreateListingCommand{
		Caller:       sellerIdentity,
		AssetHandle:  f.handle,
		PricePerUnit: 499,
		UnitCount:    10,
	})
	if !errors.Is(err, domainerrors.ErrPriceTooLow) {
		t.Fatalf("expected ErrPriceTooLow, got %v", err)
	}
}

func TestCalculatePurchaseSplitsExactly(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)

	quote, err := f.calculate.Execute(context.Background(), listing.ListingID, 10)
	if err != nil {
		t.Fatalf("quoting purchase: %v", err)
	}
	if quote.TotalPrice != 10_000_000 {
		t.Fatalf("expected total 10_000_000, got %d", quote.TotalPrice)
	}
	if quote.PlatformFee != 250_000 {
		t.Fatalf("expected platform fee 250_000, got %d", quote.PlatformFee)
	}
	if quote.RoyaltyAmount != 500_000 {
		t.Fatalf("expected royalty 500_000, got %d", quote.RoyaltyAmount)
	}
	if quote.SellerProceeds != 9_250_000 {
		t.Fatalf("expected seller proceeds 9_250_000, got %d", quote.SellerProceeds)
	}

	again, err := f.calculate.Execute(context.Background(), listing.ListingID, 10)
	if err != nil {
		t.Fatalf("re-quoting purchase: %v", err)
	}
	if again != quote {
		t.Fatalf("expected identical quote on repeat, got %+v then %+v", quote, again)
	}
}

func TestQuoteDecompositionIsExactAcrossPrices(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 333_337, 50)

	for _, units := range []uint64{1, 3, 7, 49} {
		quote, err := f.calculate.Execute(context.Background(), listing.ListingID, units)
		if err != nil {
			t.Fatalf("quoting %d units: %v", units, err)
		}
		if quote.PlatformFee+quote.RoyaltyAmount+quote.SellerProceeds != quote.TotalPrice {
			t.Fatalf("split does not sum to total for %d units: %+v", units, quote)
		}
	}
}

func TestPurchaseRejectsIncorrectPaymentWithoutStateChange(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 20_000_000)
	sellerBefore := f.balance(t, sellerIdentity)

	_, err := f.purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     10,
		PaymentAmount: 9_999_999,
	})
	if !errors.Is(err, domainerrors.ErrIncorrectPayment) {
		t.Fatalf("expected ErrIncorrectPayment, got %v", err)
	}

	reloaded, err := f.store.GetListing(context.Background(), listing.ListingID)
	if err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if reloaded.AvailableUnits != 50 || reloaded.TotalSold != 0 {
		t.Fatalf("expected listing untouched, got %+v", reloaded)
	}
	if f.balance(t, sellerIdentity) != sellerBefore {
		t.Fatal("expected seller ledger balance unchanged")
	}
	if f.rail.Balance(buyerIdentity) != 20_000_000 {
		t.Fatal("expected buyer funds unchanged")
	}
}

func TestPurchaseMovesFundsAndRights(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 20_000_000)
	sellerBefore := f.balance(t, sellerIdentity)

	result, err := f.purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     10,
		PaymentAmount: 10_000_000,
	})
	if err != nil {
		t.Fatalf("purchasing: %v", err)
	}

	if result.Listing.AvailableUnits != 40 {
		t.Fatalf("expected 40 available units, got %d", result.Listing.AvailableUnits)
	}
	if result.Listing.TotalSold != 10 {
		t.Fatalf("expected 10 units sold, got %d", result.Listing.TotalSold)
	}

	moved := 10 * ledgerentities.AccessUnitSize
	if got := f.balance(t, buyerIdentity); got != moved {
		t.Fatalf("expected buyer balance %d, got %d", moved, got)
	}
	if got := f.balance(t, sellerIdentity); got != sellerBefore-moved {
		t.Fatalf("expected seller balance %d, got %d", sellerBefore-moved, got)
	}

	// Creator is both seller and default royalty receiver here.
	if got := f.rail.Balance(sellerIdentity); got != 9_750_000 {
		t.Fatalf("expected seller rail balance 9_750_000, got %d", got)
	}
	if got := f.rail.Balance(treasuryAccount); got != 250_000 {
		t.Fatalf("expected treasury rail balance 250_000, got %d", got)
	}
	if got := f.rail.Balance(buyerIdentity); got != 10_000_000 {
		t.Fatalf("expected buyer rail balance 10_000_000, got %d", got)
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing outbox: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "marketplace.purchase.completed" {
		t.Fatalf("expected one purchase-completed outbox event, got %+v", pending)
	}
}

func TestPurchaseRejectsOversizedUnitCount(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 100_000_000)

	_, err := f.purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     51,
		PaymentAmount: 51_000_000,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientAvailableUnits) {
		t.Fatalf("expected ErrInsufficientAvailableUnits, got %v", err)
	}
}

func TestPurchaseAbortsCleanlyWhenSellerBalanceMovedAway(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 20_000_000)

	// Declared inventory is not an escrow: the seller drains their ledger
	// balance out-of-band after listing.
	if err := f.ledgers.Service.Transfer(context.Background(), f.ledgerID, sellerIdentity, "elsewhere", 100*ledgerentities.AccessUnitSize); err != nil {
		t.Fatalf("draining seller balance: %v", err)
	}

	_, err := f.purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     10,
		PaymentAmount: 10_000_000,
	})
	if !errors.Is(err, ledgererrors.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Payment reversed, reservation released, nothing sold.
	if f.rail.Balance(buyerIdentity) != 20_000_000 {
		t.Fatalf("expected buyer refunded, got %d", f.rail.Balance(buyerIdentity))
	}
	if f.rail.Balance(treasuryAccount) != 0 {
		t.Fatal("expected no treasury credit after aborted purchase")
	}
	reloaded, err := f.store.GetListing(context.Background(), listing.ListingID)
	if err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if reloaded.AvailableUnits != 50 || reloaded.TotalSold != 0 {
		t.Fatalf("expected listing restored, got %+v", reloaded)
	}
}

type finalizeFailRepo struct {
	ports.ListingRepository
	err error
}

func (r finalizeFailRepo) FinalizePurchase(context.Context, string, uint64, ports.PurchaseEvent) error {
	return r.err
}

func TestPurchaseUnwindsFullyWhenFinalizeFails(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 20_000_000)
	sellerBefore := f.balance(t, sellerIdentity)

	boom := errors.New("commit timeout")
	purchase := f.purchase
	purchase.Repo = finalizeFailRepo{ListingRepository: f.store, err: boom}

	_, err := purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     10,
		PaymentAmount: 10_000_000,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected finalize error to surface, got %v", err)
	}

	// Rights handed back, payment reversed, reservation released.
	if got := f.balance(t, buyerIdentity); got != 0 {
		t.Fatalf("expected buyer ledger balance returned, got %d", got)
	}
	if got := f.balance(t, sellerIdentity); got != sellerBefore {
		t.Fatalf("expected seller ledger balance %d, got %d", sellerBefore, got)
	}
	if got := f.rail.Balance(buyerIdentity); got != 20_000_000 {
		t.Fatalf("expected buyer refunded, got %d", got)
	}
	if f.rail.Balance(sellerIdentity) != 0 || f.rail.Balance(treasuryAccount) != 0 {
		t.Fatal("expected no settled legs after aborted finalize")
	}
	reloaded, err := f.store.GetListing(context.Background(), listing.ListingID)
	if err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if reloaded.AvailableUnits != 50 || reloaded.TotalSold != 0 {
		t.Fatalf("expected listing restored, got %+v", reloaded)
	}
	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing outbox: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no outbox event after aborted finalize, got %d", len(pending))
	}
}

// secondIDFailGen serves the payment id, then fails the event id draw.
type secondIDFailGen struct {
	inner ports.IDGenerator
	calls int
}

func (g *secondIDFailGen) NewID(ctx context.Context) (string, error) {
	g.calls++
	if g.calls == 2 {
		return "", errors.New("id source unavailable")
	}
	return g.inner.NewID(ctx)
}

func TestPurchaseFallsBackToPaymentIDWhenEventIDFails(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 20_000_000)

	purchase := f.purchase
	purchase.IDGenerator = &secondIDFailGen{inner: f.store}

	result, err := purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     10,
		PaymentAmount: 10_000_000,
	})
	if err != nil {
		t.Fatalf("purchasing: %v", err)
	}
	if result.Listing.TotalSold != 10 {
		t.Fatalf("expected 10 units sold, got %d", result.Listing.TotalSold)
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing outbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox event despite id fallback, got %d", len(pending))
	}
}

func TestPurchaseRejectsInsufficientBuyerFunds(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 5_000_000)

	_, err := f.purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     10,
		PaymentAmount: 10_000_000,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	reloaded, err := f.store.GetListing(context.Background(), listing.ListingID)
	if err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if reloaded.AvailableUnits != 50 {
		t.Fatalf("expected reservation released, got %d available", reloaded.AvailableUnits)
	}
}

func TestCancelListingIsSellerOnlyAndTerminal(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)

	if err := f.cancel.Execute(context.Background(), "intruder", listing.ListingID); !errors.Is(err, domainerrors.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if err := f.cancel.Execute(context.Background(), sellerIdentity, listing.ListingID); err != nil {
		t.Fatalf("cancelling: %v", err)
	}

	f.rail.Deposit(buyerIdentity, 20_000_000)
	_, err := f.purchase.Execute(context.Background(), PurchaseCommand{
		Buyer:         buyerIdentity,
		ListingID:     listing.ListingID,
		UnitCount:     1,
		PaymentAmount: 1_000_000,
	})
	if !errors.Is(err, domainerrors.ErrListingNotActive) {
		t.Fatalf("expected ErrListingNotActive, got %v", err)
	}

	// Cancellation frees the asset for a fresh listing.
	f.mustList(t, 2_000_000, 25)
}

func TestUpdateListingRepricesAndAddsUnits(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)

	err := f.update.Execute(context.Background(), UpdateListingCommand{
		Caller:          "intruder",
		ListingID:       listing.ListingID,
		NewPricePerUnit: 2_000_000,
	})
	if !errors.Is(err, domainerrors.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}

	err = f.update.Execute(context.Background(), UpdateListingCommand{
		Caller:          sellerIdentity,
		ListingID:       listing.ListingID,
		NewPricePerUnit: 2_000_000,
		AdditionalUnits: 25,
	})
	if err != nil {
		t.Fatalf("updating listing: %v", err)
	}

	reloaded, err := f.store.GetListing(context.Background(), listing.ListingID)
	if err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if reloaded.PricePerUnit != 2_000_000 || reloaded.AvailableUnits != 75 {
		t.Fatalf("unexpected listing after update: %+v", reloaded)
	}
}

func TestSupplyConservedAcrossPurchases(t *testing.T) {
	f := newFixture(t)
	listing := f.mustList(t, 1_000_000, 50)
	f.rail.Deposit(buyerIdentity, 50_000_000)

	for i := 0; i < 3; i++ {
		if _, err := f.purchase.Execute(context.Background(), PurchaseCommand{
			Buyer:         buyerIdentity,
			ListingID:     listing.ListingID,
			UnitCount:     5,
			PaymentAmount: 5_000_000,
		}); err != nil {
			t.Fatalf("purchase %d: %v", i+1, err)
		}
	}

	ledger, err := f.ledgers.Service.GetLedger(context.Background(), f.ledgerID)
	if err != nil {
		t.Fatalf("reloading ledger: %v", err)
	}
	var sum uint64
	for _, balance := range ledger.Balances {
		sum += balance
	}
	if sum != ledger.TotalSupply {
		t.Fatalf("expected balances to sum to supply %d, got %d", ledger.TotalSupply, sum)
	}
	if want := 100 * ledgerentities.AccessUnitSize; ledger.TotalSupply != want {
		t.Fatalf("expected supply %d, got %d", want, ledger.TotalSupply)
	}
}

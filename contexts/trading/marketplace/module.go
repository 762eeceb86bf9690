package marketplace

import (
	"log/slog"

	ledgermodule "inflectiv/contexts/asset-core/access-ledger"
	assetqueries "inflectiv/contexts/asset-core/asset-registry/application/queries"
	httpadapter "inflectiv/contexts/trading/marketplace/adapters/http"
	"inflectiv/contexts/trading/marketplace/adapters/memory"
	"inflectiv/contexts/trading/marketplace/adapters/payments"
	registryadapter "inflectiv/contexts/trading/marketplace/adapters/registry"
	rightsadapter "inflectiv/contexts/trading/marketplace/adapters/rights"
	"inflectiv/contexts/trading/marketplace/application/commands"
	"inflectiv/contexts/trading/marketplace/application/queries"
	"inflectiv/contexts/trading/marketplace/domain/entities"
	"inflectiv/contexts/trading/marketplace/ports"
)

// Module is the marketplace composition surface.
type Module struct {
	Handler httpadapter.Handler
	Outbox  ports.OutboxRepository
	Store   *memory.Store
	Rail    *payments.Rail
}

// Settings carries the marketplace's injected economic configuration.
type Settings struct {
	PlatformFeeBps  uint32
	MinListingPrice uint64
	TreasuryAccount string
	SpenderIdentity string
}

type Dependencies struct {
	Repository  ports.ListingRepository
	Outbox      ports.OutboxRepository
	Assets      ports.AssetDirectory
	Rights      ports.AccessRights
	Payments    ports.PaymentRail
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Settings    Settings
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	feeBps := deps.Settings.PlatformFeeBps
	if feeBps == 0 {
		feeBps = entities.PlatformFeeBps
	}
	return Module{
		Handler: httpadapter.Handler{
			CreateListing: commands.CreateListingUseCase{
				Repo:            deps.Repository,
				Assets:          deps.Assets,
				Clock:           deps.Clock,
				IDGenerator:     deps.IDGenerator,
				MinListingPrice: deps.Settings.MinListingPrice,
				Logger:          deps.Logger,
			},
			UpdateListing: commands.UpdateListingUseCase{
				Repo:            deps.Repository,
				MinListingPrice: deps.Settings.MinListingPrice,
				Logger:          deps.Logger,
			},
			CancelListing: commands.CancelListingUseCase{Repo: deps.Repository, Logger: deps.Logger},
			Purchase: commands.PurchaseUseCase{
				Repo:            deps.Repository,
				Assets:          deps.Assets,
				Rights:          deps.Rights,
				Payments:        deps.Payments,
				Clock:           deps.Clock,
				IDGenerator:     deps.IDGenerator,
				PlatformFeeBps:  feeBps,
				TreasuryAccount: deps.Settings.TreasuryAccount,
				SpenderIdentity: deps.Settings.SpenderIdentity,
				Logger:          deps.Logger,
			},
			GetListing:    queries.GetListingUseCase{Repo: deps.Repository, Logger: deps.Logger},
			ActiveListing: queries.ActiveListingForAssetUseCase{Repo: deps.Repository, Logger: deps.Logger},
			ListListings:  queries.ListListingsUseCase{Repo: deps.Repository, Logger: deps.Logger},
			CalculatePurchase: queries.CalculatePurchaseUseCase{
				Repo:           deps.Repository,
				Assets:         deps.Assets,
				PlatformFeeBps: feeBps,
				Logger:         deps.Logger,
			},
			Logger: deps.Logger,
		},
		Outbox: deps.Outbox,
	}
}

// NewInMemoryModule wires the marketplace against in-process registry and
// ledger modules plus the development payment rail.
func NewInMemoryModule(assets assetqueries.GetAssetUseCase, ledgers ledgermodule.Module, settings Settings, logger *slog.Logger) Module {
	store := memory.NewStore()
	rail := payments.NewRail()
	module := NewModule(Dependencies{
		Repository:  store,
		Outbox:      store,
		Assets:      registryadapter.Directory{Assets: assets},
		Rights:      rightsadapter.LedgerRights{Ledgers: ledgers.Service},
		Payments:    rail,
		Clock:       store,
		IDGenerator: store,
		Settings:    settings,
		Logger:      logger,
	})
	module.Store = store
	module.Rail = rail
	return module
}

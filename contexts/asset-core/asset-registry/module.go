package assetregistry

import (
	"log/slog"

	ledgermodule "inflectiv/contexts/asset-core/access-ledger"
	httpadapter "inflectiv/contexts/asset-core/asset-registry/adapters/http"
	ledgeradapter "inflectiv/contexts/asset-core/asset-registry/adapters/ledger"
	"inflectiv/contexts/asset-core/asset-registry/adapters/memory"
	"inflectiv/contexts/asset-core/asset-registry/application/commands"
	"inflectiv/contexts/asset-core/asset-registry/application/queries"
	"inflectiv/contexts/asset-core/asset-registry/ports"
)

// Module is the asset-registry composition surface.
type Module struct {
	Handler httpadapter.Handler
	Outbox  ports.OutboxRepository
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Outbox      ports.OutboxRepository
	Ledgers     ports.LedgerFactory
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			RegisterAsset: commands.RegisterAssetUseCase{
				Repo:        deps.Repository,
				Ledgers:     deps.Ledgers,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			MintUnits: commands.MintUnitsUseCase{
				Repo:    deps.Repository,
				Ledgers: deps.Ledgers,
				Logger:  deps.Logger,
			},
			SetRoyalty: commands.SetRoyaltyUseCase{Repo: deps.Repository, Logger: deps.Logger},
			SetActive:  commands.SetActiveUseCase{Repo: deps.Repository, Logger: deps.Logger},
			TransferOwnership: commands.TransferOwnershipUseCase{
				Repo:    deps.Repository,
				Ledgers: deps.Ledgers,
				Logger:  deps.Logger,
			},
			GetAsset:    queries.GetAssetUseCase{Repo: deps.Repository, Logger: deps.Logger},
			ListAssets:  queries.ListAssetsByOwnerUseCase{Repo: deps.Repository, Logger: deps.Logger},
			RoyaltyInfo: queries.RoyaltyInfoUseCase{Repo: deps.Repository, Logger: deps.Logger},
			CheckAccess: queries.CheckAccessUseCase{
				Repo:    deps.Repository,
				Ledgers: deps.Ledgers,
				Logger:  deps.Logger,
			},
			Logger: deps.Logger,
		},
		Outbox: deps.Outbox,
	}
}

// NewInMemoryModule wires the registry against an in-process access-ledger
// module; provisioner is the identity the registry deploys ledgers under.
func NewInMemoryModule(ledgers ledgermodule.Module, provisioner string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Outbox:     store,
		Ledgers: ledgeradapter.Factory{
			Ledgers:     ledgers.Service,
			Provisioner: provisioner,
		},
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

package deployerregistry

import (
	"log/slog"

	httpadapter "inflectiv/contexts/asset-core/deployer-registry/adapters/http"
	"inflectiv/contexts/asset-core/deployer-registry/adapters/memory"
	"inflectiv/contexts/asset-core/deployer-registry/application"
	"inflectiv/contexts/asset-core/deployer-registry/ports"
)

// Module is the deployer-registry composition surface. Runtime wiring should
// consume Handler; Service is exposed for in-process consumers (the ledger
// factory) and Store for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	AdminOwner string
	Repository ports.Repository
	Logger     *slog.Logger
}

// NewModule wires the authorization gate against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		AdminOwner: deps.AdminOwner,
		Repo:       deps.Repository,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(adminOwner string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		AdminOwner: adminOwner,
		Repository: store,
		Logger:     logger,
	})
	module.Store = store
	return module
}

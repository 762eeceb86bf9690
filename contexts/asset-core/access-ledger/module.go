package accessledger

import (
	"log/slog"

	httpadapter "inflectiv/contexts/asset-core/access-ledger/adapters/http"
	"inflectiv/contexts/asset-core/access-ledger/adapters/memory"
	"inflectiv/contexts/asset-core/access-ledger/application"
	"inflectiv/contexts/asset-core/access-ledger/ports"
)

// Module is the access-ledger composition surface. Service doubles as the
// ledger factory consumed in-process by the asset registry.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Gate        ports.DeployerGate
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Gate:        deps.Gate,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(gate ports.DeployerGate, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Gate:        gate,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

package earningsservice

import (
	"log/slog"

	httpadapter "inflectiv/contexts/trading/earnings-service/adapters/http"
	"inflectiv/contexts/trading/earnings-service/adapters/memory"
	"inflectiv/contexts/trading/earnings-service/application"
	"inflectiv/contexts/trading/earnings-service/application/workers"
	"inflectiv/contexts/trading/earnings-service/ports"
)

// Module is the earnings-service composition surface.
type Module struct {
	Handler  httpadapter.Handler
	Service  application.Service
	Consumer workers.PurchaseConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Repository    ports.TransactionRepository
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{Repo: deps.Repository, Logger: deps.Logger}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
		Consumer: workers.PurchaseConsumer{
			Subscriber:    deps.Subscriber,
			Service:       service,
			ConsumerGroup: deps.ConsumerGroup,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// persistence; the subscriber may be nil when only the HTTP side is needed.
func NewInMemoryModule(subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Subscriber: subscriber,
		Logger:     logger,
	})
	module.Store = store
	return module
}

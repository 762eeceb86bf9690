package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accessledger "inflectiv/contexts/asset-core/access-ledger"
	ledgerpostgres "inflectiv/contexts/asset-core/access-ledger/adapters/postgres"
	assetregistry "inflectiv/contexts/asset-core/asset-registry"
	ledgeradapter "inflectiv/contexts/asset-core/asset-registry/adapters/ledger"
	registrypostgres "inflectiv/contexts/asset-core/asset-registry/adapters/postgres"
	registryworkers "inflectiv/contexts/asset-core/asset-registry/application/workers"
	deployerregistry "inflectiv/contexts/asset-core/deployer-registry"
	deployerpostgres "inflectiv/contexts/asset-core/deployer-registry/adapters/postgres"
	earningsservice "inflectiv/contexts/trading/earnings-service"
	earningspostgres "inflectiv/contexts/trading/earnings-service/adapters/postgres"
	earningsworkers "inflectiv/contexts/trading/earnings-service/application/workers"
	marketplace "inflectiv/contexts/trading/marketplace"
	"inflectiv/contexts/trading/marketplace/adapters/payments"
	marketpostgres "inflectiv/contexts/trading/marketplace/adapters/postgres"
	registryadapter "inflectiv/contexts/trading/marketplace/adapters/registry"
	rightsadapter "inflectiv/contexts/trading/marketplace/adapters/rights"
	marketworkers "inflectiv/contexts/trading/marketplace/application/workers"
	"inflectiv/internal/platform/config"
	"inflectiv/internal/platform/db"
	"inflectiv/internal/platform/httpserver"
	"inflectiv/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres        *db.Postgres
	registryRelay   registryworkers.OutboxRelay
	marketRelay     marketworkers.OutboxRelay
	purchases       earningsworkers.PurchaseConsumer
	relayEnabled    bool
	consumerEnabled bool
	pollInterval    time.Duration
	logger          *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	deployers := deployerregistry.NewModule(deployerregistry.Dependencies{
		AdminOwner: cfg.AdminOwner,
		Repository: deployerpostgres.NewRepository(pg.DB, logger),
		Logger:     logger,
	})
	// The registry provisions ledgers under a service identity; that identity
	// must already be an authorized deployer when the first registration lands.
	if strings.TrimSpace(cfg.RegistryProvisioner) != "" {
		if err := deployers.Service.SetAuthorization(context.Background(), cfg.AdminOwner, cfg.RegistryProvisioner, true); err != nil {
			return nil, err
		}
	}

	ledgers := accessledger.NewModule(accessledger.Dependencies{
		Repository:  ledgerpostgres.NewRepository(pg.DB, logger),
		Gate:        deployers.Service,
		Clock:       ledgerpostgres.SystemClock{},
		IDGenerator: ledgerpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	assets := assetregistry.NewModule(assetregistry.Dependencies{
		Repository: registryRepo,
		Outbox:     registryRepo,
		Ledgers: ledgeradapter.Factory{
			Ledgers:     ledgers.Service,
			Provisioner: cfg.RegistryProvisioner,
		},
		Clock:       registrypostgres.SystemClock{},
		IDGenerator: registrypostgres.UUIDGenerator{},
		Logger:      logger,
	})

	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	market := marketplace.NewModule(marketplace.Dependencies{
		Repository:  marketRepo,
		Outbox:      marketRepo,
		Assets:      registryadapter.Directory{Assets: assets.Handler.GetAsset},
		Rights:      rightsadapter.LedgerRights{Ledgers: ledgers.Service},
		Payments:    payments.NewRail(),
		Clock:       marketpostgres.SystemClock{},
		IDGenerator: marketpostgres.UUIDGenerator{},
		Settings: marketplace.Settings{
			PlatformFeeBps:  cfg.PlatformFeeBps,
			MinListingPrice: cfg.MinListingPrice,
			TreasuryAccount: cfg.TreasuryAccount,
			SpenderIdentity: cfg.MarketplaceSpender,
		},
		Logger: logger,
	})

	earnings := earningsservice.NewModule(earningsservice.Dependencies{
		Repository: earningspostgres.NewRepository(pg.DB, logger),
		Logger:     logger,
	})

	server := httpserver.New(deployers, ledgers, assets, market, earnings, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	earnings := earningsservice.NewModule(earningsservice.Dependencies{
		Repository: earningspostgres.NewRepository(pg.DB, logger),
		Subscriber: kafka,
		Logger:     logger,
	})

	return &WorkerApp{
		postgres: pg,
		registryRelay: registryworkers.OutboxRelay{
			Outbox:    registryRepo,
			Publisher: kafka,
			Clock:     registrypostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		marketRelay: marketworkers.OutboxRelay{
			Outbox:    marketRepo,
			Publisher: kafka,
			Clock:     marketpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		purchases:       earnings.Consumer,
		relayEnabled:    cfg.EnableOutboxRelay,
		consumerEnabled: cfg.EnablePurchaseConsumer,
		pollInterval:    2 * time.Second,
		logger:          logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.consumerEnabled {
		if err := w.purchases.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.relayEnabled,
		"consumer_enabled", w.consumerEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.registryRelay.RunOnce(ctx); err != nil {
				return err
			}
			if err := w.marketRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	accessledger "inflectiv/contexts/asset-core/access-ledger"
	assetregistry "inflectiv/contexts/asset-core/asset-registry"
	deployerregistry "inflectiv/contexts/asset-core/deployer-registry"
	earningsservice "inflectiv/contexts/trading/earnings-service"
	marketplace "inflectiv/contexts/trading/marketplace"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "inflectiv/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	deployers deployerregistry.Module
	ledgers   accessledger.Module
	assets    assetregistry.Module
	market    marketplace.Module
	earnings  earningsservice.Module
}

func New(
	deployers deployerregistry.Module,
	ledgers accessledger.Module,
	assets assetregistry.Module,
	market marketplace.Module,
	earnings earningsservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		deployers: deployers,
		ledgers:   ledgers,
		assets:    assets,
		market:    market,
		earnings:  earnings,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerDeployerRoutes()
	s.registerLedgerRoutes()
	s.registerAssetRoutes()
	s.registerMarketplaceRoutes()
	s.registerEarningsRoutes()
}

// callerIdentity resolves the authenticated wallet identity supplied by the
// edge. An empty return means the caller is anonymous.
func callerIdentity(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Wallet-Address"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

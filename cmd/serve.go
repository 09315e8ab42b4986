package cmd

import (
	"net/http"
	"time"

	"github.com/huangsam/watchlist/internal/api"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/iocache"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/supervisor"
	"github.com/huangsam/watchlist/internal/supervisor/services"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API under the supervisor tree.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the watchlist HTTP API",
	Long: `Start the HTTP API together with background maintenance services.

Routes:
  POST   /my-list              add content (body: {"contentId", "contentType"})
  DELETE /my-list/{contentId}  remove content
  GET    /my-list?page=&size=  fetch one page, newest first
  GET    /health               store and cache health
  GET    /metrics              Prometheus metrics

Every /my-list request must carry the "user-id" header.

Background services:
  health-monitor - logs a health report every --health-interval
  cache-janitor  - purges expired pages every --janitor-interval (sqlite, mysql, postgresql, bolt, memory)

Examples:
  # Serve on the default port with an in-memory cache
  watchlist serve

  # Serve with Redis and PostgreSQL
  WATCHLIST_STORE_BACKEND=postgresql WATCHLIST_STORE_DB_CONNECT="host=... dbname=..." \
    watchlist serve --cache-backend redis --redis-addr localhost:6379`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer Shutdown()

		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(app.service, api.OptionsFromConfig(cfg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		treeCfg := supervisor.DefaultTreeConfig()
		tree := supervisor.NewTree(treeCfg)
		tree.AddAPIService(services.NewHTTPServerService(server, treeCfg.ShutdownTimeout))
		tree.AddMaintenanceService(services.NewHealthMonitor(app.service, cfg.HealthInterval))
		if expiring, ok := iocache.Manager.Cache().(contract.ExpiringCache); ok {
			tree.AddMaintenanceService(services.NewCacheJanitor(expiring, cfg.JanitorInterval))
		}

		logging.Info().
			Str("addr", cfg.HTTPAddr).
			Str("store_backend", string(cfg.StoreBackend)).
			Str("cache_backend", string(cfg.CacheBackend)).
			Str("version", version).
			Msg("Starting watchlist server")

		err := tree.Serve(rootCtx)
		if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
			logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
		}
		if rootCtx.Err() != nil {
			logging.Info().Msg("Watchlist server stopped")
			return nil
		}
		return err
	},
}

// Package cmd defines the command-line interface for watchlist.
package cmd

import (
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the list subcommands to the parent list command
	listCmd.AddCommand(listAddCmd)
	listCmd.AddCommand(listRemoveCmd)
	listCmd.AddCommand(listGetCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheDropCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "List store backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Store connection string (SQLite file path, or DSN for mysql/postgresql)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.MemoryCache), "Page cache backend: redis or sqlite or mysql or postgresql or badger or bolt or memory or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Cache DSN for SQL backends, or directory/file path for badger and bolt")
	rootCmd.PersistentFlags().String("redis-addr", contract.DefaultRedisAddr, "Redis address for the redis cache backend")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password (prefer the WATCHLIST_REDIS_PASSWORD env var)")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis logical database")
	rootCmd.PersistentFlags().Int("breaker-failures", contract.DefaultBreakerFailures, "Consecutive cache failures before the circuit opens")
	rootCmd.PersistentFlags().String("breaker-timeout", contract.DefaultBreakerTimeout.String(), "How long the cache circuit stays open")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace or debug or info or warn or error or disabled")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format: json or console")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User id that owns the list")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("http-addr", contract.DefaultHTTPAddr, "HTTP listen address")
	serveCmd.Flags().String("cors-origins", "*", "Comma-separated list of allowed CORS origins")
	serveCmd.Flags().Int("rate-limit", contract.DefaultRateLimit, "Requests allowed per rate window per user or client IP")
	serveCmd.Flags().String("rate-window", contract.DefaultRateWindow.String(), "Rate limit window")
	serveCmd.Flags().String("health-interval", contract.DefaultHealthInterval.String(), "Interval between background health checks")
	serveCmd.Flags().String("janitor-interval", contract.DefaultJanitorInterval.String(), "Interval between expired cache page purges")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of list subcommands to Viper
	listAddCmd.Flags().StringP("type", "t", "", "Content type: movie or tvshow")
	if err := viper.BindPFlags(listAddCmd.Flags()); err != nil {
		contract.LogFatal("Error binding list add flags", err)
	}
	listGetCmd.Flags().Int("page", contract.DefaultPage, "1-based page number")
	listGetCmd.Flags().Int("size", contract.DefaultPageSize, "Page size (max 100)")
	if err := viper.BindPFlags(listGetCmd.Flags()); err != nil {
		contract.LogFatal("Error binding list get flags", err)
	}

	// Bind all flags of migrateCmd to Viper
	migrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(migrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}

	// Bind all flags of seedCmd to Viper
	seedCmd.Flags().String("seed-file", "", "JSON catalog file (defaults to the bundled catalog)")
	if err := viper.BindPFlags(seedCmd.Flags()); err != nil {
		contract.LogFatal("Error binding seed flags", err)
	}
}

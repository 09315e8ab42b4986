package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/watchlist/core"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/iocache"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/store"
	"github.com/huangsam/watchlist/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations. main replaces it with a signal-aware context.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// app holds the components opened by sharedSetup.
var app struct {
	listStore *store.ListStoreImpl
	catalog   *store.CatalogStoreImpl
	service   *core.Service
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "watchlist",
	Short:              "Keep a personal list of movies and TV shows.",
	Long:               `Watchlist stores per-user lists of catalog content behind a read-through page cache.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".watchlist") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("WATCHLIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-backend", schema.MemoryCache)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "json")
	viper.SetDefault("page", contract.DefaultPage)
	viper.SetDefault("size", contract.DefaultPageSize)
}

// loadConfig merges defaults, file, env and flags, then validates into cfg.
func loadConfig() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return nil
}

// sharedSetup opens the store and cache and builds the list service.
// A cache backend that fails to open is retried in the background while requests bypass it.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	listStore, catalog, err := store.Open(ctx, cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize list store: %w", err)
	}

	if err := iocache.InitCaching(ctx, iocache.OptionsFromConfig(cfg)); err != nil {
		logging.Warn().Err(err).Str("backend", string(cfg.CacheBackend)).Msg("Page cache unavailable, serving from the store until it reconnects")
	}

	app.listStore = listStore
	app.catalog = catalog
	app.service = core.NewService(listStore, catalog, iocache.Manager.Cache())
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command with ctx as the root context.
func Execute(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

// Shutdown releases everything sharedSetup opened.
func Shutdown() {
	iocache.CloseCaching()
	if app.listStore != nil {
		_ = app.listStore.Close()
	}
}

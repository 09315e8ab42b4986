package cmd

import (
	"github.com/huangsam/watchlist/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// migrateCmd runs schema migrations on the list store.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations for the list store and catalog",
	Long: `Apply or roll back the embedded schema migrations.

By default, migrates to the latest version. Use --target-version to migrate
to a specific version or roll back (0 rolls back everything).

Every command that opens the store already migrates to the latest version,
so this is mostly useful for rollbacks and for inspecting the current version.

Examples:
  # Migrate to latest version
  watchlist migrate

  # Roll back all migrations
  watchlist migrate --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := store.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"), cmd.OutOrStdout()); err != nil {
			return err
		}
		v, dirty, err := store.SchemaVersion(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			return err
		}
		cmd.Printf("Current schema version: %d (dirty: %t)\n", v, dirty)
		return nil
	},
}

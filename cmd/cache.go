package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/iocache"
	"github.com/huangsam/watchlist/schema"
	"github.com/spf13/cobra"
)

// cacheSetup loads configuration and connects only the page cache.
// This is used by commands that need cache access without opening the list store.
func cacheSetup() error {
	if err := loadConfig(); err != nil {
		return err
	}
	if err := iocache.InitCaching(rootCtx, iocache.OptionsFromConfig(cfg)); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup. The list store is never opened or migrated.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the list page cache",
	Long: `Manage the read-through cache that holds rendered list pages.

Pages are cached per (user, page, size) for 5 minutes and dropped for a user
whenever that user's list changes.

Supported backends: Redis, SQLite, MySQL, PostgreSQL, Badger, bbolt, memory, none

Subcommands:
  status     - Show cache statistics and connection info
  clear      - Remove every cached page from a live backend
  invalidate - Remove every cached page for one user
  drop       - Delete the backing file, directory or table

Examples:
  # Check Redis cache status
  watchlist cache status --cache-backend redis

  # Drop stale pages for one user
  watchlist cache invalidate --user alice --cache-backend redis`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display cache statistics and connection details",
	PreRunE: cacheSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer Shutdown()
		status, err := iocache.Manager.Cache().GetStatus(rootCtx)
		if err != nil {
			return fmt.Errorf("failed to get cache status: %w", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
		return nil
	},
}

// cacheClearCmd clears every cached page.
var cacheClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all cached list pages",
	PreRunE: cacheSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		defer Shutdown()
		if err := iocache.Manager.Cache().Clear(rootCtx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		cmd.Println("Cache cleared successfully.")
		return nil
	},
}

// cacheInvalidateCmd removes one user's cached pages.
var cacheInvalidateCmd = &cobra.Command{
	Use:     "invalidate",
	Short:   "Remove all cached pages for one user",
	PreRunE: cacheSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		defer Shutdown()
		userID, err := contract.ValidateUserID(cfg.UserID)
		if err != nil {
			return err
		}
		n, err := iocache.Manager.Cache().InvalidateUser(rootCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to invalidate cache for %s: %w", userID, err)
		}
		cmd.Printf("Removed %d cached pages for %s.\n", n, userID)
		return nil
	},
}

// cacheDropCmd removes the cache storage without connecting to it.
var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the cache file, directory or table",
	Long: `Delete the backing storage of the page cache.

For SQLite and bbolt: Deletes the database file
For Badger: Deletes the data directory
For MySQL/PostgreSQL: Drops the cache table
For Redis, memory and none: Nothing to drop, use 'cache clear'`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch cfg.CacheBackend {
		case schema.RedisCache, schema.MemoryCache, schema.NoneCache:
			return fmt.Errorf("nothing to drop for the %s cache backend", cfg.CacheBackend)
		}
		if err := iocache.DropCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		cmd.Println("Cache storage dropped.")
		return nil
	},
}

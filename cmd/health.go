package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/watchlist/internal/iocache"
	"github.com/huangsam/watchlist/internal/outwriter"
	"github.com/huangsam/watchlist/schema"
	"github.com/spf13/cobra"
)

// healthCmd prints a one-shot health report.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check store and cache health",
	Long: `Ping the list store and the page cache and report the overall state.

healthy   - store and cache both respond
degraded  - the store responds but the cache does not
unhealthy - the store does not respond

The command exits non-zero when the state is unhealthy. Text output also
includes store and cache statistics.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer Shutdown()

		report := app.service.Health(rootCtx)
		if err := outwriter.NewOutWriter().WriteHealth(report, cfg); err != nil {
			return err
		}
		if cfg.Output == schema.TextOut && cfg.OutputFile == "" {
			if status, err := app.listStore.GetStatus(rootCtx); err == nil {
				fmt.Println()
				iocache.PrintStoreStatus(os.Stdout, status)
			}
			if status, err := iocache.Manager.Cache().GetStatus(rootCtx); err == nil {
				fmt.Println()
				iocache.PrintCacheStatus(os.Stdout, status)
			}
		}
		if report.Status == schema.Unhealthy {
			return fmt.Errorf("watchlist is %s", report.Status)
		}
		return nil
	},
}

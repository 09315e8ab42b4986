package cmd

import (
	"fmt"

	"github.com/huangsam/watchlist/internal/outwriter"
	"github.com/spf13/cobra"
)

// listCmd groups the list operations.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Add, remove and fetch entries on a user's list",
	Long: `Run the list operations directly against the configured store and cache.

Subcommands:
  add    - add a movie or TV show from the catalog
  remove - remove content from the list
  get    - print one page of the list, newest first

Examples:
  watchlist list add the-matrix --type movie --user alice
  watchlist list get --user alice --page 1 --size 20 --output json
  watchlist list remove the-matrix --user alice`,
}

// listAddCmd adds content to a list.
var listAddCmd = &cobra.Command{
	Use:     "add <contentId>",
	Short:   "Add catalog content to a user's list",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		defer Shutdown()
		entry, err := app.service.AddToList(rootCtx, cfg.UserID, args[0], cfg.ContentType)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteEntry(entry, cfg)
	},
}

// listRemoveCmd removes content from a list.
var listRemoveCmd = &cobra.Command{
	Use:     "remove <contentId>",
	Short:   "Remove content from a user's list",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer Shutdown()
		result, err := app.service.RemoveFromList(rootCtx, cfg.UserID, args[0])
		if err != nil {
			return err
		}
		cmd.Println(result.Message)
		return nil
	},
}

// listGetCmd prints one page of a list.
var listGetCmd = &cobra.Command{
	Use:     "get",
	Short:   "Print one page of a user's list",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer Shutdown()
		page, err := app.service.GetMyList(rootCtx, cfg.UserID, cfg.Page, cfg.Size)
		if err != nil {
			return err
		}
		if err := outwriter.NewOutWriter().WriteListPage(page, cfg); err != nil {
			return fmt.Errorf("failed to write list: %w", err)
		}
		return nil
	},
}

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/outwriter"
	"github.com/huangsam/watchlist/internal/parquet"
	"github.com/huangsam/watchlist/schema"
	"github.com/spf13/cobra"
)

// exportCmd writes a user's entire list.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's whole list to Parquet, CSV or JSON",
	Long: `Walk every page of a user's list and write it out in one file.

The format follows --output. A file ending in .parquet selects Parquet when
--output is left at its default.

Examples:
  watchlist export --user alice --output-file alice.parquet
  watchlist export --user alice --output csv --output-file alice.csv

  # Query the export with DuckDB
  duckdb -c "SELECT content_type, count(*) FROM read_parquet('alice.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer Shutdown()

		items, err := collectList(cfg.UserID)
		if err != nil {
			return err
		}

		format := cfg.Output
		if format == schema.TextOut && strings.HasSuffix(strings.ToLower(cfg.OutputFile), ".parquet") {
			format = schema.ParquetOut
		}

		if format == schema.ParquetOut {
			if cfg.OutputFile == "" {
				return errors.New("--output-file is required for parquet export")
			}
			if err := parquet.WriteListItemsParquet(parquet.RowsFromItems(cfg.UserID, items), cfg.OutputFile); err != nil {
				return err
			}
			fmt.Printf("Exported %d entries to %s\n", len(items), cfg.OutputFile)
			return nil
		}

		page := &schema.ListPage{
			Items:      items,
			Pagination: schema.Pagination{Page: 1, Limit: len(items), Total: int64(len(items))},
		}
		exportCfg := *cfg
		exportCfg.Output = format
		return outwriter.NewOutWriter().WriteListPage(page, &exportCfg)
	},
}

// collectList reads every page of the list at the maximum page size.
func collectList(userID string) ([]schema.ListItem, error) {
	var items []schema.ListItem
	for page := 1; ; page++ {
		result, err := app.service.GetMyList(rootCtx, userID, page, contract.MaxPageSize)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.Items) < contract.MaxPageSize || int64(len(items)) >= result.Pagination.Total {
			return items, nil
		}
	}
}

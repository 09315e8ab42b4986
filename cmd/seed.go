package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/watchlist/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// seedCmd loads catalog records into the store.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load movies and TV shows into the catalog",
	Long: `Write catalog records so list entries have content to reference.

Without --seed-file, the bundled sample catalog of movies and TV shows is used.
Records with the same id are replaced; other catalog records are kept.

Seed file format:
  {"movies": [{"id": "...", "title": "...", ...}], "tvShows": [{"id": "...", "episodes": [...]}]}

Examples:
  watchlist seed
  watchlist seed --seed-file catalog.json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		defer Shutdown()

		seed, err := loadSeed(viper.GetString("seed-file"))
		if err != nil {
			return err
		}
		n, err := app.catalog.Seed(rootCtx, seed)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		cmd.Printf("Seeded %d catalog records (%d movies, %d TV shows).\n", n, len(seed.Movies), len(seed.TVShows))
		return nil
	},
}

func loadSeed(path string) (store.CatalogSeed, error) {
	if path == "" {
		return store.DefaultCatalogSeed()
	}
	file, err := os.Open(path)
	if err != nil {
		return store.CatalogSeed{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return store.ReadCatalogSeed(file)
}

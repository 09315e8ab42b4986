// Package main provides a performance benchmarking tool for the watchlist page cache.
// For each cache backend it seeds a temporary SQLite store, fills one user's list,
// then times GetMyList right after invalidation (cold) and on repeated reads (warm),
// generating CSV output for performance analysis and documentation.
//
// Usage: go run ./benchmark [entries]
//
//	entries: number of list entries to create (default 500)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/huangsam/watchlist/core"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/iocache"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/store"
	"github.com/huangsam/watchlist/schema"
)

// BenchmarkResult holds the result of one backend run (average cold read and average warm read).
type BenchmarkResult struct {
	Backend  string
	ColdTime string
	WarmTime string
	Speedup  string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Entries  int
	PageSize int
	Rounds   int
	WarmRuns int
	Backends []schema.CacheBackend
}

const benchUser = "bench-user"

func main() {
	config := BenchmarkConfig{
		Entries:  500,
		PageSize: contract.DefaultPageSize,
		Rounds:   5,
		WarmRuns: 20,
		Backends: []schema.CacheBackend{
			schema.NoneCache, schema.MemoryCache, schema.SQLiteCache, schema.BoltCache, schema.BadgerCache,
		},
	}
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [entries]\n", os.Args[0])
			os.Exit(1)
		}
		config.Entries = n
	}
	logging.Init(logging.Config{Level: "error"})

	workDir, err := os.MkdirTemp("", "watchlist-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work directory: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	results, err := runBenchmarks(context.Background(), config, workDir)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks prepares one store and measures every configured backend against it.
func runBenchmarks(ctx context.Context, config BenchmarkConfig, workDir string) ([]BenchmarkResult, error) {
	fmt.Printf("Starting benchmark: %d entries, page size %d, %d rounds, %d warm reads per round\n",
		config.Entries, config.PageSize, config.Rounds, config.WarmRuns)

	listStore, catalog, err := store.Open(ctx, schema.SQLiteBackend, filepath.Join(workDir, "store.db"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = listStore.Close() }()

	if err := fillList(ctx, config, listStore, catalog); err != nil {
		return nil, err
	}

	var results []BenchmarkResult
	for _, backend := range config.Backends {
		fmt.Printf("Benchmarking %s\n", backend)
		result, err := runBackend(ctx, config, backend, workDir, listStore, catalog)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", backend, err)
		}
		fmt.Printf("  Cold average: %s, Warm average: %s, Speedup: %s\n", result.ColdTime, result.WarmTime, result.Speedup)
		results = append(results, result)
	}
	return results, nil
}

// fillList seeds the bundled catalog and adds entries cycling through it.
func fillList(ctx context.Context, config BenchmarkConfig, listStore contract.ListStore, catalog *store.CatalogStoreImpl) error {
	seed, err := store.DefaultCatalogSeed()
	if err != nil {
		return err
	}
	if _, err := catalog.Seed(ctx, seed); err != nil {
		return err
	}

	type ref struct {
		id   string
		kind schema.ContentType
	}
	var records []ref
	for _, m := range seed.Movies {
		records = append(records, ref{m.ID, schema.MovieContent})
	}
	for _, s := range seed.TVShows {
		records = append(records, ref{s.ID, schema.TVShowContent})
	}
	start := time.Now().Add(-time.Duration(config.Entries) * time.Second)
	for i := range config.Entries {
		record := records[i%len(records)]
		entry := schema.ListEntry{
			ID:          fmt.Sprintf("bench-%06d", i),
			UserID:      benchUser,
			ContentID:   record.id,
			ContentType: record.kind,
			CreatedAt:   start.Add(time.Duration(i) * time.Second).UTC().Truncate(time.Microsecond),
		}
		// Ids past the catalog size do not resolve, so those items carry null content.
		if i >= len(records) {
			entry.ContentID = fmt.Sprintf("%s-%d", record.id, i)
		}
		if err := listStore.Insert(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// runBackend times cold and warm reads of the first page for one backend.
func runBackend(ctx context.Context, config BenchmarkConfig, backend schema.CacheBackend, workDir string, listStore contract.ListStore, catalog contract.CatalogStore) (BenchmarkResult, error) {
	opts := iocache.Options{Backend: backend}
	switch backend {
	case schema.SQLiteCache:
		opts.ConnStr = filepath.Join(workDir, "cache.db")
	case schema.BoltCache:
		opts.ConnStr = filepath.Join(workDir, "cache.bolt")
	case schema.BadgerCache:
		opts.ConnStr = filepath.Join(workDir, "cache-badger")
	}
	cache, err := iocache.NewPageCache(ctx, opts)
	if err != nil {
		return BenchmarkResult{}, err
	}
	defer func() { _ = cache.Close() }()

	svc := core.NewService(listStore, catalog, cache)

	var coldSum, warmSum time.Duration
	warmCount := 0
	for range config.Rounds {
		if _, err := cache.InvalidateUser(ctx, benchUser); err != nil {
			return BenchmarkResult{}, err
		}
		start := time.Now()
		if _, err := svc.GetMyList(ctx, benchUser, 1, config.PageSize); err != nil {
			return BenchmarkResult{}, err
		}
		coldSum += time.Since(start)

		for range config.WarmRuns {
			start = time.Now()
			if _, err := svc.GetMyList(ctx, benchUser, 1, config.PageSize); err != nil {
				return BenchmarkResult{}, err
			}
			warmSum += time.Since(start)
			warmCount++
		}
	}

	cold := coldSum / time.Duration(config.Rounds)
	warm := warmSum / time.Duration(warmCount)
	speedup := "n/a"
	if warm > 0 {
		speedup = fmt.Sprintf("%.1fx", float64(cold)/float64(warm))
	}
	return BenchmarkResult{
		Backend:  string(backend),
		ColdTime: cold.String(),
		WarmTime: warm.String(),
		Speedup:  speedup,
	}, nil
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("watchlist_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"backend", "cold_avg", "warm_avg", "speedup"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Backend, result.ColdTime, result.WarmTime, result.Speedup}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-10s: Cold: %s, Warm: %s, Speedup: %s\n", result.Backend, result.ColdTime, result.WarmTime, result.Speedup)
	}
}

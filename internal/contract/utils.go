package contract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/huangsam/watchlist/schema"
)

// Color variables for console output.
var (
	MovieColor  = color.New(color.FgCyan, color.Bold) // MovieColor labels movie rows.
	TVShowColor = color.New(color.FgMagenta)          // TVShowColor labels TV show rows.
	OrphanColor = color.New(color.FgYellow)           // OrphanColor flags entries whose content no longer resolves.
)

// GetColorLabel returns a colored content type label for console output (table).
func GetColorLabel(kind schema.ContentType) string {
	switch kind {
	case schema.MovieContent:
		return MovieColor.Sprint(kind.Label())
	case schema.TVShowContent:
		return TVShowColor.Sprint(kind.Label())
	default:
		return string(kind)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the list store.
func GetStoreDBFilePath() string {
	return homeFile(".watchlist.db")
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the page cache.
func GetCacheDBFilePath() string {
	return homeFile(".watchlist_cache.db")
}

// GetBoltFilePath returns the default bbolt cache file.
func GetBoltFilePath() string {
	return homeFile(".watchlist_cache.bolt")
}

// GetBadgerDirPath returns the default badger cache directory.
func GetBadgerDirPath() string {
	return homeFile(".watchlist_cache_badger")
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

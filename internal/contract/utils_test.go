package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		kind  schema.ContentType
		label string
	}{
		{"movie", schema.MovieContent, "Movie"},
		{"tv show", schema.TVShowContent, "TV Show"},
		{"unknown", schema.ContentType("book"), "book"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GetColorLabel(tt.kind), tt.label)
		})
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"short enough", "Alien", 10, "Alien"},
		{"exact width", "Alien", 5, "Alien"},
		{"truncated", "The Good, the Bad and the Ugly", 10, "The Goo..."},
		{"tiny width left alone", "Heat", 3, "Heat"},
		{"multibyte", "Amélie Poulain", 6, "Amé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.input, tt.maxWidth))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.json")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDefaultFilePaths(t *testing.T) {
	assert.NotEqual(t, GetStoreDBFilePath(), GetCacheDBFilePath())
	assert.Contains(t, GetBoltFilePath(), ".watchlist_cache.bolt")
	assert.Contains(t, GetBadgerDirPath(), ".watchlist_cache_badger")
}

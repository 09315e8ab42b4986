// Package parquet exports watchlist entries to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/watchlist/schema"
	"github.com/parquet-go/parquet-go"
)

// ListItemRow is one list entry flattened with its catalog content.
type ListItemRow struct {
	// EntryID is the list entry identifier
	EntryID string `parquet:"entry_id,snappy"`

	UserID      string `parquet:"user_id,snappy,dict"`
	ContentID   string `parquet:"content_id,snappy"`
	ContentType string `parquet:"content_type,snappy,dict"`

	// AddedAt is when the entry was created (TIMESTAMP with nanosecond precision)
	AddedAt time.Time `parquet:"added_at,snappy"`

	// Title is null when the content no longer resolves
	Title *string `parquet:"title,optional,snappy"`

	// Genres is a comma-separated list (nullable)
	Genres *string `parquet:"genres,optional,snappy"`

	ReleaseDate *time.Time `parquet:"release_date,optional,snappy"`
	Director    *string    `parquet:"director,optional,snappy"`

	// EpisodeCount is zero for movies
	EpisodeCount int32 `parquet:"episode_count,snappy"`
}

// RowsFromItems flattens resolved list items for the given user.
func RowsFromItems(userID string, items []schema.ListItem) []ListItemRow {
	rows := make([]ListItemRow, 0, len(items))
	for _, item := range items {
		row := ListItemRow{
			EntryID:     item.ID,
			UserID:      userID,
			ContentID:   item.ContentID,
			ContentType: string(item.ContentType),
			AddedAt:     item.AddedAt,
		}
		if c := item.Content; c != nil {
			row.Title = optional(c.Title)
			row.Genres = optional(strings.Join(c.Genres, ","))
			row.ReleaseDate = c.ReleaseDate
			row.Director = optional(c.Director)
			row.EpisodeCount = int32(len(c.Episodes))
		}
		rows = append(rows, row)
	}
	return rows
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteListItems writes rows to w as a single Parquet file.
func WriteListItems(w io.Writer, rows []ListItemRow) error {
	writer := parquet.NewGenericWriter[ListItemRow](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteListItemsParquet writes rows to a Parquet file at outputPath.
func WriteListItemsParquet(rows []ListItemRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteListItems(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteListPage outputs a list page, dispatching based on the output format configured.
func WriteListPage(page *schema.ListPage, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, page)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeListCSV(w, page)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeListTable(w, page, GetMaxTableTitleWidth(cfg))
		}, "Wrote table")
	}
	return nil
}

// writeListTable generates and writes the human-readable table.
func writeListTable(w io.Writer, page *schema.ListPage, titleWidth int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Type", "Content ID", "Title", "Added"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	offset := contract.Offset(page.Pagination.Page, page.Pagination.Limit)
	data := make([][]string, 0, len(page.Items))
	for i, item := range page.Items {
		data = append(data, []string{
			strconv.Itoa(offset + i + 1),
			contract.GetColorLabel(item.ContentType),
			item.ContentID,
			contract.TruncateText(displayTitle(item), titleWidth),
			item.AddedAt.Local().Format(DateTimeFormat),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Page %d (size %d) of %d total entries\n",
		page.Pagination.Page, page.Pagination.Limit, page.Pagination.Total)
	return err
}

// displayTitle flags entries whose content is gone.
func displayTitle(item schema.ListItem) string {
	if item.Content == nil {
		return contract.OrphanColor.Sprint("(content unavailable)")
	}
	return item.Content.Title
}

// writeListCSV writes one row per item. Orphans keep empty content columns.
func writeListCSV(w io.Writer, page *schema.ListPage) error {
	header := []string{"entry_id", "content_id", "content_type", "title", "genres", "release_date", "added_at"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, item := range page.Items {
			rec := []string{item.ID, item.ContentID, string(item.ContentType), "", "", "", item.AddedAt.UTC().Format(DateTimeFormat)}
			if c := item.Content; c != nil {
				rec[3] = c.Title
				rec[4] = strings.Join(c.Genres, "|")
				if c.ReleaseDate != nil {
					rec[5] = c.ReleaseDate.Format("2006-01-02")
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteEntry prints a single list entry.
func WriteEntry(entry *schema.ListEntry, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, entry)
		}
		_, err := fmt.Fprintf(w, "Added %s %s (entry %s)\n",
			contract.GetColorLabel(entry.ContentType), entry.ContentID, entry.ID)
		return err
	}, "Wrote entry")
}

// WriteHealth prints a health report.
func WriteHealth(report schema.HealthReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, report)
		}
		_, err := fmt.Fprintf(w, "Status: %s\nDatabase: %s\nCache: %s\nTotal list items: %d\n",
			report.Status, report.Database, report.Cache, report.Metrics.TotalListItems)
		return err
	}, "Wrote health report")
}

// Package outwriter has output and writer logic for the command line.
package outwriter

import (
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteListPage prints one page of a user's list using the configured output format.
func (ow *OutWriter) WriteListPage(page *schema.ListPage, cfg *contract.Config) error {
	return WriteListPage(page, cfg)
}

// WriteEntry prints a single list entry, typically the result of an add.
func (ow *OutWriter) WriteEntry(entry *schema.ListEntry, cfg *contract.Config) error {
	return WriteEntry(entry, cfg)
}

// WriteHealth prints a health report using the configured output format.
func (ow *OutWriter) WriteHealth(report schema.HealthReport, cfg *contract.Config) error {
	return WriteHealth(report, cfg)
}

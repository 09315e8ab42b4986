// Package contract provides interfaces and shared utilities for the watchlist's internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/watchlist/schema"
)

// Store-level sentinel errors. The list service translates them into schema.Error kinds.
var (
	// ErrDuplicateKey is returned by ListStore.Insert when (userId, contentId) already exists.
	ErrDuplicateKey = errors.New("duplicate list entry")

	// ErrContentMissing is returned by CatalogStore.GetContent when no record matches.
	ErrContentMissing = errors.New("content not found in catalog")
)

// PageCacheTTL is the lifetime of a cached list page.
const PageCacheTTL = 300 * time.Second

// ListStore is the durable per-user set of list entries.
type ListStore interface {
	// Exists reports whether the user already has the content on their list.
	// It is advisory only; Insert is the authoritative duplicate check.
	Exists(ctx context.Context, userID, contentID string) (bool, error)

	// Insert persists a new entry. It returns ErrDuplicateKey when the pair already exists.
	Insert(ctx context.Context, entry schema.ListEntry) error

	// Delete removes the entry and returns the number of rows deleted (0 or 1).
	Delete(ctx context.Context, userID, contentID string) (int64, error)

	// ListPage returns entries ordered by creation time descending and the user's total entry count.
	ListPage(ctx context.Context, userID string, offset, limit int) ([]schema.ListEntry, int64, error)

	// CountAll returns the number of entries across all users.
	CountAll(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	GetStatus(ctx context.Context) (schema.StoreStatus, error)
	Close() error
}

// CatalogStore is the read-only movie and TV show lookup.
type CatalogStore interface {
	// GetContent returns ErrContentMissing when no record of that kind has the id.
	GetContent(ctx context.Context, id string, kind schema.ContentType) (*schema.ContentRecord, error)
}

// PageCache holds serialized list pages keyed by user, page and size.
type PageCache interface {
	// Get returns (nil, nil) on a miss. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the key and sets an absolute expiry of now+ttl.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// InvalidateUser deletes every cached page for the user and returns how many were removed.
	InvalidateUser(ctx context.Context, userID string) (int, error)

	// Clear removes every cached page.
	Clear(ctx context.Context) error

	GetStatus(ctx context.Context) (schema.CacheStatus, error)
	Close() error
}

// ExpiringCache is implemented by cache backends that keep expired entries until purged.
type ExpiringCache interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// ListService is the orchestrator consumed by the HTTP, CLI and MCP surfaces.
type ListService interface {
	AddToList(ctx context.Context, userID, contentID string, kind schema.ContentType) (*schema.ListEntry, error)
	RemoveFromList(ctx context.Context, userID, contentID string) (*schema.RemoveResult, error)
	GetMyList(ctx context.Context, userID string, page, size int) (*schema.ListPage, error)
	Health(ctx context.Context) schema.HealthReport
}

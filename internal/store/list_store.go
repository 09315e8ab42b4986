package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

// ListStoreImpl stores list entries in the list_entries table.
type ListStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	q       listQueries
}

type listQueries struct {
	exists   string
	insert   string
	delete   string
	count    string
	page     string
	countAll string
	users    string
	movies   string
	tvShows  string
}

var _ contract.ListStore = &ListStoreImpl{} // Compile-time check

const (
	existsQuery = `SELECT 1 FROM list_entries WHERE user_id = ? AND content_id = ?`
	insertQuery = `INSERT INTO list_entries (id, user_id, content_id, content_type, created_at) VALUES (?, ?, ?, ?, ?)`
	deleteQuery = `DELETE FROM list_entries WHERE user_id = ? AND content_id = ?`
	countQuery  = `SELECT COUNT(*) FROM list_entries WHERE user_id = ?`
	pageQuery   = `SELECT id, user_id, content_id, content_type, created_at FROM list_entries
		WHERE user_id = ? ORDER BY created_at DESC, seq DESC LIMIT ? OFFSET ?`
)

// NewListStore wraps an open database whose schema is already migrated.
func NewListStore(db *sql.DB, backend schema.DatabaseBackend) *ListStoreImpl {
	return &ListStoreImpl{
		db:      db,
		backend: backend,
		q: listQueries{
			exists:   rebind(backend, existsQuery),
			insert:   rebind(backend, insertQuery),
			delete:   rebind(backend, deleteQuery),
			count:    rebind(backend, countQuery),
			page:     rebind(backend, pageQuery),
			countAll: `SELECT COUNT(*) FROM list_entries`,
			users:    `SELECT COUNT(DISTINCT user_id) FROM list_entries`,
			movies:   `SELECT COUNT(*) FROM movies`,
			tvShows:  `SELECT COUNT(*) FROM tv_shows`,
		},
	}
}

// Exists reports whether the user already has the content on their list.
func (ls *ListStoreImpl) Exists(ctx context.Context, userID, contentID string) (bool, error) {
	var one int
	err := ls.db.QueryRowContext(ctx, ls.q.exists, userID, contentID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check list entry: %w", err)
	}
	return true, nil
}

// Insert persists the entry; the unique (user_id, content_id) index is the duplicate guard.
func (ls *ListStoreImpl) Insert(ctx context.Context, entry schema.ListEntry) error {
	_, err := ls.db.ExecContext(ctx, ls.q.insert,
		entry.ID, entry.UserID, entry.ContentID, string(entry.ContentType), entry.CreatedAt.UnixMicro())
	if err != nil {
		if isDuplicateKey(err) {
			return contract.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert list entry: %w", err)
	}
	return nil
}

// Delete removes the entry and returns the number of rows deleted.
func (ls *ListStoreImpl) Delete(ctx context.Context, userID, contentID string) (int64, error) {
	res, err := ls.db.ExecContext(ctx, ls.q.delete, userID, contentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete list entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted rows: %w", err)
	}
	return n, nil
}

// ListPage returns a page of entries, newest first, with the user's total count.
func (ls *ListStoreImpl) ListPage(ctx context.Context, userID string, offset, limit int) ([]schema.ListEntry, int64, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid page window: offset %d, limit %d", offset, limit)
	}
	var total int64
	if err := ls.db.QueryRowContext(ctx, ls.q.count, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count list entries: %w", err)
	}
	entries := make([]schema.ListEntry, 0, limit)
	if total == 0 || int64(offset) >= total {
		return entries, total, nil
	}

	rows, err := ls.db.QueryContext(ctx, ls.q.page, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e schema.ListEntry
		var kind string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.ContentID, &kind, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan list entry: %w", err)
		}
		e.ContentType = schema.ContentType(kind)
		e.CreatedAt = time.UnixMicro(createdAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate list entries: %w", err)
	}
	return entries, total, nil
}

// CountAll returns the number of entries across all users.
func (ls *ListStoreImpl) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := ls.db.QueryRowContext(ctx, ls.q.countAll).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count list entries: %w", err)
	}
	return total, nil
}

// Ping verifies the connection.
func (ls *ListStoreImpl) Ping(ctx context.Context) error {
	return ls.db.PingContext(ctx)
}

// GetStatus returns status information about the list store and catalog.
func (ls *ListStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(ls.backend)}
	if err := ls.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Connected = true

	counts := []struct {
		query string
		dest  *int64
	}{
		{ls.q.countAll, &status.TotalEntries},
		{ls.q.users, &status.TotalUsers},
		{ls.q.movies, &status.TotalMovies},
		{ls.q.tvShows, &status.TotalTVShows},
	}
	for _, c := range counts {
		if err := ls.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return status, fmt.Errorf("failed to read store status: %w", err)
		}
	}
	return status, nil
}

// DB exposes the underlying handle so the catalog can share it.
func (ls *ListStoreImpl) DB() *sql.DB {
	return ls.db
}

// Close closes the underlying DB connection.
func (ls *ListStoreImpl) Close() error {
	if ls.db != nil {
		return ls.db.Close()
	}
	return nil
}

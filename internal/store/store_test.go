package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*ListStoreImpl, *CatalogStoreImpl) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "watchlist.db")
	list, catalog, err := Open(context.Background(), schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = list.Close() })
	return list, catalog
}

func newEntry(userID, contentID string, kind schema.ContentType, at time.Time) schema.ListEntry {
	return schema.ListEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		ContentID:   contentID,
		ContentType: kind,
		CreatedAt:   at,
	}
}

func TestInsertAndExists(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)

	exists, err := list.Exists(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now())))

	exists, err = list.Exists(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = list.Exists(ctx, "u2", "m1")
	require.NoError(t, err)
	assert.False(t, exists, "membership is per user")
}

func TestInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)

	require.NoError(t, list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now())))
	err := list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now()))
	assert.ErrorIs(t, err, contract.ErrDuplicateKey)

	// Same content for another user is fine.
	assert.NoError(t, list.Insert(ctx, newEntry("u2", "m1", schema.MovieContent, time.Now())))
}

func TestConcurrentInsertSameKey(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now()))
		}(i)
	}
	wg.Wait()

	succeeded, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, contract.ErrDuplicateKey):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, duplicates)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)
	require.NoError(t, list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now())))

	n, err := list.Delete(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = list.Delete(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "delete is idempotent")

	exists, err := list.Exists(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListPage(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 10; i++ {
		e := newEntry("u1", fmt.Sprintf("m%d", i), schema.MovieContent, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, list.Insert(ctx, e))
	}
	require.NoError(t, list.Insert(ctx, newEntry("u2", "m1", schema.MovieContent, base)))

	tests := []struct {
		name      string
		offset    int
		limit     int
		wantIDs   []string
		wantTotal int64
	}{
		{"first page", 0, 3, []string{"m10", "m9", "m8"}, 10},
		{"page two size one", 1, 1, []string{"m9"}, 10},
		{"last partial page", 9, 5, []string{"m1"}, 10},
		{"beyond the end", 20, 5, []string{}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, total, err := list.ListPage(ctx, "u1", tt.offset, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			ids := make([]string, 0, len(entries))
			for _, e := range entries {
				ids = append(ids, e.ContentID)
				assert.Equal(t, "u1", e.UserID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	entries, _, err := list.ListPage(ctx, "u1", 0, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, base.Add(10*time.Minute), entries[0].CreatedAt)
	assert.Equal(t, schema.MovieContent, entries[0].ContentType)
}

func TestListPageTieBreak(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, list.Insert(ctx, newEntry("u1", id, schema.TVShowContent, at)))
	}

	entries, total, err := list.ListPage(ctx, "u1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].ContentID, "later insert wins a timestamp tie")
	assert.Equal(t, "a", entries[2].ContentID)
}

func TestListPageEmpty(t *testing.T) {
	list, _ := openTestStore(t)
	entries, total, err := list.ListPage(context.Background(), "nobody", 0, 20)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Equal(t, int64(0), total)
}

func TestListPageRejectsBadWindow(t *testing.T) {
	list, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now())))

	tests := []struct {
		name          string
		offset, limit int
	}{
		{"negative offset", -200, 100},
		{"zero limit", 0, 0},
		{"negative limit", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, _, err := list.ListPage(ctx, "u1", tt.offset, tt.limit)
			require.Error(t, err)
			assert.Nil(t, entries)
		})
	}
}

func TestCountAllAndStatus(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)
	seedCatalog(t, list.DB())

	require.NoError(t, list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now())))
	require.NoError(t, list.Insert(ctx, newEntry("u2", "m1", schema.MovieContent, time.Now())))
	require.NoError(t, list.Insert(ctx, newEntry("u2", "s1", schema.TVShowContent, time.Now())))

	total, err := list.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	status, err := list.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, int64(3), status.TotalEntries)
	assert.Equal(t, int64(2), status.TotalUsers)
	assert.Equal(t, int64(2), status.TotalMovies)
	assert.Equal(t, int64(1), status.TotalTVShows)
	assert.NoError(t, list.Ping(ctx))
}

func TestClosedStoreErrors(t *testing.T) {
	ctx := context.Background()
	list, _ := openTestStore(t)
	require.NoError(t, list.Close())

	_, err := list.Exists(ctx, "u1", "m1")
	assert.Error(t, err)
	err = list.Insert(ctx, newEntry("u1", "m1", schema.MovieContent, time.Now()))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contract.ErrDuplicateKey)

	status, err := list.GetStatus(ctx)
	assert.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestRebind(t *testing.T) {
	q := `SELECT 1 FROM t WHERE a = ? AND b = ?`
	assert.Equal(t, q, rebind(schema.SQLiteBackend, q))
	assert.Equal(t, q, rebind(schema.MySQLBackend, q))
	assert.Equal(t, `SELECT 1 FROM t WHERE a = $1 AND b = $2`, rebind(schema.PostgreSQLBackend, q))
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"wrapped postgres", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"plain", errors.New("boom"), false},
		{"no rows", sql.ErrNoRows, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}

func TestResolveDSN(t *testing.T) {
	driver, dsn, err := resolveDSN(schema.SQLiteBackend, "/tmp/x.db", false)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "/tmp/x.db?_pragma=busy_timeout(5000)", dsn)

	_, dsn, err = resolveDSN(schema.SQLiteBackend, "file:/tmp/x.db?cache=shared", false)
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/x.db?cache=shared&_pragma=busy_timeout(5000)", dsn)

	driver, dsn, err = resolveDSN(schema.MySQLBackend, "u:p@tcp(localhost:3306)/watchlist", true)
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Contains(t, dsn, "multiStatements=true")

	driver, _, err = resolveDSN(schema.PostgreSQLBackend, "host=localhost dbname=w", false)
	require.NoError(t, err)
	assert.Equal(t, "pgx", driver)

	_, _, err = resolveDSN(schema.DatabaseBackend("oracle"), "", false)
	assert.Error(t, err)
}

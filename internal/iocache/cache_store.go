// Package iocache caches rendered list pages in front of the list store.
package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// DefaultCacheTable is the table used by the SQL page cache backends.
const DefaultCacheTable = "watchlist_page_cache"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CacheStoreImpl keeps cached pages in a SQL table with an expiry column.
type CacheStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.CacheBackend
	connStr   string
	now       func() time.Time
}

var (
	_ contract.PageCache     = &CacheStoreImpl{} // Compile-time check
	_ contract.ExpiringCache = &CacheStoreImpl{} // Compile-time check
)

// NewCacheStore opens the SQL page cache and creates its table if needed.
func NewCacheStore(tableName string, backend schema.CacheBackend, connStr string) (*CacheStoreImpl, error) {
	// Validate table name to prevent SQL injection
	if !tableNamePattern.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name: %q (must match pattern %s)", tableName, tableNamePattern)
	}

	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteCache:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetCacheDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		connStr = dbPath

	case schema.MySQLCache:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLCache:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported SQL cache backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	for _, query := range getCreateTableQueries(tableName, backend) {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}

	return &CacheStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
		now:       time.Now,
	}, nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.CacheBackend) string {
	if backend == schema.MySQLCache {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("\"%s\"", name)
}

// getCreateTableQueries returns the DDL statements for the given backend.
func getCreateTableQueries(tableName string, backend schema.CacheBackend) []string {
	quoted := quoteTableName(tableName, backend)
	index := quoteTableName("idx_"+tableName+"_prefix", backend)
	switch backend {
	case schema.MySQLCache:
		return []string{fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(512) CHARACTER SET ascii NOT NULL PRIMARY KEY,
				key_prefix VARCHAR(512) CHARACTER SET ascii NOT NULL,
				cache_value MEDIUMBLOB NOT NULL,
				created_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL,
				INDEX %s (key_prefix)
			)`, quoted, index)}

	case schema.PostgreSQLCache:
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				key_prefix TEXT NOT NULL,
				cache_value BYTEA NOT NULL,
				created_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL
			)`, quoted),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (key_prefix)`, index, quoted),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				key_prefix TEXT NOT NULL,
				cache_value BLOB NOT NULL,
				created_at INTEGER NOT NULL,
				expires_at INTEGER NOT NULL
			)`, quoted),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (key_prefix)`, index, quoted),
		}
	}
}

// placeholder returns the nth parameter placeholder for the backend.
func (cs *CacheStoreImpl) placeholder(n int) string {
	if cs.backend == schema.PostgreSQLCache {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Get returns the cached page or (nil, nil) when the key is absent or expired.
func (cs *CacheStoreImpl) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT cache_value, expires_at FROM %s WHERE cache_key = %s`,
		quoteTableName(cs.tableName, cs.backend), cs.placeholder(1))

	var value []byte
	var expiresAt int64
	err := cs.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expiresAt <= cs.now().UnixMilli() {
		return nil, nil
	}
	return value, nil
}

// Put inserts or replaces a page with an absolute expiry.
func (cs *CacheStoreImpl) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	prefix := KeyPrefix(key)
	if prefix == "" {
		return fmt.Errorf("malformed cache key %q", key)
	}
	now := cs.now()
	_, err := cs.db.ExecContext(ctx, cs.getUpsertQuery(), key, prefix, value, now.UnixMilli(), now.Add(ttl).UnixMilli())
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (cs *CacheStoreImpl) getUpsertQuery() string {
	quoted := quoteTableName(cs.tableName, cs.backend)
	switch cs.backend {
	case schema.MySQLCache:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, key_prefix, cache_value, created_at, expires_at) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, created_at = new.created_at, expires_at = new.expires_at`, quoted)

	case schema.PostgreSQLCache:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, key_prefix, cache_value, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`, quoted)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, key_prefix, cache_value, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`, quoted)
	}
}

// InvalidateUser deletes every row sharing the user's key prefix.
func (cs *CacheStoreImpl) InvalidateUser(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key_prefix = %s`, quoteTableName(cs.tableName, cs.backend), cs.placeholder(1))
	return cs.execCount(ctx, query, UserKeyPrefix(userID))
}

// PurgeExpired deletes rows whose expiry has passed.
func (cs *CacheStoreImpl) PurgeExpired(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= %s`, quoteTableName(cs.tableName, cs.backend), cs.placeholder(1))
	return cs.execCount(ctx, query, cs.now().UnixMilli())
}

// Clear deletes every cached page.
func (cs *CacheStoreImpl) Clear(ctx context.Context) error {
	_, err := cs.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, quoteTableName(cs.tableName, cs.backend)))
	return err
}

func (cs *CacheStoreImpl) execCount(ctx context.Context, query string, args ...any) (int, error) {
	res, err := cs.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close closes the underlying DB connection.
func (cs *CacheStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache table.
func (cs *CacheStoreImpl) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(cs.backend)}
	if err := cs.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Connected = true

	quoted := quoteTableName(cs.tableName, cs.backend)
	var lastTs, oldestTs sql.NullInt64
	row := cs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*), MAX(created_at), MIN(created_at) FROM %s", quoted))
	if err := row.Scan(&status.TotalEntries, &lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get cache entries: %w", err)
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.UnixMilli(lastTs.Int64)
		status.OldestEntryTime = time.UnixMilli(oldestTs.Int64)
	}

	// Fallback rough estimate if a size query fails
	estimate := int64(status.TotalEntries) * 4096
	switch cs.backend {
	case schema.SQLiteCache:
		row = cs.db.QueryRowContext(ctx, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = 0
		}
	case schema.MySQLCache:
		status.SizeBytes = estimate
		cfg, err := mysql.ParseDSN(cs.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		row = cs.db.QueryRowContext(ctx, "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, cs.tableName)
		if err := row.Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = estimate
		}
	case schema.PostgreSQLCache:
		row = cs.db.QueryRowContext(ctx, "SELECT pg_total_relation_size($1)", cs.tableName)
		if err := row.Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = estimate
		}
	}
	return status, nil
}

// Package store persists list entries and serves catalog lookups over SQL backends.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"modernc.org/sqlite"               // SQLite driver
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteBusyTimeout keeps concurrent writers waiting instead of failing with SQLITE_BUSY.
const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

// Open migrates the database to the latest schema version and returns the list store
// and catalog sharing one connection pool.
func Open(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*ListStoreImpl, *CatalogStoreImpl, error) {
	if err := Migrate(backend, connStr, -1, io.Discard); err != nil {
		return nil, nil, err
	}
	db, err := OpenDB(backend, connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return NewListStore(db, backend), NewCatalogStore(db, backend), nil
}

// OpenDB opens a database handle for the backend without touching the schema.
func OpenDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driverName, dsn, err := resolveDSN(backend, connStr, false)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// resolveDSN returns the driver name and DSN. Migrations need multi-statement support on MySQL.
func resolveDSN(backend schema.DatabaseBackend, connStr string, forMigrate bool) (string, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		if !strings.Contains(dbPath, "_pragma=") {
			sep := "?"
			if strings.Contains(dbPath, "?") {
				sep = "&"
			}
			dbPath += sep + sqliteBusyTimeout
		}
		return "sqlite", dbPath, nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return "", "", fmt.Errorf("invalid MySQL connection string: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		if forMigrate {
			cfg.MultiStatements = true
		}
		return "mysql", cfg.FormatDSN(), nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		return "pgx", connStr, nil

	default:
		return "", "", fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func rebind(backend schema.DatabaseBackend, query string) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isDuplicateKey reports whether err is a unique constraint violation on any supported driver.
func isDuplicateKey(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062 // ER_DUP_ENTRY
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

// Options selects and configures the page cache backend.
type Options struct {
	Backend         schema.CacheBackend
	ConnStr         string // DSN for SQL backends, directory or file path for badger and bolt
	Redis           RedisConfig
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// ReconnectInterval spaces attempts to open a backend that failed at startup.
	ReconnectInterval time.Duration
}

// OptionsFromConfig extracts the cache options from the validated application config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		Backend: cfg.CacheBackend,
		ConnStr: cfg.CacheDBConnect,
		Redis: RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}
}

// NewPageCache builds the page cache for the configured backend.
// Network backends are wrapped in a circuit breaker.
func NewPageCache(ctx context.Context, opts Options) (contract.PageCache, error) {
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = contract.DefaultBreakerFailures
	}
	timeout := opts.BreakerTimeout
	if timeout == 0 {
		timeout = contract.DefaultBreakerTimeout
	}

	switch opts.Backend {
	case schema.RedisCache:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return NewBreakerCache("redis", c, failures, timeout), nil

	case schema.MySQLCache, schema.PostgreSQLCache:
		c, err := NewCacheStore(DefaultCacheTable, opts.Backend, opts.ConnStr)
		if err != nil {
			return nil, err
		}
		return NewBreakerCache(string(opts.Backend), c, failures, timeout), nil

	case schema.SQLiteCache:
		return NewCacheStore(DefaultCacheTable, opts.Backend, opts.ConnStr)

	case schema.BadgerCache:
		dir := opts.ConnStr
		if dir == "" {
			dir = contract.GetBadgerDirPath()
		}
		return NewBadgerCache(dir)

	case schema.BoltCache:
		return NewBoltCache(opts.ConnStr)

	case schema.MemoryCache, "":
		return NewMemoryCache(), nil

	case schema.NoneCache:
		return NoneCache{}, nil

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", opts.Backend)
	}
}

// CacheManager owns the process-wide page cache.
type CacheManager struct {
	sync.Mutex
	cache contract.PageCache
}

// Global Manager instance for main logic.
var (
	Manager   = &CacheManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// Cache returns the initialized page cache, or NoneCache before InitCaching.
func (m *CacheManager) Cache() contract.PageCache {
	m.Lock()
	defer m.Unlock()
	if m.cache == nil {
		return NoneCache{}
	}
	return m.cache
}

// InitCaching initializes the global cache manager.
// When a supported backend cannot be opened, the manager holds a ReconnectingCache
// for it and the open error is still returned.
func InitCaching(ctx context.Context, opts Options) error {
	var initErr error

	initOnce.Do(func() {
		cache, err := NewPageCache(ctx, opts)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize page caching: %w", err)
			if _, ok := schema.ValidCacheBackends[opts.Backend]; !ok {
				return
			}
			rc := NewReconnectingCache(string(opts.Backend), func(ctx context.Context) (contract.PageCache, error) {
				return NewPageCache(ctx, opts)
			}, opts.ReconnectInterval)
			rc.recordFailure(err)
			cache = rc
		}
		Manager.Lock()
		Manager.cache = cache
		Manager.Unlock()
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
	})
}

// DropCache removes the backing storage of an offline cache.
// For SQLite and bolt, it deletes the file.
// For badger, it deletes the directory.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For memory, none and redis, it does nothing; use Clear on a live cache instead.
func DropCache(backend schema.CacheBackend, connStr string) error {
	switch backend {
	case schema.SQLiteCache:
		if connStr == "" {
			connStr = contract.GetCacheDBFilePath()
		}
		return removePath(connStr, false)

	case schema.BoltCache:
		if connStr == "" {
			connStr = contract.GetBoltFilePath()
		}
		return removePath(connStr, false)

	case schema.BadgerCache:
		if connStr == "" {
			connStr = contract.GetBadgerDirPath()
		}
		return removePath(connStr, true)

	case schema.MySQLCache:
		return dropSQLTable("mysql", connStr, DefaultCacheTable)

	case schema.PostgreSQLCache:
		return dropSQLTable("pgx", connStr, DefaultCacheTable)

	case schema.MemoryCache, schema.NoneCache, schema.RedisCache:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for dropping: %s", backend)
	}
}

// removePath removes a file or directory; a missing path is not an error.
func removePath(path string, dir bool) error {
	var err error
	if dir {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// dropSQLTable connects to the SQL database and drops the table if it exists.
func dropSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}

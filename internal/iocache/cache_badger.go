package iocache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

// badgerDeleteBatch bounds how many keys are removed per write batch flush.
const badgerDeleteBatch = 1000

// BadgerCache keeps cached pages in an embedded BadgerDB with per-entry TTL.
type BadgerCache struct {
	db *badger.DB
}

var _ contract.PageCache = &BadgerCache{} // Compile-time check

// NewBadgerCache opens BadgerDB at dir. An empty dir runs BadgerDB in memory.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache at %q: %w", dir, err)
	}
	return &BadgerCache{db: db}, nil
}

// Get returns the cached page or (nil, nil) on a miss.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	return value, nil
}

// Put stores the page with a TTL.
func (c *BadgerCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
}

// InvalidateUser deletes every key under the user's prefix.
func (c *BadgerCache) InvalidateUser(_ context.Context, userID string) (int, error) {
	keys, err := c.keysWithPrefix([]byte(UserKeyPrefix(userID)))
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := c.db.NewWriteBatch()
	defer func() { wb.Cancel() }()
	for i, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete cache entry: %w", err)
		}
		if (i+1)%badgerDeleteBatch == 0 {
			if err := wb.Flush(); err != nil {
				return 0, err
			}
			wb = c.db.NewWriteBatch()
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (c *BadgerCache) keysWithPrefix(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Clear drops every key in the page cache namespace.
func (c *BadgerCache) Clear(_ context.Context) error {
	return c.db.DropPrefix([]byte(KeyNamespace))
}

// GetStatus counts live entries and reports the on-disk size.
func (c *BadgerCache) GetStatus(_ context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.BadgerCache)}
	if c.db.IsClosed() {
		return status, nil
	}
	status.Connected = true

	keys, err := c.keysWithPrefix([]byte(KeyNamespace))
	if err != nil {
		return status, fmt.Errorf("failed to count cache entries: %w", err)
	}
	status.TotalEntries = len(keys)
	lsm, vlog := c.db.Size()
	status.SizeBytes = lsm + vlog
	return status, nil
}

// Close closes BadgerDB.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

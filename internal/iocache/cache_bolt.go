package iocache

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	bolt "go.etcd.io/bbolt"
)

var pagesBucket = []byte("pages")

// boltHeaderSize is the expiry plus created_at prefix stored before each payload.
const boltHeaderSize = 16

// BoltCache keeps cached pages in a single bbolt file.
// Expired entries are misses until PurgeExpired removes them.
type BoltCache struct {
	db  *bolt.DB
	now func() time.Time
}

var (
	_ contract.PageCache     = &BoltCache{} // Compile-time check
	_ contract.ExpiringCache = &BoltCache{} // Compile-time check
)

// NewBoltCache opens or creates the bbolt file at path.
func NewBoltCache(path string) (*BoltCache, error) {
	if path == "" {
		path = contract.GetBoltFilePath()
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache at %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &BoltCache{db: db, now: time.Now}, nil
}

func encodeBoltValue(value []byte, createdAt, expiresAt time.Time) []byte {
	buf := make([]byte, boltHeaderSize+len(value))
	binary.BigEndian.PutUint64(buf[0:8], uint64(expiresAt.UnixMilli()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(createdAt.UnixMilli()))
	copy(buf[boltHeaderSize:], value)
	return buf
}

func decodeBoltHeader(raw []byte) (expiresAt, createdAt int64, ok bool) {
	if len(raw) < boltHeaderSize {
		return 0, 0, false
	}
	return int64(binary.BigEndian.Uint64(raw[0:8])), int64(binary.BigEndian.Uint64(raw[8:16])), true
}

// Get returns the cached page or (nil, nil) when absent or expired.
func (c *BoltCache) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	now := c.now().UnixMilli()
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(pagesBucket).Get([]byte(key))
		expiresAt, _, ok := decodeBoltHeader(raw)
		if !ok || expiresAt <= now {
			return nil
		}
		// raw is only valid inside the transaction
		value = bytes.Clone(raw[boltHeaderSize:])
		return nil
	})
	return value, err
}

// Put stores the page with an absolute expiry.
func (c *BoltCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put([]byte(key), encodeBoltValue(value, now, now.Add(ttl)))
	})
}

// InvalidateUser deletes every key under the user's prefix.
func (c *BoltCache) InvalidateUser(_ context.Context, userID string) (int, error) {
	prefix := []byte(UserKeyPrefix(userID))
	deleted := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket)
		var keys [][]byte
		cur := b.Cursor()
		for k, _ := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cur.Next() {
			keys = append(keys, bytes.Clone(k))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})
	return deleted, err
}

// PurgeExpired removes every entry whose expiry has passed.
func (c *BoltCache) PurgeExpired(_ context.Context) (int, error) {
	now := c.now().UnixMilli()
	purged := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket)
		var keys [][]byte
		err := b.ForEach(func(k, v []byte) error {
			expiresAt, _, ok := decodeBoltHeader(v)
			if !ok || expiresAt <= now {
				keys = append(keys, bytes.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		purged = len(keys)
		return nil
	})
	return purged, err
}

// Clear recreates the pages bucket.
func (c *BoltCache) Clear(_ context.Context) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(pagesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(pagesBucket)
		return err
	})
}

// GetStatus reports entry counts, entry times and the file size.
func (c *BoltCache) GetStatus(_ context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.BoltCache)}
	var newest, oldest int64
	err := c.db.View(func(tx *bolt.Tx) error {
		status.SizeBytes = tx.Size()
		return tx.Bucket(pagesBucket).ForEach(func(_, v []byte) error {
			_, createdAt, ok := decodeBoltHeader(v)
			if !ok {
				return nil
			}
			status.TotalEntries++
			if createdAt > newest {
				newest = createdAt
			}
			if oldest == 0 || createdAt < oldest {
				oldest = createdAt
			}
			return nil
		})
	})
	if err != nil {
		return status, nil
	}
	status.Connected = true
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.UnixMilli(newest)
		status.OldestEntryTime = time.UnixMilli(oldest)
	}
	return status, nil
}

// Close closes the bbolt file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

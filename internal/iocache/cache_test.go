package iocache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for the clock-aware backends.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// cacheFactory opens a fresh cache. clock is nil for backends using wall-clock TTLs.
type cacheFactory struct {
	name string
	open func(t *testing.T) (contract.PageCache, *fakeClock)
}

func pageCacheFactories() []cacheFactory {
	return []cacheFactory{
		{name: "memory", open: func(t *testing.T) (contract.PageCache, *fakeClock) {
			clock := newFakeClock()
			return NewMemoryCacheWithClock(clock.Now), clock
		}},
		{name: "sqlite", open: func(t *testing.T) (contract.PageCache, *fakeClock) {
			cs, err := NewCacheStore(DefaultCacheTable, schema.SQLiteCache, filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			clock := newFakeClock()
			cs.now = clock.Now
			return cs, clock
		}},
		{name: "bolt", open: func(t *testing.T) (contract.PageCache, *fakeClock) {
			bc, err := NewBoltCache(filepath.Join(t.TempDir(), "cache.bolt"))
			require.NoError(t, err)
			clock := newFakeClock()
			bc.now = clock.Now
			return bc, clock
		}},
		{name: "badger", open: func(t *testing.T) (contract.PageCache, *fakeClock) {
			bc, err := NewBadgerCache("")
			require.NoError(t, err)
			return bc, nil
		}},
	}
}

func TestPageCacheBackends(t *testing.T) {
	ctx := context.Background()

	for _, f := range pageCacheFactories() {
		t.Run(f.name, func(t *testing.T) {
			t.Run("miss then hit", func(t *testing.T) {
				cache, _ := f.open(t)
				defer func() { _ = cache.Close() }()

				key := CacheKey("u1", 1, 10)
				got, err := cache.Get(ctx, key)
				require.NoError(t, err)
				assert.Nil(t, got)

				require.NoError(t, cache.Put(ctx, key, []byte(`{"items":[]}`), contract.PageCacheTTL))
				got, err = cache.Get(ctx, key)
				require.NoError(t, err)
				assert.Equal(t, []byte(`{"items":[]}`), got)
			})

			t.Run("put overwrites", func(t *testing.T) {
				cache, _ := f.open(t)
				defer func() { _ = cache.Close() }()

				key := CacheKey("u1", 1, 10)
				require.NoError(t, cache.Put(ctx, key, []byte("old"), contract.PageCacheTTL))
				require.NoError(t, cache.Put(ctx, key, []byte("new"), contract.PageCacheTTL))
				got, err := cache.Get(ctx, key)
				require.NoError(t, err)
				assert.Equal(t, []byte("new"), got)
			})

			t.Run("invalidate user is scoped", func(t *testing.T) {
				cache, _ := f.open(t)
				defer func() { _ = cache.Close() }()

				keys := []string{CacheKey("a", 1, 10), CacheKey("a", 2, 10), CacheKey("a", 1, 20)}
				for _, k := range keys {
					require.NoError(t, cache.Put(ctx, k, []byte("x"), contract.PageCacheTTL))
				}
				// "a:1" must not be touched by invalidating "a"
				other := CacheKey("a:1", 1, 10)
				require.NoError(t, cache.Put(ctx, other, []byte("y"), contract.PageCacheTTL))

				n, err := cache.InvalidateUser(ctx, "a")
				require.NoError(t, err)
				assert.Equal(t, 3, n)

				for _, k := range keys {
					got, err := cache.Get(ctx, k)
					require.NoError(t, err)
					assert.Nil(t, got, k)
				}
				got, err := cache.Get(ctx, other)
				require.NoError(t, err)
				assert.Equal(t, []byte("y"), got)

				n, err = cache.InvalidateUser(ctx, "nobody")
				require.NoError(t, err)
				assert.Zero(t, n)
			})

			t.Run("clear", func(t *testing.T) {
				cache, _ := f.open(t)
				defer func() { _ = cache.Close() }()

				require.NoError(t, cache.Put(ctx, CacheKey("a", 1, 10), []byte("x"), contract.PageCacheTTL))
				require.NoError(t, cache.Put(ctx, CacheKey("b", 1, 10), []byte("x"), contract.PageCacheTTL))
				require.NoError(t, cache.Clear(ctx))

				status, err := cache.GetStatus(ctx)
				require.NoError(t, err)
				assert.True(t, status.Connected)
				assert.Zero(t, status.TotalEntries)
			})

			t.Run("status counts entries", func(t *testing.T) {
				cache, _ := f.open(t)
				defer func() { _ = cache.Close() }()

				require.NoError(t, cache.Put(ctx, CacheKey("a", 1, 10), []byte("x"), contract.PageCacheTTL))
				require.NoError(t, cache.Put(ctx, CacheKey("b", 1, 10), []byte("y"), contract.PageCacheTTL))

				status, err := cache.GetStatus(ctx)
				require.NoError(t, err)
				assert.True(t, status.Connected)
				assert.Equal(t, 2, status.TotalEntries)
			})

			t.Run("entries expire after ttl", func(t *testing.T) {
				cache, clock := f.open(t)
				defer func() { _ = cache.Close() }()
				if clock == nil {
					t.Skip("backend uses wall-clock expiry")
				}

				key := CacheKey("u1", 1, 10)
				require.NoError(t, cache.Put(ctx, key, []byte("x"), contract.PageCacheTTL))

				clock.Advance(contract.PageCacheTTL - time.Second)
				got, err := cache.Get(ctx, key)
				require.NoError(t, err)
				assert.NotNil(t, got)

				clock.Advance(time.Second)
				got, err = cache.Get(ctx, key)
				require.NoError(t, err)
				assert.Nil(t, got)

				ec, ok := cache.(contract.ExpiringCache)
				require.True(t, ok)
				purged, err := ec.PurgeExpired(ctx)
				require.NoError(t, err)
				assert.Equal(t, 1, purged)
			})
		})
	}
}

func TestCacheStoreRejectsBadTableName(t *testing.T) {
	_, err := NewCacheStore("pages; DROP TABLE x", schema.SQLiteCache, filepath.Join(t.TempDir(), "cache.db"))
	assert.Error(t, err)
}

func TestCacheStorePutRejectsMalformedKey(t *testing.T) {
	cs, err := NewCacheStore(DefaultCacheTable, schema.SQLiteCache, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	assert.Error(t, cs.Put(context.Background(), "not-a-page-key", []byte("x"), time.Minute))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`pages`", quoteTableName("pages", schema.MySQLCache))
	assert.Equal(t, `"pages"`, quoteTableName("pages", schema.PostgreSQLCache))
	assert.Equal(t, `"pages"`, quoteTableName("pages", schema.SQLiteCache))
}

func TestNoneCache(t *testing.T) {
	ctx := context.Background()
	var cache NoneCache
	require.NoError(t, cache.Put(ctx, CacheKey("u", 1, 10), []byte("x"), time.Minute))
	got, err := cache.Get(ctx, CacheKey("u", 1, 10))
	require.NoError(t, err)
	assert.Nil(t, got)

	status, err := cache.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, string(schema.NoneCache), status.Backend)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	value := []byte("abc")
	require.NoError(t, cache.Put(ctx, CacheKey("u", 1, 10), value, time.Minute))
	value[0] = 'z'

	got, err := cache.Get(ctx, CacheKey("u", 1, 10))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestBreakerCache(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("connection refused")

	t.Run("opens after consecutive failures", func(t *testing.T) {
		inner := &MockPageCache{}
		inner.On("Get", mock.Anything, mock.Anything).Return(nil, errDown).Times(2)

		cache := NewBreakerCache("test-open", inner, 2, time.Hour)
		for range 2 {
			_, err := cache.Get(ctx, "k")
			assert.ErrorIs(t, err, errDown)
		}
		assert.Equal(t, gobreaker.StateOpen, cache.State())

		_, err := cache.Get(ctx, "k")
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		inner.AssertExpectations(t)
	})

	t.Run("invalidation bypasses an open circuit", func(t *testing.T) {
		inner := &MockPageCache{}
		inner.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errDown).Once()
		inner.On("InvalidateUser", mock.Anything, "u1").Return(3, nil).Once()

		cache := NewBreakerCache("test-bypass", inner, 1, time.Hour)
		assert.ErrorIs(t, cache.Put(ctx, "k", []byte("v"), time.Minute), errDown)
		assert.Equal(t, gobreaker.StateOpen, cache.State())

		n, err := cache.InvalidateUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		inner.AssertExpectations(t)
	})

	t.Run("a miss is not a failure", func(t *testing.T) {
		inner := &MockPageCache{}
		inner.On("Get", mock.Anything, "k").Return(nil, nil)

		cache := NewBreakerCache("test-miss", inner, 1, time.Hour)
		for range 3 {
			got, err := cache.Get(ctx, "k")
			require.NoError(t, err)
			assert.Nil(t, got)
		}
		assert.Equal(t, gobreaker.StateClosed, cache.State())
	})

	t.Run("purge delegates to expiring backends", func(t *testing.T) {
		clock := newFakeClock()
		mem := NewMemoryCacheWithClock(clock.Now)
		require.NoError(t, mem.Put(ctx, CacheKey("u", 1, 10), []byte("x"), time.Second))
		clock.Advance(time.Minute)

		cache := NewBreakerCache("test-purge", mem, 1, time.Hour)
		n, err := cache.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = NewBreakerCache("test-purge-none", NoneCache{}, 1, time.Hour).PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestNewPageCache(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		check   func(t *testing.T, c contract.PageCache)
	}{
		{
			name: "memory default",
			opts: Options{},
			check: func(t *testing.T, c contract.PageCache) {
				assert.IsType(t, &MemoryCache{}, c)
			},
		},
		{
			name: "none",
			opts: Options{Backend: schema.NoneCache},
			check: func(t *testing.T, c contract.PageCache) {
				assert.IsType(t, NoneCache{}, c)
			},
		},
		{
			name: "sqlite",
			opts: Options{Backend: schema.SQLiteCache, ConnStr: filepath.Join(t.TempDir(), "c.db")},
			check: func(t *testing.T, c contract.PageCache) {
				assert.IsType(t, &CacheStoreImpl{}, c)
			},
		},
		{
			name: "bolt",
			opts: Options{Backend: schema.BoltCache, ConnStr: filepath.Join(t.TempDir(), "c.bolt")},
			check: func(t *testing.T, c contract.PageCache) {
				assert.IsType(t, &BoltCache{}, c)
			},
		},
		{
			name:    "unknown",
			opts:    Options{Backend: "memcached"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewPageCache(ctx, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = c.Close() }()
			tt.check(t, c)
		})
	}
}

func TestCaching(t *testing.T) {
	t.Run("idempotent setup", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test
		Manager = &CacheManager{}

		assert.IsType(t, NoneCache{}, Manager.Cache())

		opts := Options{Backend: schema.MemoryCache}
		require.NoError(t, InitCaching(context.Background(), opts))
		require.NoError(t, InitCaching(context.Background(), opts))
		assert.IsType(t, &MemoryCache{}, Manager.Cache())

		// Multiple closes should be safe (sync.Once)
		CloseCaching()
		CloseCaching()
	})
}

func TestDropCache(t *testing.T) {
	dir := t.TempDir()
	boltPath := filepath.Join(dir, "c.bolt")
	bc, err := NewBoltCache(boltPath)
	require.NoError(t, err)
	require.NoError(t, bc.Close())

	require.NoError(t, DropCache(schema.BoltCache, boltPath))
	_, err = os.Stat(boltPath)
	assert.True(t, os.IsNotExist(err))

	// Missing files are fine
	require.NoError(t, DropCache(schema.SQLiteCache, filepath.Join(dir, "missing.db")))
	require.NoError(t, DropCache(schema.MemoryCache, ""))
	assert.Error(t, DropCache("memcached", ""))
}

func TestBadgerDefaultDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := contract.GetBadgerDirPath()

	c, err := NewPageCache(context.Background(), Options{Backend: schema.BadgerCache})
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), CacheKey("u1", 1, 20), []byte("page"), time.Minute))
	require.NoError(t, c.Close())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, DropCache(schema.BadgerCache, ""))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestParseUsedMemory(t *testing.T) {
	info := "# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n"
	assert.Equal(t, int64(1048576), parseUsedMemory(info))
	assert.Zero(t, parseUsedMemory("# Memory\r\n"))
}

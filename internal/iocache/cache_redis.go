package iocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/redis/go-redis/v9"
)

// redisScanCount is the COUNT hint passed to SCAN while invalidating.
const redisScanCount = 100

// RedisCache keeps cached pages in Redis with native key expiry.
type RedisCache struct {
	rdb *redis.Client
}

var _ contract.PageCache = &RedisCache{} // Compile-time check

// RedisConfig holds the Redis connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// Get returns the cached page or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

// Put stores the page with a TTL.
func (c *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// InvalidateUser scans the user's prefix and deletes the matches in batches.
func (c *RedisCache) InvalidateUser(ctx context.Context, userID string) (int, error) {
	return c.deleteMatching(ctx, UserKeyPrefix(userID)+"*")
}

// Clear deletes every key in the page cache namespace.
func (c *RedisCache) Clear(ctx context.Context) error {
	_, err := c.deleteMatching(ctx, KeyNamespace+"*")
	return err
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, redisScanCount).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// GetStatus counts the namespace keys and reads memory usage from INFO.
func (c *RedisCache) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisCache)}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return status, nil
	}
	status.Connected = true

	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, KeyNamespace+"*", redisScanCount).Result()
		if err != nil {
			return status, fmt.Errorf("failed to count cache entries: %w", err)
		}
		status.TotalEntries += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	info, err := c.rdb.Info(ctx, "memory").Result()
	if err == nil {
		status.SizeBytes = parseUsedMemory(info)
	}
	return status, nil
}

// parseUsedMemory extracts used_memory from an INFO memory reply.
func parseUsedMemory(info string) int64 {
	for line := range strings.SplitSeq(info, "\n") {
		value, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

//go:build database

package iocache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = redisC.Terminate(ctx) }()

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	cache, err := NewRedisCache(ctx, RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	for page := 1; page <= 150; page++ {
		require.NoError(t, cache.Put(ctx, CacheKey("a", page, 10), []byte("x"), contract.PageCacheTTL))
	}
	require.NoError(t, cache.Put(ctx, CacheKey("a:1", 1, 10), []byte("y"), contract.PageCacheTTL))

	got, err := cache.Get(ctx, CacheKey("a", 1, 10))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	n, err := cache.InvalidateUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 150, n)

	got, err = cache.Get(ctx, CacheKey("a", 1, 10))
	require.NoError(t, err)
	assert.Nil(t, got)

	status, err := cache.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalEntries)

	require.NoError(t, cache.Clear(ctx))
	got, err = cache.Get(ctx, CacheKey("a:1", 1, 10))
	require.NoError(t, err)
	assert.Nil(t, got)
}

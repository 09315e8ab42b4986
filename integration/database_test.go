//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestWatchlistWithMySQL runs the CLI with MySQL as both list store and page cache.
func TestWatchlistWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "watchlist",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/watchlist?parseTime=true", host, port.Port())
	env := newCLIEnv(t,
		"WATCHLIST_STORE_BACKEND=mysql",
		"WATCHLIST_STORE_DB_CONNECT="+connStr,
		"WATCHLIST_CACHE_BACKEND=mysql",
		"WATCHLIST_CACHE_DB_CONNECT="+connStr,
	)
	exerciseList(t, env)
	env.mustRun(t, "cache", "drop")
}

// TestWatchlistWithPostgres runs the CLI with PostgreSQL as both list store and page cache.
func TestWatchlistWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	env := newCLIEnv(t,
		"WATCHLIST_STORE_BACKEND=postgresql",
		"WATCHLIST_STORE_DB_CONNECT="+connStr,
		"WATCHLIST_CACHE_BACKEND=postgresql",
		"WATCHLIST_CACHE_DB_CONNECT="+connStr,
	)
	exerciseList(t, env)
	env.mustRun(t, "cache", "drop")
}

// TestWatchlistWithRedis runs the CLI with the default SQLite store and a Redis page cache.
func TestWatchlistWithRedis(t *testing.T) {
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

	env := newCLIEnv(t,
		"WATCHLIST_CACHE_BACKEND=redis",
		"WATCHLIST_REDIS_ADDR="+host+":"+port.Port(),
	)
	exerciseList(t, env)
	env.mustRun(t, "cache", "clear")
}

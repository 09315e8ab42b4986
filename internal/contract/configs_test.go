package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "empty input uses defaults",
			input: &ConfigRawInput{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
				assert.Equal(t, schema.MemoryCache, cfg.CacheBackend)
				assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
				assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
				assert.Equal(t, DefaultRateWindow, cfg.RateWindow)
				assert.Equal(t, DefaultHealthInterval, cfg.HealthInterval)
				assert.Equal(t, uint32(DefaultBreakerFailures), cfg.BreakerFailures)
				assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name: "redis cache with custom intervals",
			input: &ConfigRawInput{
				CacheBackend:   "REDIS",
				RedisAddr:      "cache:6379",
				RedisDB:        2,
				RateWindow:     "30s",
				HealthInterval: "1m",
				CORSOrigins:    "https://a.example, https://b.example",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.RedisCache, cfg.CacheBackend)
				assert.Equal(t, "cache:6379", cfg.RedisAddr)
				assert.Equal(t, 2, cfg.RedisDB)
				assert.Equal(t, 30*time.Second, cfg.RateWindow)
				assert.Equal(t, time.Minute, cfg.HealthInterval)
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
			},
		},
		{
			name:        "invalid store backend",
			input:       &ConfigRawInput{StoreBackend: "mongodb"},
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			input:       &ConfigRawInput{CacheBackend: "memcached"},
			expectError: true,
		},
		{
			name:        "mysql store without dsn",
			input:       &ConfigRawInput{StoreBackend: "mysql"},
			expectError: true,
		},
		{
			name:        "postgres cache with bad dsn",
			input:       &ConfigRawInput{CacheBackend: "postgresql", CacheDBConnect: "user=x"},
			expectError: true,
		},
		{
			name:        "sqlite store and cache on the same file",
			input:       &ConfigRawInput{StoreDBConnect: "/tmp/same.db", CacheBackend: "sqlite", CacheDBConnect: "/tmp/same.db"},
			expectError: true,
		},
		{
			name:        "bad duration",
			input:       &ConfigRawInput{RateWindow: "soon"},
			expectError: true,
		},
		{
			name:        "negative rate limit",
			input:       &ConfigRawInput{RateLimit: -1},
			expectError: true,
		},
		{
			name:        "invalid content type",
			input:       &ConfigRawInput{ContentType: "podcast"},
			expectError: true,
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{Output: "xml"},
			expectError: true,
		},
		{
			name:        "invalid log format",
			input:       &ConfigRawInput{LogFormat: "logfmt"},
			expectError: true,
		},
		{
			name:  "content type is lower-cased",
			input: &ConfigRawInput{ContentType: "TVShow", User: " u1 "},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.TVShowContent, cfg.ContentType)
				assert.Equal(t, "u1", cfg.UserID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSeparateSQLiteFiles(t *testing.T) {
	dir := t.TempDir()
	input := &ConfigRawInput{
		StoreDBConnect: filepath.Join(dir, "store.db"),
		CacheBackend:   "sqlite",
		CacheDBConnect: filepath.Join(dir, "cache.db"),
	}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.SQLiteCache, cfg.CacheBackend)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/watchlist", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/watchlist", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost user=u dbname=watchlist", false},
		{"postgres missing host", schema.PostgreSQLBackend, "user=u dbname=watchlist", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
		{"unknown", schema.DatabaseBackend("oracle"), "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

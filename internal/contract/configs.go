package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/watchlist/schema"
)

// Default values for configuration.
const (
	DefaultHTTPAddr        = ":3000"
	DefaultRateLimit       = 100
	DefaultRateWindow      = 60 * time.Second
	DefaultHealthInterval  = 5 * time.Minute
	DefaultJanitorInterval = time.Minute
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
	DefaultRedisAddr       = "localhost:6379"
)

// Config holds the validated runtime configuration.
type Config struct {
	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.CacheBackend
	CacheDBConnect string // DSN for SQL backends, directory or file path for badger and bolt

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr    string
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration

	HealthInterval  time.Duration
	JanitorInterval time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration

	LogLevel  string
	LogFormat string

	// Per-command selections.
	UserID      string
	ContentType schema.ContentType
	Page        int
	Size        int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`

	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	RedisDB       int    `mapstructure:"redis-db"`

	HTTPAddr    string `mapstructure:"http-addr"`
	CORSOrigins string `mapstructure:"cors-origins"`
	RateLimit   int    `mapstructure:"rate-limit"`
	RateWindow  string `mapstructure:"rate-window"`

	HealthInterval  string `mapstructure:"health-interval"`
	JanitorInterval string `mapstructure:"janitor-interval"`

	BreakerFailures int    `mapstructure:"breaker-failures"`
	BreakerTimeout  string `mapstructure:"breaker-timeout"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	User        string `mapstructure:"user"`
	ContentType string `mapstructure:"type"`
	Page        int    `mapstructure:"page"`
	Size        int    `mapstructure:"size"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	Width       int    `mapstructure:"width"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processServerInputs(cfg, input); err != nil {
		return err
	}
	return validateSimpleInputs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("unsupported database backend '%s'", backend)
	}
	return nil
}

// validateBackendConfigs validates store and cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("store-db-connect: %w", err)
	}

	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.CacheBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.MemoryCache
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be redis, sqlite, mysql, postgresql, badger, bolt, memory, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if cfg.CacheBackend.IsSQL() {
		if err := ValidateDatabaseConnectionString(schema.DatabaseBackend(cfg.CacheBackend), cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("cache-db-connect: %w", err)
		}
	}

	// SQLite serializes writers on a single file, so the cache must not share the store file.
	if cfg.CacheBackend == schema.SQLiteCache && cfg.StoreBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		if storePath == cachePath {
			return fmt.Errorf("store and cache must use different SQLite database files. Both resolve to %q", storePath)
		}
	}

	cfg.RedisAddr = input.RedisAddr
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = DefaultRedisAddr
	}
	cfg.RedisPassword = input.RedisPassword
	if input.RedisDB < 0 {
		return fmt.Errorf("redis-db must not be negative (received %d)", input.RedisDB)
	}
	cfg.RedisDB = input.RedisDB

	if input.BreakerFailures < 0 {
		return fmt.Errorf("breaker-failures must not be negative (received %d)", input.BreakerFailures)
	}
	cfg.BreakerFailures = uint32(input.BreakerFailures)
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultBreakerFailures
	}
	timeout, err := parseDurationOr(input.BreakerTimeout, DefaultBreakerTimeout, "breaker-timeout")
	if err != nil {
		return err
	}
	cfg.BreakerTimeout = timeout

	return nil
}

// processServerInputs handles HTTP, rate limiting and background intervals.
func processServerInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.HTTPAddr = strings.TrimSpace(input.HTTPAddr)
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}

	cfg.CORSOrigins = nil
	for origin := range strings.SplitSeq(input.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
		}
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if input.RateLimit < 0 {
		return fmt.Errorf("rate-limit must not be negative (received %d)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	var err error
	if cfg.RateWindow, err = parseDurationOr(input.RateWindow, DefaultRateWindow, "rate-window"); err != nil {
		return err
	}
	if cfg.HealthInterval, err = parseDurationOr(input.HealthInterval, DefaultHealthInterval, "health-interval"); err != nil {
		return err
	}
	if cfg.JanitorInterval, err = parseDurationOr(input.JanitorInterval, DefaultJanitorInterval, "janitor-interval"); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates the per-command fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(input.LogFormat))
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "json"
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format '%s'. must be json, console", input.LogFormat)
	}

	cfg.UserID = strings.TrimSpace(input.User)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Page = input.Page
	cfg.Size = input.Size

	if input.ContentType != "" {
		kind, ok := schema.ParseContentType(strings.ToLower(input.ContentType))
		if !ok {
			return fmt.Errorf("invalid content type '%s'. must be movie, tvshow", input.ContentType)
		}
		cfg.ContentType = kind
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	return nil
}

func parseDurationOr(raw string, fallback time.Duration, name string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (received %s)", name, raw)
	}
	return d, nil
}

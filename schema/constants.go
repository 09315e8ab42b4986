package schema

// Custom string types for type safety.
type (
	// ContentType is the kind of catalog content a list entry points to.
	ContentType string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the SQL backend for the list store and catalog.
	DatabaseBackend string

	// CacheBackend represents the backend holding cached list pages.
	CacheBackend string

	// HealthState is the overall state reported by a health check.
	HealthState string
)

// All content types supported.
const (
	MovieContent  ContentType = "movie"
	TVShowContent ContentType = "tvshow"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All cache backends supported. The SQL cache backends share their names with DatabaseBackend.
const (
	RedisCache      CacheBackend = "redis"
	SQLiteCache     CacheBackend = "sqlite"
	MySQLCache      CacheBackend = "mysql"
	PostgreSQLCache CacheBackend = "postgresql"
	BadgerCache     CacheBackend = "badger"
	BoltCache       CacheBackend = "bolt"
	MemoryCache     CacheBackend = "memory" // default
	NoneCache       CacheBackend = "none"
)

// Health states.
const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"
)

// Connection labels used in health reports.
const (
	Connected    = "connected"
	Disconnected = "disconnected"
	Disabled     = "disabled"
)

// ValidContentTypes lists all valid content types.
var ValidContentTypes = map[ContentType]struct{}{
	MovieContent:  {},
	TVShowContent: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[CacheBackend]struct{}{
	RedisCache:      {},
	SQLiteCache:     {},
	MySQLCache:      {},
	PostgreSQLCache: {},
	BadgerCache:     {},
	BoltCache:       {},
	MemoryCache:     {},
	NoneCache:       {},
}

// ParseContentType converts a raw string into a ContentType.
func ParseContentType(raw string) (ContentType, bool) {
	ct := ContentType(raw)
	_, ok := ValidContentTypes[ct]
	return ct, ok
}

// IsSQL reports whether the cache backend is one of the SQL table backends.
func (b CacheBackend) IsSQL() bool {
	switch b {
	case SQLiteCache, MySQLCache, PostgreSQLCache:
		return true
	}
	return false
}

// Label returns the display name of the content type.
func (c ContentType) Label() string {
	switch c {
	case MovieContent:
		return "Movie"
	case TVShowContent:
		return "TV Show"
	default:
		return string(c)
	}
}

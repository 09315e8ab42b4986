package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	var out bytes.Buffer
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 2")

	version, dirty, err := SchemaVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "already at the latest version")

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 1, &out))
	version, _, err = SchemaVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 0, &out))
	assert.Contains(t, out.String(), "rolled back")
}

func TestMigrateUnsupportedBackend(t *testing.T) {
	err := Migrate(schema.DatabaseBackend("oracle"), "", -1, &bytes.Buffer{})
	assert.Error(t, err)
}

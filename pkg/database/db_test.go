package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "albums.db")}

	db, err := OpenAndMigrate(cfg)
	require.NoError(t, err)
	defer db.Close()

	// schema is idempotent
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM albums`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("ALBUMS_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DefaultConfig().Path)
}

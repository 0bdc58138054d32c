package migrations_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/storage/sqlite/migrations"
)

func TestMigratorUpDown(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrations.NewMigrator(db, log.Noop)
	require.NoError(err)

	v, err := m.Version()
	require.NoError(err)
	assert.Equal(uint(0), v)

	require.NoError(m.Up())
	// Applying twice is a no-op.
	require.NoError(m.Up())
	v, err = m.Version()
	require.NoError(err)
	assert.Equal(uint(1), v)

	var tables int
	require.NoError(db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'records'`).Scan(&tables))
	assert.Equal(1, tables)

	require.NoError(m.Down())
	require.NoError(db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'records'`).Scan(&tables))
	assert.Equal(0, tables)
}

func TestNewMigratorRequiresDB(t *testing.T) {
	_, err := migrations.NewMigrator(nil, nil)
	assert.Error(t, err)
}

package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormDB_SQLiteAndMigrate(t *testing.T) {
	db, err := NewGormDB(GormConfig{
		DSN:          "sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, MigrateLibrary(db))

	for _, table := range []string{"sources", "notes", "library_references", "analyses", "drafts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestDialector(t *testing.T) {
	assert.Equal(t, "sqlite", dialector("sqlite://lib.db").Name())
	assert.Equal(t, "postgres", dialector("host=localhost user=lib").Name())
}

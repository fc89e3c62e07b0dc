package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"research-library-be/internal/model"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/internal/repository/local"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/pkg/database"
	"research-library-be/pkg/library"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type changeLog struct {
	mu      sync.Mutex
	changes []library.Change
}

func (l *changeLog) Notify(_ context.Context, c library.Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) all() []library.Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]library.Change(nil), l.changes...)
}

type libraryFixture struct {
	lib        *library.Library
	local      unitofwork.RepositoryFactory
	persistent unitofwork.RepositoryFactory
	changes    *changeLog
}

// newLibraryFixture wires a library over an in-memory guest store and a
// sqlite stand-in for the hosted database.
func newLibraryFixture(t *testing.T) *libraryFixture {
	t.Helper()

	kv, err := database.OpenBadger(database.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.LibraryModels()...))

	f := &libraryFixture{
		local:      local.NewRepositoryFactory(kv),
		persistent: unitofwork.NewRepositoryFactory(db),
		changes:    &changeLog{},
	}
	f.lib = library.New(
		library.Backends{Persistent: f.persistent, Local: f.local},
		library.NewCache(time.Minute, time.Minute),
		library.Options{
			Logger:   logger.NewNopLogger(),
			Notifier: f.changes,
			Validate: serverutils.ValidateRequest,
		},
	)
	return f
}

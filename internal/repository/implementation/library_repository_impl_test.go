package implementation

import (
	"context"
	"testing"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/model"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.LibraryModels()...))
	return db
}

func newNote(owner uuid.UUID, sourceId *uuid.UUID, content string, at time.Time) *entity.Note {
	n := &entity.Note{
		Record: entity.Record{
			Id:        uuid.New(),
			UserId:    owner,
			Metadata:  map[string]interface{}{},
			CreatedAt: at,
			UpdatedAt: at,
		},
		Content:  content,
		SourceId: sourceId,
	}
	n.Normalize()
	return n
}

func TestLibraryRepository_UpsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))
	owner := uuid.New()
	source := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := newNote(owner, &source, "first", base)
	newer := newNote(owner, nil, "second", base.Add(time.Minute))
	other := newNote(uuid.New(), &source, "not mine", base)

	for _, n := range []*entity.Note{older, newer, other} {
		require.NoError(t, repo.Upsert(ctx, n))
	}

	all, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.Id, all[0].Id, "most recently updated first")
	assert.Equal(t, older.Id, all[1].Id)

	bySource, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: owner},
		specification.BySourceID{SourceID: source},
	)
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, older.Id, bySource[0].Id)

	found, err := repo.FindOne(ctx, specification.ByID{ID: older.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "first", found.Content)
	assert.True(t, found.CreatedAt.Equal(base))

	missing, err := repo.FindOne(ctx, specification.ByID{ID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLibraryRepository_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(newTestDB(t))
	owner := uuid.New()
	now := time.Now().UTC().Truncate(time.Millisecond)

	draft := &entity.Draft{
		Record:  entity.Record{Id: uuid.New(), UserId: owner, CreatedAt: now, UpdatedAt: now},
		Title:   "Chapter 1",
		Content: "one two three",
	}
	draft.Normalize()
	require.NoError(t, repo.Upsert(ctx, draft))

	draft.Content = "one two three four"
	draft.Status = "review"
	draft.UpdatedAt = now.Add(time.Second)
	draft.Normalize()
	require.NoError(t, repo.Upsert(ctx, draft))

	count, err := repo.Count(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: draft.Id})
	require.NoError(t, err)
	assert.Equal(t, "review", stored.Status)
	assert.Equal(t, 4, stored.WordCount)
	assert.True(t, stored.CreatedAt.Equal(now))
	assert.True(t, stored.UpdatedAt.Equal(now.Add(time.Second)))
}

func TestLibraryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))
	owner := uuid.New()
	n := newNote(owner, nil, "bye", time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, n))

	assert.ErrorIs(t, repo.Delete(ctx), contract.ErrUnscopedDelete)

	require.NoError(t, repo.Delete(ctx, specification.ByID{ID: n.Id}, specification.UserOwnedBy{UserID: owner}))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLibraryRepository_JSONColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewSourceRepository(newTestDB(t))
	now := time.Now().UTC()

	src := &entity.Source{
		Record: entity.Record{
			Id:        uuid.New(),
			UserId:    uuid.New(),
			Metadata:  map[string]interface{}{"site_name": "Example"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:   "Paper",
		Authors: []string{"Ada", "Grace"},
	}
	src.Normalize()
	require.NoError(t, repo.Upsert(ctx, src))

	stored, err := repo.FindOne(ctx, specification.ByID{ID: src.Id})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Grace"}, stored.Authors)
	assert.Equal(t, "Example", stored.Metadata["site_name"])
	assert.Equal(t, "web", stored.SourceType)
}

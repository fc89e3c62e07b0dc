package local

import (
	"context"
	"testing"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/specification"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/pkg/database"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *badger.DB {
	t.Helper()
	db, err := database.OpenBadger(database.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func note(owner uuid.UUID, sourceId *uuid.UUID, content string, at time.Time) *entity.Note {
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

func TestGuestStore_OwnerIsolationAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(openStore(t), nil)
	guestA, guestB := uuid.New(), uuid.New()
	base := time.Now().UTC()

	first := note(guestA, nil, "first", base)
	second := note(guestA, nil, "second", base.Add(time.Minute))
	foreign := note(guestB, nil, "someone else", base.Add(time.Hour))
	for _, n := range []*entity.Note{first, second, foreign} {
		require.NoError(t, repo.Upsert(ctx, n))
	}

	mine, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: guestA})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.Id, mine[0].Id)
	assert.Equal(t, first.Id, mine[1].Id)

	theirs, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: guestB})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "someone else", theirs[0].Content)

	all, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)
}

func TestGuestStore_FindOneByID(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(openStore(t), nil)
	owner := uuid.New()
	n := note(owner, nil, "hello", time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, n))

	found, err := repo.FindOne(ctx, specification.ByID{ID: n.Id}, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "hello", found.Content)
	assert.Equal(t, []string{}, found.Tags)

	wrongOwner, err := repo.FindOne(ctx, specification.ByID{ID: n.Id}, specification.UserOwnedBy{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, wrongOwner)

	missing, err := repo.FindOne(ctx, specification.ByID{ID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGuestStore_BySource(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(openStore(t), nil)
	owner, source := uuid.New(), uuid.New()
	now := time.Now().UTC()

	linked := note(owner, &source, "linked", now)
	loose := note(owner, nil, "loose", now)
	require.NoError(t, repo.Upsert(ctx, linked))
	require.NoError(t, repo.Upsert(ctx, loose))

	notes, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: owner}, specification.BySourceID{SourceID: source})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, linked.Id, notes[0].Id)
	require.NotNil(t, notes[0].SourceId)
	assert.Equal(t, source, *notes[0].SourceId)
}

func TestGuestStore_UpsertMovesOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewSourceRepository(openStore(t), nil)
	guest, user := uuid.New(), uuid.New()

	src := &entity.Source{
		Record: entity.Record{Id: uuid.New(), UserId: guest, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()},
		Title:  "Moved",
	}
	src.Normalize()
	require.NoError(t, repo.Upsert(ctx, src))

	src.UserId = user
	require.NoError(t, repo.Upsert(ctx, src))

	guestItems, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: guest})
	require.NoError(t, err)
	assert.Empty(t, guestItems)

	userItems, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: user})
	require.NoError(t, err)
	require.Len(t, userItems, 1)
	assert.Equal(t, src.Id, userItems[0].Id)
}

func TestGuestStore_DeleteAndPaginate(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(openStore(t), nil)
	owner := uuid.New()
	base := time.Now().UTC()

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		d := &entity.Draft{
			Record:  entity.Record{Id: uuid.New(), UserId: owner, CreatedAt: base, UpdatedAt: base.Add(time.Duration(i) * time.Second)},
			Title:   "draft",
			Content: "words here",
		}
		d.Normalize()
		require.NoError(t, repo.Upsert(ctx, d))
		ids = append(ids, d.Id)
	}

	assert.ErrorIs(t, repo.Delete(ctx), contract.ErrUnscopedDelete)

	page, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: owner}, specification.Pagination{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].Id)
	assert.Equal(t, ids[1], page[1].Id)

	require.NoError(t, repo.Delete(ctx, specification.ByID{ID: ids[3]}))
	left, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	require.Len(t, left, 3)
	assert.Equal(t, ids[2], left[0].Id)
	assert.Equal(t, 2, left[0].WordCount)

	byTitle, err := repo.FindAll(ctx, specification.Filter("title", "draft"), specification.OrderBy{Field: "updated_at"})
	require.NoError(t, err)
	require.Len(t, byTitle, 3)
	assert.Equal(t, ids[0], byTitle[0].Id)
}

func TestGuestStore_UnitOfWork(t *testing.T) {
	ctx := context.Background()
	db := openStore(t)
	owner := uuid.New()

	uow := NewRepositoryFactory(db).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.NoteRepository().Upsert(ctx, note(owner, nil, "rolled back", time.Now().UTC())))

	inside, err := uow.NoteRepository().Count(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inside)
	require.NoError(t, uow.Rollback())

	outside, err := NewNoteRepository(db, nil).Count(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	assert.Zero(t, outside)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.NoteRepository().Upsert(ctx, note(owner, nil, "kept", time.Now().UTC())))
	require.NoError(t, uow.Commit())

	committed, err := NewNoteRepository(db, nil).Count(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), committed)

	assert.NoError(t, uow.Rollback())
	assert.ErrorIs(t, uow.Commit(), unitofwork.ErrTxInactive)
	require.NoError(t, uow.Begin(ctx))
	assert.ErrorIs(t, uow.Begin(ctx), unitofwork.ErrTxActive)
	require.NoError(t, uow.Rollback())
}

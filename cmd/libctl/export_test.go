package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/local"
	"research-library-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with fresh flag state.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	exportUser, exportGuest, exportOut = "", "", "export"
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return rootCmd.Execute()
}

func TestExport_RequiresExactlyOneOwner(t *testing.T) {
	id := uuid.NewString()

	err := runCLI(t, "export", "--user", id, "--guest", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --user or --guest")

	err = runCLI(t, "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --user or --guest")
}

func TestExport_InvalidGuestId(t *testing.T) {
	t.Setenv("LIBRARY_LOCAL_STORE_PATH", t.TempDir())

	err := runCLI(t, "export", "--guest", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --guest")
}

func TestExport_GuestLibraryFromBadger(t *testing.T) {
	storePath := t.TempDir()
	out := filepath.Join(t.TempDir(), "backup")
	guest := uuid.New()

	kv, err := database.OpenBadger(database.BadgerConfig{Path: storePath})
	require.NoError(t, err)
	ctx := context.Background()
	uow := local.NewRepositoryFactory(kv).NewUnitOfWork(ctx)
	now := time.Now().UTC()

	note := &entity.Note{Record: entity.Record{Id: uuid.New(), UserId: guest, CreatedAt: now, UpdatedAt: now}, Title: "Field Notes", Content: "plain"}
	note.Normalize()
	require.NoError(t, uow.NoteRepository().Upsert(ctx, note))

	stranger := &entity.Note{Record: entity.Record{Id: uuid.New(), UserId: uuid.New(), CreatedAt: now, UpdatedAt: now}, Title: "Someone else"}
	stranger.Normalize()
	require.NoError(t, uow.NoteRepository().Upsert(ctx, stranger))
	require.NoError(t, kv.Close())

	t.Setenv("LIBRARY_LOCAL_STORE_PATH", storePath)
	require.NoError(t, runCLI(t, "export", "--guest", guest.String(), "--out", out))

	files, err := os.ReadDir(filepath.Join(out, string(entity.KindNote)))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), "field-notes-"))

	body, err := os.ReadFile(filepath.Join(out, string(entity.KindNote), files[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(body), "title: Field Notes")
}

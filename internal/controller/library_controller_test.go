package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"research-library-be/internal/dto"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/internal/repository/local"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/internal/service"
	"research-library-be/pkg/database"
	"research-library-be/pkg/library"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeImport struct {
	userId, guestId uuid.UUID
}

func (f *fakeImport) ImportGuestLibrary(_ context.Context, userId, guestId uuid.UUID) (*dto.ImportResponse, error) {
	f.userId, f.guestId = userId, guestId
	return &dto.ImportResponse{Imported: map[string]int{"notes": 2}, Skipped: map[string]int{}}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *library.Library, *fakeImport) {
	t.Helper()

	open := func() unitofwork.RepositoryFactory {
		kv, err := database.OpenBadger(database.BadgerConfig{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = kv.Close() })
		return local.NewRepositoryFactory(kv)
	}

	lib := library.New(
		library.Backends{Persistent: open(), Local: open()},
		library.NewCache(time.Minute, time.Minute),
		library.Options{Validate: serverutils.ValidateRequest},
	)
	imp := &fakeImport{}

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewLibraryController(testSecret, lib, imp, nil).RegisterRoutes(app.Group("/api"))
	return app, lib, imp
}

func userToken(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestLibraryController_GuestCRUD(t *testing.T) {
	app, _, _ := newTestApp(t)
	guest := map[string]string{serverutils.GuestHeader: uuid.NewString()}

	status, env := call(t, app, http.MethodPost, "/api/library/v1/drafts", map[string]interface{}{
		"title":   "Chapter 1",
		"content": "it was a dark night",
	}, guest)
	require.Equal(t, http.StatusCreated, status, env.Message)

	var draft struct {
		Id        uuid.UUID `json:"id"`
		Status    string    `json:"status"`
		WordCount int       `json:"word_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.NotEqual(t, uuid.Nil, draft.Id)
	assert.Equal(t, "draft", draft.Status)
	assert.Equal(t, 5, draft.WordCount)

	status, env = call(t, app, http.MethodGet, "/api/library/v1/drafts", nil, guest)
	require.Equal(t, http.StatusOK, status)
	var list dto.ListResponse[map[string]interface{}]
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Count)

	status, env = call(t, app, http.MethodPatch, "/api/library/v1/drafts/"+draft.Id.String(), map[string]interface{}{"status": "review"}, guest)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), `"status":"review"`)

	status, _ = call(t, app, http.MethodPatch, "/api/library/v1/drafts/"+draft.Id.String(), map[string]interface{}{"created_at": "2020-01-01T00:00:00Z"}, guest)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPatch, "/api/library/v1/drafts/"+draft.Id.String(), map[string]interface{}{"colour": "red"}, guest)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodDelete, "/api/library/v1/drafts/"+draft.Id.String(), nil, guest)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/library/v1/drafts/"+draft.Id.String(), nil, guest)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, app, http.MethodDelete, "/api/library/v1/drafts/"+draft.Id.String(), nil, guest)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, app, http.MethodPatch, "/api/library/v1/drafts/"+uuid.NewString(), map[string]interface{}{"title": "x"}, guest)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLibraryController_ValidationAndIds(t *testing.T) {
	app, _, _ := newTestApp(t)
	guest := map[string]string{serverutils.GuestHeader: uuid.NewString()}

	status, env := call(t, app, http.MethodPost, "/api/library/v1/sources", map[string]interface{}{"url": "nope"}, guest)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(env.Data), "title")

	status, _ = call(t, app, http.MethodGet, "/api/library/v1/sources/not-a-uuid", nil, guest)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLibraryController_Auth(t *testing.T) {
	app, lib, _ := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/api/library/v1/notes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// A bad token is never treated as a guest.
	status, _ = call(t, app, http.MethodGet, "/api/library/v1/notes", nil, map[string]string{
		"Authorization":         "Bearer garbage",
		serverutils.GuestHeader: uuid.NewString(),
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	userId := uuid.New()
	auth := map[string]string{"Authorization": "Bearer " + userToken(t, userId)}
	status, _ = call(t, app, http.MethodPost, "/api/library/v1/notes", map[string]interface{}{"content": "mine"}, auth)
	require.Equal(t, http.StatusCreated, status)

	notes, err := lib.Notes.List(context.Background(), library.Persistent(userId))
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestLibraryController_NotesBySource(t *testing.T) {
	app, _, _ := newTestApp(t)
	guest := map[string]string{serverutils.GuestHeader: uuid.NewString()}

	_, env := call(t, app, http.MethodPost, "/api/library/v1/sources", map[string]interface{}{"title": "Paper"}, guest)
	var src struct {
		Id uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &src))

	status, _ := call(t, app, http.MethodPost, "/api/library/v1/notes", map[string]interface{}{"content": "linked", "source_id": src.Id}, guest)
	require.Equal(t, http.StatusCreated, status)
	status, _ = call(t, app, http.MethodPost, "/api/library/v1/notes", map[string]interface{}{"content": "loose"}, guest)
	require.Equal(t, http.StatusCreated, status)

	status, env = call(t, app, http.MethodGet, "/api/library/v1/sources/"+src.Id.String()+"/notes", nil, guest)
	require.Equal(t, http.StatusOK, status)
	var list dto.ListResponse[map[string]interface{}]
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "linked", list.Items[0]["content"])
}

func TestLibraryController_Import(t *testing.T) {
	app, _, imp := newTestApp(t)
	guestId, userId := uuid.New(), uuid.New()

	status, _ := call(t, app, http.MethodPost, "/api/library/v1/import", nil, map[string]string{serverutils.GuestHeader: guestId.String()})
	assert.Equal(t, http.StatusUnauthorized, status, "guests cannot import")

	auth := map[string]string{"Authorization": "Bearer " + userToken(t, userId)}
	status, _ = call(t, app, http.MethodPost, "/api/library/v1/import", nil, auth)
	assert.Equal(t, http.StatusBadRequest, status)

	auth[serverutils.GuestHeader] = guestId.String()
	status, env := call(t, app, http.MethodPost, "/api/library/v1/import", nil, auth)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, userId, imp.userId)
	assert.Equal(t, guestId, imp.guestId)
	assert.Contains(t, string(env.Data), `"notes":2`)
}

func TestLibraryController_ImportWithoutDatabase(t *testing.T) {
	kv, err := database.OpenBadger(database.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	guestStore := local.NewRepositoryFactory(kv)

	lib := library.New(
		library.Backends{Local: guestStore},
		library.NewCache(time.Minute, time.Minute),
		library.Options{Validate: serverutils.ValidateRequest},
	)
	imp := service.NewImportService(guestStore, nil, lib, nil, logger.NewNopLogger())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewLibraryController(testSecret, lib, imp, nil).RegisterRoutes(app.Group("/api"))

	status, env := call(t, app, http.MethodPost, "/api/library/v1/import", nil, map[string]string{
		"Authorization":         "Bearer " + userToken(t, uuid.New()),
		serverutils.GuestHeader: uuid.NewString(),
	})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, env.Success)
}

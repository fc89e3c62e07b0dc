package handler

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedSecret = "feed-secret"

func newScopeApp() *fiber.App {
	h := NewLibraryFeedHandler(nil, feedSecret, logger.NewNopLogger())
	app := fiber.New()
	app.Get("/scope", func(c *fiber.Ctx) error {
		scope, err := h.resolveScope(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(scope.String())
	})
	return app
}

func resolve(t *testing.T, app *fiber.App, target string, headers map[string]string) (int, string) {
	t.Helper()
	r := httptest.NewRequest("GET", target, nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	resp, err := app.Test(r)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestResolveScope(t *testing.T) {
	app := newScopeApp()
	userId := uuid.New()
	guestId := uuid.New()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(feedSecret))
	require.NoError(t, err)

	t.Run("lowercase scheme with padding", func(t *testing.T) {
		code, body := resolve(t, app, "/scope", map[string]string{"Authorization": "bearer   " + token + "  "})
		assert.Equal(t, 200, code)
		assert.Equal(t, "persistent:"+userId.String(), body)
	})

	t.Run("token query param", func(t *testing.T) {
		code, body := resolve(t, app, "/scope?token="+token, nil)
		assert.Equal(t, 200, code)
		assert.Equal(t, "persistent:"+userId.String(), body)
	})

	t.Run("guest query param", func(t *testing.T) {
		code, body := resolve(t, app, "/scope?guest_id="+guestId.String(), nil)
		assert.Equal(t, 200, code)
		assert.Equal(t, "local:"+guestId.String(), body)
	})

	t.Run("guest header", func(t *testing.T) {
		code, body := resolve(t, app, "/scope", map[string]string{serverutils.GuestHeader: guestId.String()})
		assert.Equal(t, 200, code)
		assert.Equal(t, "local:"+guestId.String(), body)
	})

	t.Run("non-bearer scheme is not downgraded to guest", func(t *testing.T) {
		code, _ := resolve(t, app, "/scope", map[string]string{
			"Authorization":         "Basic " + token,
			serverutils.GuestHeader: guestId.String(),
		})
		assert.Equal(t, 401, code)
	})

	t.Run("nothing supplied", func(t *testing.T) {
		code, _ := resolve(t, app, "/scope", nil)
		assert.Equal(t, 401, code)
	})
}

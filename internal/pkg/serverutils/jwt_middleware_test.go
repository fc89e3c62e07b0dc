package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newScopeApp() *fiber.App {
	app := fiber.New()
	app.Use(LibraryAuthMiddleware(testSecret))
	app.Get("/whoami", func(ctx *fiber.Ctx) error {
		if id, ok := UserID(ctx); ok {
			return ctx.SendString("user:" + id.String())
		}
		if id, ok := GuestID(ctx); ok {
			return ctx.SendString("guest:" + id.String())
		}
		return ctx.SendStatus(fiber.StatusTeapot)
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, headers map[string]string) (int, string) {
	t.Helper()
	r := httptest.NewRequest("GET", "/whoami", nil)
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

func TestLibraryAuthMiddleware(t *testing.T) {
	app := newScopeApp()
	userId := uuid.New()
	guestId := uuid.New()

	valid := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	t.Run("valid token resolves user", func(t *testing.T) {
		code, body := whoami(t, app, map[string]string{"Authorization": "Bearer " + valid})
		assert.Equal(t, 200, code)
		assert.Equal(t, "user:"+userId.String(), body)
	})

	t.Run("guest header resolves guest", func(t *testing.T) {
		code, body := whoami(t, app, map[string]string{GuestHeader: guestId.String()})
		assert.Equal(t, 200, code)
		assert.Equal(t, "guest:"+guestId.String(), body)
	})

	t.Run("bad token is not downgraded to guest", func(t *testing.T) {
		wrong := signToken(t, "other-secret", jwt.MapClaims{"user_id": userId.String()})
		code, _ := whoami(t, app, map[string]string{
			"Authorization": "Bearer " + wrong,
			GuestHeader:     guestId.String(),
		})
		assert.Equal(t, 401, code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := signToken(t, testSecret, jwt.MapClaims{
			"user_id": userId.String(),
			"exp":     time.Now().Add(-time.Minute).Unix(),
		})
		code, _ := whoami(t, app, map[string]string{"Authorization": "Bearer " + expired})
		assert.Equal(t, 401, code)
	})

	t.Run("nothing supplied", func(t *testing.T) {
		code, _ := whoami(t, app, nil)
		assert.Equal(t, 401, code)
	})

	t.Run("malformed guest id", func(t *testing.T) {
		code, _ := whoami(t, app, map[string]string{GuestHeader: "not-a-uuid"})
		assert.Equal(t, 401, code)
	})
}

func TestParseUserToken_Claims(t *testing.T) {
	_, err := ParseUserToken(testSecret, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	noUser := signToken(t, testSecret, jwt.MapClaims{"sub": "x"})
	_, err = ParseUserToken(testSecret, noUser)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	badUUID := signToken(t, testSecret, jwt.MapClaims{"user_id": "abc"})
	_, err = ParseUserToken(testSecret, badUUID)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		token   string
		present bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER   abc  ", "abc", true},
		{"Basic abc", "", true},
		{"Bear", "", true},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(ctx *fiber.Ctx) error {
			token, present := BearerToken(ctx)
			assert.Equal(t, tc.token, token, tc.header)
			assert.Equal(t, tc.present, present, tc.header)
			return nil
		})
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		_, err := app.Test(r)
		require.NoError(t, err)
	}
}

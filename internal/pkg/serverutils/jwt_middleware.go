// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalUserID  = "user_id"
	LocalGuestID = "guest_id"

	GuestHeader = "X-Guest-Id"
)

var (
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// ParseUserToken validates an HS256 token and returns its user_id claim.
func ParseUserToken(secret, tokenStr string) (uuid.UUID, error) {
	if tokenStr == "" {
		return uuid.Nil, ErrMissingToken
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidClaims
	}
	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidClaims
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return userId, nil
}

// BearerToken extracts the token from the Authorization header. present
// reports whether the header was sent at all; a non-bearer scheme yields
// an empty token.
func BearerToken(ctx *fiber.Ctx) (string, bool) {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return "", true
	}
	return strings.TrimSpace(authHeader[7:]), true
}

// JwtMiddleware requires a valid bearer token.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr, present := BearerToken(ctx)
		if !present || tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		userId, err := ParseUserToken(secret, tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(LocalUserID, userId.String())
		return ctx.Next()
	}
}

// LibraryAuthMiddleware lets a request through either as a user (valid bearer
// token) or as a guest (X-Guest-Id). A bad token is rejected, never downgraded.
func LibraryAuthMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if tokenStr, present := BearerToken(ctx); present {
			userId, err := ParseUserToken(secret, tokenStr)
			if err != nil {
				return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
			}
			ctx.Locals(LocalUserID, userId.String())
			return ctx.Next()
		}

		guestId, err := uuid.Parse(ctx.Get(GuestHeader))
		if err != nil || guestId == uuid.Nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token or guest id"))
		}
		ctx.Locals(LocalGuestID, guestId.String())
		return ctx.Next()
	}
}

// UserID reads the authenticated user set by JwtMiddleware / LibraryAuthMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	return localUUID(ctx, LocalUserID)
}

// GuestID reads the guest id set by LibraryAuthMiddleware.
func GuestID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	return localUUID(ctx, LocalGuestID)
}

func localUUID(ctx *fiber.Ctx, key string) (uuid.UUID, bool) {
	raw, ok := ctx.Locals(key).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

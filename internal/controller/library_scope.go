package controller

import (
	"errors"
	"net/http"

	"research-library-be/internal/pkg/serverutils"
	"research-library-be/pkg/library"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// scopeOf picks the library the request works on: the user's when
// authenticated, the guest's otherwise.
func scopeOf(ctx *fiber.Ctx) (library.Scope, error) {
	if userId, ok := serverutils.UserID(ctx); ok {
		return library.Persistent(userId), nil
	}
	if guestId, ok := serverutils.GuestID(ctx); ok {
		return library.Local(guestId), nil
	}
	return library.Scope{}, serverutils.Unauthorized("Missing token or guest id")
}

func idParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.BadRequest("Invalid " + name)
	}
	return id, nil
}

// libraryError maps provider errors onto HTTP statuses.
func libraryError(err error) error {
	switch {
	case errors.Is(err, library.ErrProtectedField),
		errors.Is(err, library.ErrUnknownField),
		errors.Is(err, library.ErrInvalidPatch):
		return serverutils.WrapAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, library.ErrForeignItem):
		return serverutils.WrapAppError(http.StatusConflict, "Id is already in use", err)
	case errors.Is(err, library.ErrModeUnavailable):
		return serverutils.WrapAppError(http.StatusServiceUnavailable, "Library storage is unavailable", err)
	default:
		return err
	}
}

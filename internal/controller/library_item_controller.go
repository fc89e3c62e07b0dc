package controller

import (
	"fmt"

	"research-library-be/internal/dto"
	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/pkg/library"

	"github.com/gofiber/fiber/v2"
)

// itemController serves the CRUD routes of one library kind.
type itemController[T entity.LibraryItem] struct {
	provider *library.Provider[T]
	newItem  func() T
	label    string
}

func newItemController[T entity.LibraryItem](p *library.Provider[T], newItem func() T, label string) *itemController[T] {
	return &itemController[T]{provider: p, newItem: newItem, label: label}
}

func (c *itemController[T]) register(r fiber.Router) {
	h := r.Group("/" + string(c.provider.Kind()))
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Patch(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *itemController[T]) List(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	items, err := c.provider.List(ctx.UserContext(), scope)
	if err != nil {
		return libraryError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Success list %ss", c.label), dto.NewListResponse(items)))
}

func (c *itemController[T]) Create(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	item := c.newItem()
	if err := ctx.BodyParser(item); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}

	saved, err := c.provider.Save(ctx.UserContext(), scope, item)
	if err != nil {
		return libraryError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse(fmt.Sprintf("Success save %s", c.label), saved))
}

func (c *itemController[T]) Show(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	item, err := c.provider.Get(ctx.UserContext(), scope, id)
	if err != nil {
		return libraryError(err)
	}
	if missing(item) {
		return serverutils.NotFound(fmt.Sprintf("%s not found", c.label))
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Success show %s", c.label), item))
}

func (c *itemController[T]) Update(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	var patch map[string]interface{}
	if err := ctx.BodyParser(&patch); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if len(patch) == 0 {
		return serverutils.BadRequest("Nothing to update")
	}

	item, err := c.provider.Update(ctx.UserContext(), scope, id, patch)
	if err != nil {
		return libraryError(err)
	}
	if missing(item) {
		return serverutils.NotFound(fmt.Sprintf("%s not found", c.label))
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Success update %s", c.label), item))
}

func (c *itemController[T]) Delete(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	found, err := c.provider.Delete(ctx.UserContext(), scope, id)
	if err != nil {
		return libraryError(err)
	}
	if !found {
		return serverutils.NotFound(fmt.Sprintf("%s not found", c.label))
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Success delete %s", c.label), dto.DeleteResponse{Id: id}))
}

// bySource lists the kind's items linked to the source in :id.
func (c *itemController[T]) bySource(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}
	sourceId, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	items, err := c.provider.ListBySource(ctx.UserContext(), scope, sourceId)
	if err != nil {
		return libraryError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Success list %ss of source", c.label), dto.NewListResponse(items)))
}

func missing[T entity.LibraryItem](item T) bool {
	var zero T
	return any(item) == any(zero)
}

package controller

import (
	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/internal/service"
	"research-library-be/pkg/library"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ILibraryController interface {
	RegisterRoutes(r fiber.Router)
	Import(ctx *fiber.Ctx) error
}

type libraryController struct {
	jwtSecret     string
	importService service.IImportService

	sources    *itemController[*entity.Source]
	notes      *itemController[*entity.Note]
	references *itemController[*entity.Reference]
	analyses   *itemController[*entity.Analysis]
	drafts     *itemController[*entity.Draft]

	// feed serves GET /ws; it does its own authentication.
	feed fiber.Handler
}

func NewLibraryController(jwtSecret string, lib *library.Library, importService service.IImportService, feed fiber.Handler) ILibraryController {
	return &libraryController{
		jwtSecret:     jwtSecret,
		importService: importService,
		sources:       newItemController(lib.Sources, entity.NewSource, "source"),
		notes:         newItemController(lib.Notes, entity.NewNote, "note"),
		references:    newItemController(lib.References, entity.NewReference, "reference"),
		analyses:      newItemController(lib.Analyses, entity.NewAnalysis, "analysis"),
		drafts:        newItemController(lib.Drafts, entity.NewDraft, "draft"),
		feed:          feed,
	}
}

func (c *libraryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/library/v1")
	if c.feed != nil {
		h.Get("/ws", c.feed)
	}

	h.Use(serverutils.LibraryAuthMiddleware(c.jwtSecret))
	h.Post("/import", c.Import)
	h.Get("/sources/:id/notes", c.notes.bySource)
	h.Get("/sources/:id/references", c.references.bySource)

	c.sources.register(h)
	c.notes.register(h)
	c.references.register(h)
	c.analyses.register(h)
	c.drafts.register(h)
}

// Import moves the guest library named by X-Guest-Id into the signed-in
// user's library.
func (c *libraryController) Import(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return serverutils.Unauthorized("Sign in to import a guest library")
	}
	guestId, err := uuid.Parse(ctx.Get(serverutils.GuestHeader))
	if err != nil || guestId == uuid.Nil {
		return serverutils.BadRequest("Missing or invalid " + serverutils.GuestHeader + " header")
	}

	res, err := c.importService.ImportGuestLibrary(ctx.UserContext(), userId, guestId)
	if err != nil {
		return libraryError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success import guest library", res))
}

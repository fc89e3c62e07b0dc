package controller

import (
	"research-library-be/internal/dto"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INarrativeController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type narrativeController struct {
	jwtSecret        string
	narrativeService service.INarrativeService
}

func NewNarrativeController(jwtSecret string, narrativeService service.INarrativeService) INarrativeController {
	return &narrativeController{
		jwtSecret:        jwtSecret,
		narrativeService: narrativeService,
	}
}

func (c *narrativeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/narrative/v1")
	h.Use(serverutils.LibraryAuthMiddleware(c.jwtSecret))
	h.Post("generate", c.Generate)
}

func (c *narrativeController) Generate(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	var req dto.GenerateNarrativeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.narrativeService.Generate(ctx.UserContext(), scope, &req)
	if err != nil {
		return libraryError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate narrative", res))
}

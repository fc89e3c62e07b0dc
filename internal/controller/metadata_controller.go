package controller

import (
	"research-library-be/internal/dto"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMetadataController interface {
	RegisterRoutes(r fiber.Router)
	Extract(ctx *fiber.Ctx) error
}

type metadataController struct {
	jwtSecret       string
	metadataService service.IMetadataService
}

func NewMetadataController(jwtSecret string, metadataService service.IMetadataService) IMetadataController {
	return &metadataController{
		jwtSecret:       jwtSecret,
		metadataService: metadataService,
	}
}

func (c *metadataController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/metadata/v1")
	h.Use(serverutils.LibraryAuthMiddleware(c.jwtSecret))
	h.Post("extract", c.Extract)
}

func (c *metadataController) Extract(ctx *fiber.Ctx) error {
	var req dto.ExtractMetadataRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.metadataService.Extract(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success extract metadata", res))
}

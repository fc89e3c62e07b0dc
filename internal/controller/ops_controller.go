package controller

import (
	"context"
	"time"

	"research-library-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether one dependency answers.
type HealthCheck func(ctx context.Context) error

type IOpsController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type opsController struct {
	checks map[string]HealthCheck
}

// NewOpsController serves /health and /metrics. Checks are optional
// dependencies; a failing one marks the service degraded, not down.
func NewOpsController(checks map[string]HealthCheck) IOpsController {
	return &opsController{checks: checks}
}

func (c *opsController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *opsController) Health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(checkCtx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	return ctx.JSON(serverutils.SuccessResponse("Service "+status, fiber.Map{
		"status":       status,
		"dependencies": deps,
	}))
}

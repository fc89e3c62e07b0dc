package server

import (
	"log"
	"strings"
	"time"

	"research-library-be/internal/bootstrap"
	"research-library-be/internal/config"
	"research-library-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

// untraced keeps health checks, metrics and the change feed out of the trace pipeline.
func untraced(c *fiber.Ctx) bool {
	path := c.Path()
	return path == "/health" || path == "/metrics" || strings.HasSuffix(path, "/ws")
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
		AppName:   cfg.Tracing.ServiceName,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + serverutils.GuestHeader,
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-Id",
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(untraced)))
	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Research library API listening on :%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.OpsController.RegisterRoutes(app)

	api := app.Group("/api")
	c.LibraryController.RegisterRoutes(api)
	c.MetadataController.RegisterRoutes(api)
	c.NarrativeController.RegisterRoutes(api)
}

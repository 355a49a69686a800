package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-lab-grader/internal/config"
	"github.com/noah-isme/gema-lab-grader/internal/handler"
	"github.com/noah-isme/gema-lab-grader/internal/middleware"
	"github.com/noah-isme/gema-lab-grader/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradingHandler *handler.GradingHandler
	JWTMiddleware  fiber.Handler
	// ExposeMetrics mounts the Prometheus scrape endpoint at /metrics.
	ExposeMetrics bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	var labs []string
	if deps.GradingHandler != nil {
		labs = deps.GradingHandler.LabNames()
	}
	api.Get("/health", handler.HealthCheck(cfg, labs...))

	if deps.ExposeMetrics {
		app.Get("/metrics", observability.MetricsHandler())
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.GradingHandler != nil {
		webLab := app.Group("/api/v2/web-lab", jwtMiddleware, middleware.RequireRole("student", "admin"))
		deps.GradingHandler.Register(webLab)
	}
}

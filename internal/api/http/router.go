package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-gate/internal/api/http/handlers"
	"github.com/spec-kit/auth-gate/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Index  *handlers.IndexHandler
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Gate   *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Index.Index)
	app.Get("/axioms_login", cfg.Index.LoginLanding)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/login", cfg.Auth.Login)
	app.Post("/login", cfg.Auth.Login)

	api := app.Group("/api")
	api.Get("/public", cfg.Index.Public)
	api.Get("/private", cfg.Gate.Handle, cfg.Index.Private)

	app.Get("/metrics", cfg.Gate.Handle, cfg.Health.Metrics)
}

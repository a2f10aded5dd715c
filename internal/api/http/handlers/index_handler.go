package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// IndexHandler serves the unauthenticated landing routes and the sample API.
type IndexHandler struct {
	serviceName string
}

// NewIndexHandler returns a new handler instance.
func NewIndexHandler(serviceName string) *IndexHandler {
	return &IndexHandler{serviceName: serviceName}
}

// Index handles GET /.
func (h *IndexHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"api": h.serviceName})
}

// LoginLanding handles GET /axioms_login.
func (h *IndexHandler) LoginLanding(c *fiber.Ctx) error {
	return c.SendString("Welcome to Axiom_login Page")
}

// Public handles GET /api/public.
func (h *IndexHandler) Public(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "All good. You don't need to be authenticated to call this"})
}

// Private handles GET /api/private. Only reachable through the gate.
func (h *IndexHandler) Private(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "All good. You only get this message if you're authenticated"})
}

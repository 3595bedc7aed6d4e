package meta

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	fixtures *FixtureService
}

func NewHandler(fixtures *FixtureService) *Handler { return &Handler{fixtures: fixtures} }

// HandleGet serves GET /api/meta?url=... from the fixture store.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}
	rec, ok := h.fixtures.Lookup(url)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "URL not found"})
	}
	return c.JSON(rec)
}

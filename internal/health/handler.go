package health

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

type Handler struct {
	check Checker
}

// NewHandler returns a health handler. A nil checker always reports ok.
func NewHandler(check Checker) *Handler {
	return &Handler{check: check}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.health)
}

func (h *Handler) health(c *fiber.Ctx) error {
	if h.check != nil {
		if err := h.check(c.UserContext()); err != nil {
			zap.L().Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/services"
)

// Health handles GET /health
// @Summary Service health
// @Description Unhealthy when the database is unreachable, degraded when only the search index is
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *Handler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.Store)

	status := fiber.StatusOK
	if result.Status == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}

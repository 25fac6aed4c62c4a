package handlers

import (
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview serves the role-appropriate dashboard payload for the
// authenticated user.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	overview, err := h.dashboardService.Overview(user, spacectx.FromRequest(c))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(overview)
}

package handlers

import (
	"helacredit/internal/adapters/http/middleware"
	"helacredit/internal/core/services"
	"helacredit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves reporting endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// UserDashboard returns the applicant's overview
// @Summary User dashboard
// @Description Get the authenticated user's application overview
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) UserDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboardService.UserDashboard(c.Context(), middleware.UserID(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved", stats)
}

// AdminDashboard returns the portfolio overview
// @Summary Admin dashboard
// @Description Get the portfolio-wide statistics for back office staff
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard [get]
func (h *DashboardHandler) AdminDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboardService.AdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved", stats)
}

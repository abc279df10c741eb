package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard
// Returns totals, revenue, monthly request and revenue series, and upcoming
// intakes with their fill ratio.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardData(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

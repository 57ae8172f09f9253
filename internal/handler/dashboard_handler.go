package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
)

// DashboardHandler serves the role-scoped dashboards.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard godoc
// GET /api/v1/dashboard
// Returns the dashboard for the caller's role: credit load and upcoming work for
// students, taught offerings for professors, institution totals for administrators.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor := middleware.GetActor(c)
	ctx := c.Request.Context()

	var (
		data any
		err  error
	)
	switch actor.Role {
	case model.RoleStudent:
		data, err = h.dashboardService.Student(ctx, actor.ID)
	case model.RoleProfessor:
		data, err = h.dashboardService.Professor(ctx, actor.ID)
	default:
		data, err = h.dashboardService.Admin(ctx)
	}
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

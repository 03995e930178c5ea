package handlers

import (
	"net/http"

	"memberhub_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	*BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(base *BaseHandler, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      base,
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/:role", h.Guards.Auth, h.Guards.RoleSelected, h.Summary)
}

// Summary godoc
// @Summary      Role dashboard
// @Description  Counts for the caller's own opportunities, received applications or submitted applications, depending on the role.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role tag"
// @Success      200   {object}  dto.DashboardResponse
// @Failure      403   {object}  apperrors.ErrorResponse  "ROLE_REQUIRED, missing role or membership not approved"
// @Failure      404   {object}  apperrors.ErrorResponse  "Unknown dashboard"
// @Router       /dashboard/{role} [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(h.GetDB(c), identity, c.Param("role"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

package handlers

import (
	"net/http"

	"memberhub_backend/internal/services"
	"memberhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/opportunities/:id/applications", h.Guards.Auth, h.Guards.RoleSelected, h.Guards.ProfileComplete, h.Apply)
	rg.GET("/opportunities/:id/applications", h.Guards.Auth, h.ListForOpportunity)

	applications := rg.Group("/applications")
	applications.Use(h.Guards.Auth)
	{
		applications.GET("/my", h.ListMine)
		applications.PATCH("/:id/status", h.UpdateStatus)
	}
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Only approved, open job opportunities accept applications; one per applicant.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string            true  "Opportunity ID"
// @Param        request  body      dto.ApplyRequest  true  "Application"
// @Success      201      {object}  models.Application
// @Failure      403      {object}  apperrors.ErrorResponse
// @Failure      409      {object}  apperrors.ErrorResponse  "Already applied or opportunity closed"
// @Router       /opportunities/{id}/applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.Apply(c.Request.Context(), h.GetDB(c), identity, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *ApplicationHandler) ListForOpportunity(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.applicationService.ListForOpportunity(h.GetDB(c), identity, c.Param("id"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.applicationService.ListMine(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateStatus godoc
// @Summary      Move an application
// @Description  Owners advance applied, under_review, interview, offer one step at a time or reject; applicants may withdraw.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Application ID"
// @Param        request  body      dto.UpdateApplicationStatusRequest  true  "Target status"
// @Success      200      {object}  models.Application
// @Failure      409      {object}  apperrors.ErrorResponse  "Transition not allowed"
// @Router       /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.UpdateStatus(c.Request.Context(), h.GetDB(c), identity, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

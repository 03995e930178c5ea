package handlers

import (
	"net/http"

	"memberhub_backend/internal/models"
	"memberhub_backend/internal/services"
	"memberhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type OpportunityHandler struct {
	*BaseHandler
	opportunityService services.OpportunityService
}

func NewOpportunityHandler(base *BaseHandler, opportunityService services.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{
		BaseHandler:        base,
		opportunityService: opportunityService,
	}
}

func (h *OpportunityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	opportunities := rg.Group("/opportunities")
	{
		opportunities.GET("", h.Guards.OptionalAuth, h.ListPublic)
		opportunities.GET("/my", h.Guards.Auth, h.ListMine)
		opportunities.GET("/:id", h.Guards.OptionalAuth, h.Get)

		opportunities.POST("", h.Guards.Auth, h.Guards.RoleSelected, h.Guards.ProfileComplete, h.Create)
		opportunities.PATCH("/:id", h.Guards.Auth, h.Update)
		opportunities.PATCH("/:id/status", h.Guards.Auth, h.UpdateStatus)
		opportunities.DELETE("/:id", h.Guards.Auth, h.Delete)
	}
}

// ListPublic godoc
// @Summary      Browse opportunities
// @Description  Lists approved, open opportunities. Investment opportunities are only listed for investors and business owners.
// @Tags         opportunities
// @Produce      json
// @Param        type       query     string  false  "job, investment, partnership or collaboration"
// @Param        location   query     string  false  "Location"
// @Param        industry   query     string  false  "Industry"
// @Param        q          query     string  false  "Search in title and description"
// @Param        is_remote  query     bool    false  "Remote only"
// @Param        page       query     int     false  "Page"       default(1)
// @Param        page_size  query     int     false  "Page size"  default(20)
// @Success      200        {object}  dto.ListResponse[models.Opportunity]
// @Router       /opportunities [get]
func (h *OpportunityHandler) ListPublic(c *gin.Context) {
	var query dto.OpportunityListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	list, err := h.opportunityService.ListPublic(c.Request.Context(), h.GetDB(c), h.OptionalIdentity(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary      Opportunity by id
// @Description  Approved opportunities are public. Owners and admins also see pending and rejected ones.
// @Tags         opportunities
// @Produce      json
// @Param        id   path      string  true  "Opportunity ID"
// @Success      200  {object}  models.Opportunity
// @Failure      404  {object}  apperrors.ErrorResponse
// @Router       /opportunities/{id} [get]
func (h *OpportunityHandler) Get(c *gin.Context) {
	opportunity, err := h.opportunityService.Get(c.Request.Context(), h.GetDB(c), h.OptionalIdentity(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

func (h *OpportunityHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.opportunityService.ListMine(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Create godoc
// @Summary      Post an opportunity
// @Description  Requires an approved membership and a role allowed to post the type. New posts wait for admin approval.
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.CreateOpportunityRequest  true  "Opportunity"
// @Success      201      {object}  models.Opportunity
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      403      {object}  apperrors.ErrorResponse
// @Router       /opportunities [post]
func (h *OpportunityHandler) Create(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateOpportunityRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	opportunity, err := h.opportunityService.Create(c.Request.Context(), h.GetDB(c), identity, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, opportunity)
}

func (h *OpportunityHandler) Update(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateOpportunityRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	opportunity, err := h.opportunityService.Update(c.Request.Context(), h.GetDB(c), identity, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

// UpdateStatus closes or reopens an opportunity.
func (h *OpportunityHandler) UpdateStatus(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateOpportunityStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	opportunity, err := h.opportunityService.UpdateStatus(c.Request.Context(), h.GetDB(c), identity, c.Param("id"), models.OpportunityStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

func (h *OpportunityHandler) Delete(c *gin.Context) {
	identity, ok := h.Identity(c)
	if !ok {
		return
	}

	if err := h.opportunityService.Delete(c.Request.Context(), h.GetDB(c), identity, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

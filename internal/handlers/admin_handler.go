package handlers

import (
	"net/http"

	"memberhub_backend/internal/models"
	"memberhub_backend/internal/services"
	"memberhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the review queues for accounts, membership
// applications and opportunities.
type AdminHandler struct {
	*BaseHandler
	userService        services.UserService
	membershipService  services.MembershipService
	opportunityService services.OpportunityService
}

func NewAdminHandler(
	base *BaseHandler,
	userService services.UserService,
	membershipService services.MembershipService,
	opportunityService services.OpportunityService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:        base,
		userService:        userService,
		membershipService:  membershipService,
		opportunityService: opportunityService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(h.Guards.Auth, h.Guards.Admin)
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users/:id/approve", h.review(h.reviewUser, true))
		admin.POST("/users/:id/reject", h.review(h.reviewUser, false))

		admin.GET("/membership-applications", h.ListMembershipApplications)
		admin.POST("/membership-applications/:id/approve", h.review(h.reviewApplication, true))
		admin.POST("/membership-applications/:id/reject", h.review(h.reviewApplication, false))

		admin.GET("/opportunities", h.ListOpportunities)
		admin.POST("/opportunities/:id/approve", h.review(h.reviewOpportunity, true))
		admin.POST("/opportunities/:id/reject", h.review(h.reviewOpportunity, false))
	}
}

// ListUsers godoc
// @Summary      Accounts for review
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        approval_status  query     string  false  "pending, approved or rejected"
// @Param        q                query     string  false  "Email or name"
// @Success      200              {object}  dto.ListResponse[dto.UserResponse]
// @Failure      403              {object}  apperrors.ErrorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.userService.ListUsers(h.GetDB(c), &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) ListMembershipApplications(c *gin.Context) {
	var query dto.MembershipListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.membershipService.List(h.GetDB(c), models.ApprovalStatus(query.Status), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) ListOpportunities(c *gin.Context) {
	var query dto.AdminOpportunityQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.opportunityService.ListForReview(h.GetDB(c), models.ApprovalStatus(query.ApprovalStatus), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

type reviewFunc func(c *gin.Context, adminID, id string, approve bool, reason string) (interface{}, error)

// review binds the optional reason and runs decide for the path id. The
// body may be empty.
func (h *AdminHandler) review(decide reviewFunc, approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}

		var req dto.ReviewRequest
		if c.Request.ContentLength != 0 && !h.BindAndValidate_JSON(c, &req) {
			return
		}

		result, err := decide(c, adminID, c.Param("id"), approve, req.Reason)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func (h *AdminHandler) reviewUser(c *gin.Context, adminID, id string, approve bool, reason string) (interface{}, error) {
	return h.membershipService.ReviewUser(c.Request.Context(), h.GetDB(c), adminID, id, approve, reason)
}

func (h *AdminHandler) reviewApplication(c *gin.Context, adminID, id string, approve bool, reason string) (interface{}, error) {
	return h.membershipService.ReviewApplication(c.Request.Context(), h.GetDB(c), adminID, id, approve, reason)
}

func (h *AdminHandler) reviewOpportunity(c *gin.Context, adminID, id string, approve bool, reason string) (interface{}, error) {
	return h.opportunityService.Review(c.Request.Context(), h.GetDB(c), adminID, id, approve, reason)
}

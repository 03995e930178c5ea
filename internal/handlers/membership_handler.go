package handlers

import (
	"net/http"

	"memberhub_backend/internal/services"
	"memberhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	*BaseHandler
	membershipService services.MembershipService
}

func NewMembershipHandler(base *BaseHandler, membershipService services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		BaseHandler:       base,
		membershipService: membershipService,
	}
}

func (h *MembershipHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/membership/status", h.Guards.Auth, h.Status)

	applications := rg.Group("/membership-applications")
	applications.Use(h.Guards.Auth)
	{
		applications.POST("", h.Submit)
		applications.GET("/my", h.ListMine)
	}
}

// Status godoc
// @Summary      Membership status
// @Description  Returns unregistered, pending, active or rejected together with the approval state, roles and latest application.
// @Tags         membership
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MembershipStatusResponse
// @Failure      404  {object}  apperrors.ErrorResponse  "Account no longer exists"
// @Router       /membership/status [get]
func (h *MembershipHandler) Status(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	status, err := h.membershipService.Status(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Submit godoc
// @Summary      Apply for membership
// @Description  Submits the requested roles for admin review. Every requested role needs a complete sub-profile.
// @Tags         membership
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.SubmitMembershipRequest  true  "Requested roles"
// @Success      201      {object}  dto.MembershipApplicationResponse
// @Failure      403      {object}  apperrors.ErrorResponse  "Profile incomplete"
// @Failure      409      {object}  apperrors.ErrorResponse  "Application already pending"
// @Router       /membership-applications [post]
func (h *MembershipHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitMembershipRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.membershipService.Submit(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *MembershipHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	applications, err := h.membershipService.ListMine(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": applications})
}

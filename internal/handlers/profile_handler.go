package handlers

import (
	"net/http"

	"memberhub_backend/internal/models"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services"
	"memberhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profiles := rg.Group("/users/me/profiles")
	profiles.Use(h.Guards.Auth)
	{
		profiles.GET("", h.GetMyProfiles)
		profiles.PUT("/:role", h.UpsertProfile)
	}
}

// GetMyProfiles godoc
// @Summary      Role sub-profiles
// @Description  Lists the saved sub-profiles with a completeness flag and the roles still missing required fields.
// @Tags         profiles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ProfilesResponse
// @Router       /users/me/profiles [get]
func (h *ProfileHandler) GetMyProfiles(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profiles, err := h.profileService.GetProfiles(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// UpsertProfile godoc
// @Summary      Save a role sub-profile
// @Description  The body shape depends on the role: professional, job_seeker, employer, business_owner or investor.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role tag"
// @Success      200   {object}  dto.ProfilesResponse
// @Failure      400   {object}  apperrors.ErrorResponse
// @Failure      404   {object}  apperrors.ErrorResponse  "Unknown role"
// @Router       /users/me/profiles/{role} [put]
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	role, err := roles.Parse(c.Param("role"))
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrNotFound(err))
		return
	}

	profile := models.NewProfile(role)
	if !h.BindAndValidate_JSON(c, profile) {
		return
	}

	profiles, err := h.profileService.UpsertProfile(c.Request.Context(), h.GetDB(c), userID, role, profile)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

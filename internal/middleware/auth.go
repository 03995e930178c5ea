package middleware

import (
	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"
	"memberhub_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware requires a valid bearer token and stores the caller's
// identity on the request.
func AuthMiddleware(session *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		identity, err := session.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Authentication failed", "path", c.Request.URL.Path, "error", err.Error())
			apperrors.HandleError(c, err)
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is sent and
// lets anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuthMiddleware(session *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
			if identity, err := session.Authenticate(c.Request.Context(), token); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, identity *auth.Identity) {
	c.Set(contextkeys.UserIDKey, identity.UserID)
	c.Set(contextkeys.IsAdminKey, identity.IsAdmin)
	c.Set(contextkeys.RolesKey, identity.Roles)

	ctx := auth.WithIdentity(c.Request.Context(), identity)
	ctx = logger.WithUserID(ctx, identity.UserID)
	c.Request = c.Request.WithContext(ctx)
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.FromContext(c.Request.Context())
		if identity == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !identity.IsAdmin {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequireRoleSelected answers ROLE_REQUIRED, with the role-selection
// redirect, to callers holding no participant role. Admins pass.
func RequireRoleSelected() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.FromContext(c.Request.Context())
		if identity == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !identity.IsAdmin && identity.Roles.IsEmpty() {
			apperrors.HandleError(c, apperrors.ErrRoleRequired)
			return
		}
		c.Next()
	}
}

// RequirePermission rejects callers for whom roles.Can(p) is false. The
// details list the roles that would grant it.
func RequirePermission(p roles.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.FromContext(c.Request.Context())
		if identity == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !identity.IsAdmin && identity.Roles.IsEmpty() {
			apperrors.HandleError(c, apperrors.ErrRoleRequired)
			return
		}
		if !identity.Can(p) {
			required := roles.NewSet(roles.RequiredRoles(p)...)
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions.WithDetails(map[string]interface{}{
				"permission":     string(p),
				"required_roles": required.Strings(),
			}))
			return
		}
		c.Next()
	}
}

// ProfileChecker reports the completeness of a user's profile.
type ProfileChecker interface {
	GetProfiles(db *gorm.DB, userID string) (*dto.ProfilesResponse, error)
}

// ProfileCompleteMiddleware answers PROFILE_INCOMPLETE, with a redirect to
// the profile form and the missing sub-profiles, until every held role has
// its required fields. It runs after AuthMiddleware and DBMiddleware.
func ProfileCompleteMiddleware(profiles ProfileChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.FromContext(c.Request.Context())
		if identity == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if identity.IsAdmin {
			c.Next()
			return
		}

		resp, err := profiles.GetProfiles(DB(c), identity.UserID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		if !resp.Complete {
			apperrors.HandleError(c, apperrors.ErrProfileIncomplete.WithDetails(map[string]interface{}{
				"redirect": "/profile",
				"missing":  resp.Missing,
			}))
			return
		}
		c.Next()
	}
}

// Guards bundles the configured middleware so that handlers can protect the
// routes they register.
type Guards struct {
	Auth            gin.HandlerFunc
	OptionalAuth    gin.HandlerFunc
	Admin           gin.HandlerFunc
	RoleSelected    gin.HandlerFunc
	ProfileComplete gin.HandlerFunc
}

func NewGuards(session *auth.SessionService, profiles ProfileChecker) *Guards {
	return &Guards{
		Auth:            AuthMiddleware(session),
		OptionalAuth:    OptionalAuthMiddleware(session),
		Admin:           RequireAdmin(),
		RoleSelected:    RequireRoleSelected(),
		ProfileComplete: ProfileCompleteMiddleware(profiles),
	}
}

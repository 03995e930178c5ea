package dto

import (
	"time"

	"memberhub_backend/internal/models"
	"memberhub_backend/internal/roles"
)

// UserResponse is the public view of an account. Roles are emitted both as
// tags and as the boolean flag view.
type UserResponse struct {
	ID              string                `json:"id"`
	Email           string                `json:"email"`
	FullName        string                `json:"full_name"`
	Phone           string                `json:"phone,omitempty"`
	Location        string                `json:"location,omitempty"`
	Headline        string                `json:"headline,omitempty"`
	AvatarURL       string                `json:"avatar_url,omitempty"`
	Roles           []string              `json:"roles"`
	RoleFlags       roles.Flags           `json:"role_flags"`
	IsAdmin         bool                  `json:"is_admin"`
	IsVerified      bool                  `json:"is_verified"`
	ApprovalStatus  models.ApprovalStatus `json:"approval_status"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	ProfileComplete bool                  `json:"profile_complete"`
	LastLoginAt     *time.Time            `json:"last_login_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// NewUserResponse builds the view. ProfileComplete is only meaningful when
// the user was loaded with its profiles.
func NewUserResponse(u *models.User) UserResponse {
	set := u.RoleSet()
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Phone:           u.Phone,
		Location:        u.Location,
		Headline:        u.Headline,
		AvatarURL:       u.AvatarURL,
		Roles:           set.Strings(),
		RoleFlags:       set.Flags(),
		IsAdmin:         u.IsAdmin,
		IsVerified:      u.IsVerified,
		ApprovalStatus:  u.ApprovalStatus,
		RejectionReason: u.RejectionReason,
		ProfileComplete: u.ProfileComplete(),
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
}

// UpdateMeRequest - nil fields are left unchanged
type UpdateMeRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Location  *string `json:"location" validate:"omitempty,max=120"`
	Headline  *string `json:"headline" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// UpdateRolesRequest accepts either a tag list or the flag view. Tags win
// when both are sent.
type UpdateRolesRequest struct {
	Roles []string     `json:"roles" validate:"omitempty,dive,role_tag"`
	Flags *roles.Flags `json:"role_flags"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type UserListQuery struct {
	ApprovalStatus string `form:"approval_status" validate:"omitempty,approval_status"`
	Search         string `form:"q" validate:"omitempty,max=100"`
}

// ReviewRequest carries the optional reason of an admin decision.
type ReviewRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

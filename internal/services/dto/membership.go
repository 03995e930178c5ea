package dto

import (
	"memberhub_backend/internal/membership"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/roles"
)

type SubmitMembershipRequest struct {
	Roles      []string `json:"requested_roles" validate:"required,min=1,dive,role_tag"`
	Motivation string   `json:"motivation" validate:"max=2000"`
}

// MembershipStatusResponse backs GET /membership/status.
type MembershipStatusResponse struct {
	Status          membership.Status             `json:"status"`
	ApprovalStatus  models.ApprovalStatus         `json:"approval_status"`
	Roles           []string                      `json:"roles"`
	RoleFlags       roles.Flags                   `json:"role_flags"`
	ProfileComplete bool                          `json:"profile_complete"`
	MissingProfiles []string                      `json:"missing_profiles,omitempty"`
	Application     *models.MembershipApplication `json:"application,omitempty"`
}

type MembershipApplicationResponse struct {
	models.MembershipApplication
	UserEmail    string `json:"user_email,omitempty"`
	UserFullName string `json:"user_full_name,omitempty"`
}

func NewMembershipApplicationResponse(app *models.MembershipApplication) MembershipApplicationResponse {
	resp := MembershipApplicationResponse{MembershipApplication: *app}
	if app.User != nil {
		resp.UserEmail = app.User.Email
		resp.UserFullName = app.User.FullName
	}
	return resp
}

type MembershipListQuery struct {
	Status string `form:"status" validate:"omitempty,approval_status"`
}

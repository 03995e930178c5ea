package dto

import (
	"memberhub_backend/internal/models"
)

// ProfilesResponse lists every sub-profile the user has saved, whether or
// not the matching role is currently selected.
type ProfilesResponse struct {
	Professional  *models.ProfessionalProfile  `json:"professional,omitempty"`
	JobSeeker     *models.JobSeekerProfile     `json:"job_seeker,omitempty"`
	Employer      *models.EmployerProfile      `json:"employer,omitempty"`
	BusinessOwner *models.BusinessOwnerProfile `json:"business_owner,omitempty"`
	Investor      *models.InvestorProfile      `json:"investor,omitempty"`
	Complete      bool                         `json:"complete"`
	Missing       []string                     `json:"missing,omitempty"`
}

func NewProfilesResponse(u *models.User) ProfilesResponse {
	resp := ProfilesResponse{
		Professional:  u.ProfessionalProfile,
		JobSeeker:     u.JobSeekerProfile,
		Employer:      u.EmployerProfile,
		BusinessOwner: u.BusinessOwnerProfile,
		Investor:      u.InvestorProfile,
		Complete:      u.ProfileComplete(),
	}
	for _, r := range u.MissingProfiles(u.RoleSet()) {
		resp.Missing = append(resp.Missing, r.String())
	}
	return resp
}

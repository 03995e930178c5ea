package dto

import (
	"memberhub_backend/internal/models"
)

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
	ResumeURL   string `json:"resume_url" validate:"omitempty,url"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,app_status"`
	Note   string `json:"note" validate:"max=1000"`
}

// ApplicationResponse adds the applicant's contact to the row for owners.
type ApplicationResponse struct {
	models.Application
	ApplicantName  string `json:"applicant_name,omitempty"`
	ApplicantEmail string `json:"applicant_email,omitempty"`
}

func NewApplicationResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{Application: *app}
	if app.Applicant != nil {
		resp.ApplicantName = app.Applicant.FullName
		resp.ApplicantEmail = app.Applicant.Email
	}
	return resp
}

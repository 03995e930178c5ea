package dto

import (
	"memberhub_backend/internal/models"
)

// DashboardResponse is a role-specific summary; only the sections relevant
// to the role are set.
type DashboardResponse struct {
	Role                    string                             `json:"role"`
	Opportunities           map[models.ApprovalStatus]int64    `json:"opportunities,omitempty"`
	ApplicationsReceived    *int64                             `json:"applications_received,omitempty"`
	Applications            map[models.ApplicationStatus]int64 `json:"applications,omitempty"`
	InvestmentOpportunities *int64                             `json:"investment_opportunities,omitempty"`
}

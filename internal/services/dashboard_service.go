package services

import (
	"net/http"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type DashboardService interface {
	// Summary returns the dashboard for role. The caller must hold the role
	// and be an approved member; admins may open any dashboard.
	Summary(db *gorm.DB, viewer *auth.Identity, role string) (*dto.DashboardResponse, error)
}

type DashboardServiceImpl struct {
	userRepo        repositories.UserRepository
	opportunityRepo repositories.OpportunityRepository
	applicationRepo repositories.ApplicationRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	opportunityRepo repositories.OpportunityRepository,
	applicationRepo repositories.ApplicationRepository,
) DashboardService {
	return &DashboardServiceImpl{
		userRepo:        userRepo,
		opportunityRepo: opportunityRepo,
		applicationRepo: applicationRepo,
	}
}

func (s *DashboardServiceImpl) Summary(db *gorm.DB, viewer *auth.Identity, role string) (*dto.DashboardResponse, error) {
	r, err := roles.Parse(role)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "dashboard", "Unknown dashboard", http.StatusNotFound)
	}
	if viewer.Roles.IsEmpty() && !viewer.IsAdmin {
		return nil, apperrors.ErrRoleRequired
	}
	if perm := roles.Dashboard(r); !viewer.Can(perm) {
		return nil, apperrors.ErrInsufficientPermissions.WithDetails(map[string]interface{}{
			"permission":     perm,
			"required_roles": roles.RequiredRoles(perm),
		})
	}

	user, err := s.userRepo.FindByID(db, viewer.UserID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}
	if !user.IsApproved() && !user.IsAdmin {
		return nil, apperrors.ErrNotApprovedMember
	}

	resp := &dto.DashboardResponse{Role: r.String()}

	if r == roles.JobSeeker {
		counts, err := s.applicationRepo.CountByApplicantGrouped(db, user.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		resp.Applications = counts
		return resp, nil
	}

	// Every other role posts opportunities.
	counts, err := s.opportunityRepo.CountByOwnerGrouped(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	received, err := s.applicationRepo.CountReceivedByOwner(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.Opportunities = counts
	resp.ApplicationsReceived = &received

	if r == roles.Investor {
		investments, err := s.opportunityRepo.CountPublicByType(db, models.OpportunityInvestment)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		resp.InvestmentOpportunities = &investments
	}
	return resp, nil
}

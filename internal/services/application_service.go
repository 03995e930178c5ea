package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/email"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/metrics"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// TransitionActor is the side moving an application.
type TransitionActor int

const (
	ActorOwner TransitionActor = iota
	ActorApplicant
)

// ownerSteps is the forward pipeline an owner walks one step at a time.
var ownerSteps = map[models.ApplicationStatus]models.ApplicationStatus{
	models.ApplicationApplied:     models.ApplicationUnderReview,
	models.ApplicationUnderReview: models.ApplicationInterview,
	models.ApplicationInterview:   models.ApplicationOffer,
}

// CanTransition reports whether actor may move an application from one
// status to another. Terminal statuses accept nothing.
func CanTransition(from, to models.ApplicationStatus, actor TransitionActor) bool {
	if from.Terminal() || !to.Valid() {
		return false
	}
	switch actor {
	case ActorOwner:
		return to == models.ApplicationRejected || ownerSteps[from] == to
	case ActorApplicant:
		return to == models.ApplicationWithdrawn
	}
	return false
}

type ApplicationService interface {
	Apply(ctx context.Context, db *gorm.DB, viewer *auth.Identity, opportunityID string, req *dto.ApplyRequest) (*models.Application, error)
	ListMine(db *gorm.DB, applicantID string, page, pageSize int) (*dto.ListResponse[models.Application], error)
	ListForOpportunity(db *gorm.DB, viewer *auth.Identity, opportunityID string, page, pageSize int) (*dto.ListResponse[dto.ApplicationResponse], error)
	UpdateStatus(ctx context.Context, db *gorm.DB, viewer *auth.Identity, applicationID string, req *dto.UpdateApplicationStatusRequest) (*models.Application, error)
}

type ApplicationServiceImpl struct {
	applicationRepo repositories.ApplicationRepository
	opportunityRepo repositories.OpportunityRepository
	userRepo        repositories.UserRepository
	mailer          *email.Mailer
	notifier        Notifier
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	opportunityRepo repositories.OpportunityRepository,
	userRepo repositories.UserRepository,
	mailer *email.Mailer,
	notifier Notifier,
) ApplicationService {
	return &ApplicationServiceImpl{
		applicationRepo: applicationRepo,
		opportunityRepo: opportunityRepo,
		userRepo:        userRepo,
		mailer:          mailer,
		notifier:        orNoop(notifier),
		now:             time.Now,
	}
}

func errApplicationNotFound() error {
	return apperrors.New(apperrors.CodeNotFound, "application", "Application not found", http.StatusNotFound)
}

func (s *ApplicationServiceImpl) Apply(ctx context.Context, db *gorm.DB, viewer *auth.Identity, opportunityID string, req *dto.ApplyRequest) (*models.Application, error) {
	opp, err := s.opportunityRepo.FindByIDWithOwner(db, opportunityID)
	if err != nil {
		if errors.Is(err, repositories.ErrOpportunityNotFound) {
			return nil, errOpportunityNotFound()
		}
		return nil, apperrors.InternalError(err)
	}
	if !canView(viewer, opp) {
		return nil, errOpportunityNotFound()
	}

	switch {
	case opp.ApprovalStatus != models.ApprovalApproved:
		return nil, apperrors.ErrOpportunityNotApproved
	case opp.Status != models.OpportunityOpen:
		return nil, apperrors.ErrOpportunityClosed
	case opp.ExpiresAt != nil && !opp.ExpiresAt.After(s.now()):
		return nil, apperrors.ErrOpportunityClosed
	case opp.Type != models.OpportunityJob:
		return nil, apperrors.ErrNotJobOpportunity
	case opp.OwnerID == viewer.UserID:
		return nil, apperrors.ErrCannotApplyOwn
	}

	if viewer.Roles.IsEmpty() && !viewer.IsAdmin {
		return nil, apperrors.ErrRoleRequired
	}
	if !viewer.Can(roles.ApplyJob) {
		return nil, apperrors.ErrInsufficientPermissions.WithDetails(map[string]interface{}{
			"permission":     roles.ApplyJob,
			"required_roles": roles.RequiredRoles(roles.ApplyJob),
		})
	}

	applicant, err := s.userRepo.FindByID(db, viewer.UserID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}
	if !applicant.IsApproved() && !applicant.IsAdmin {
		return nil, apperrors.ErrNotApprovedMember
	}

	app := &models.Application{
		OpportunityID: opp.ID,
		ApplicantID:   applicant.ID,
		CoverLetter:   req.CoverLetter,
		ResumeURL:     req.ResumeURL,
		Status:        models.ApplicationApplied,
	}
	if err := s.applicationRepo.Create(db, app); err != nil {
		if errors.Is(err, repositories.ErrApplicationDuplicate) {
			return nil, apperrors.ErrDuplicateApplication
		}
		return nil, apperrors.InternalError(err)
	}

	metrics.RecordApplication(string(app.Status))
	logger.CtxInfo(ctx, "Application submitted", "application_id", app.ID, "opportunity_id", opp.ID)

	if opp.Owner != nil {
		if err := s.mailer.SendApplicationReceived(ctx, opp.Owner.Email, opp.Owner.FullName, applicant.FullName, opp.Title); err != nil {
			logger.CtxWithError(ctx, "Failed to send application email", err, "application_id", app.ID)
		}
	}
	s.notifier.Notify(opp.OwnerID, EventApplicationReceived, map[string]interface{}{
		"application_id": app.ID,
		"opportunity_id": opp.ID,
		"title":          opp.Title,
		"applicant_name": applicant.FullName,
	})
	return app, nil
}

func (s *ApplicationServiceImpl) ListMine(db *gorm.DB, applicantID string, page, pageSize int) (*dto.ListResponse[models.Application], error) {
	apps, total, err := s.applicationRepo.FindByApplicant(db, applicantID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewListResponse(apps, total, page, pageSize)
	return &resp, nil
}

func (s *ApplicationServiceImpl) ListForOpportunity(db *gorm.DB, viewer *auth.Identity, opportunityID string, page, pageSize int) (*dto.ListResponse[dto.ApplicationResponse], error) {
	opp, err := s.opportunityRepo.FindByID(db, opportunityID)
	if err != nil {
		if errors.Is(err, repositories.ErrOpportunityNotFound) {
			return nil, errOpportunityNotFound()
		}
		return nil, apperrors.InternalError(err)
	}
	if !canManage(viewer, opp) {
		if canView(viewer, opp) {
			return nil, apperrors.ErrInsufficientPermissions
		}
		return nil, errOpportunityNotFound()
	}

	apps, total, err := s.applicationRepo.FindByOpportunity(db, opp.ID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, dto.NewApplicationResponse(&apps[i]))
	}
	resp := dto.NewListResponse(items, total, page, pageSize)
	return &resp, nil
}

// UpdateStatus moves an application. Owners (and admins) drive the review
// pipeline; applicants may only withdraw.
func (s *ApplicationServiceImpl) UpdateStatus(ctx context.Context, db *gorm.DB, viewer *auth.Identity, applicationID string, req *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	app, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, errApplicationNotFound()
		}
		return nil, apperrors.InternalError(err)
	}
	if app.Opportunity == nil {
		return nil, errApplicationNotFound()
	}

	isOwner := canManage(viewer, app.Opportunity)
	isApplicant := viewer != nil && viewer.UserID == app.ApplicantID
	if !isOwner && !isApplicant {
		return nil, errApplicationNotFound()
	}

	to := models.ApplicationStatus(req.Status)
	actor := ActorOwner
	if to == models.ApplicationWithdrawn {
		actor = ActorApplicant
	}
	if (actor == ActorOwner && !isOwner) || (actor == ActorApplicant && !isApplicant) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !CanTransition(app.Status, to, actor) {
		return nil, apperrors.ErrInvalidApplicationTransition.WithDetails(map[string]string{
			"from": string(app.Status),
			"to":   string(to),
		})
	}

	app.Status = to
	if actor == ActorOwner && req.Note != "" {
		app.OwnerNote = req.Note
	}
	if err := s.applicationRepo.UpdateStatus(db, app); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, errApplicationNotFound()
		}
		return nil, apperrors.InternalError(err)
	}

	metrics.RecordApplication(string(to))
	logger.CtxInfo(ctx, "Application status changed", "application_id", app.ID, "status", to)

	if actor == ActorOwner {
		s.announceStatus(ctx, db, app)
	}
	return app, nil
}

func (s *ApplicationServiceImpl) announceStatus(ctx context.Context, db *gorm.DB, app *models.Application) {
	applicant, err := s.userRepo.FindByID(db, app.ApplicantID)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to load applicant for notification", err, "application_id", app.ID)
	} else if err := s.mailer.SendApplicationStatus(ctx, applicant.Email, applicant.FullName, app.Opportunity.Title, string(app.Status), app.OwnerNote); err != nil {
		logger.CtxWithError(ctx, "Failed to send application status email", err, "application_id", app.ID)
	}

	s.notifier.Notify(app.ApplicantID, EventApplicationStatus, map[string]interface{}{
		"application_id": app.ID,
		"opportunity_id": app.OpportunityID,
		"title":          app.Opportunity.Title,
		"status":         app.Status,
		"note":           app.OwnerNote,
	})
}

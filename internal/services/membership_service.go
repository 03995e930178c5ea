package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"memberhub_backend/internal/email"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/membership"
	"memberhub_backend/internal/metrics"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type MembershipService interface {
	Status(db *gorm.DB, userID string) (*dto.MembershipStatusResponse, error)
	Submit(ctx context.Context, db *gorm.DB, userID string, req *dto.SubmitMembershipRequest) (*dto.MembershipApplicationResponse, error)
	ListMine(db *gorm.DB, userID string) ([]models.MembershipApplication, error)

	// Admin operations
	List(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) (*dto.ListResponse[dto.MembershipApplicationResponse], error)
	ReviewApplication(ctx context.Context, db *gorm.DB, adminID, applicationID string, approve bool, reason string) (*dto.MembershipApplicationResponse, error)
	// ReviewUser decides on the account itself, along with its pending
	// application if there is one.
	ReviewUser(ctx context.Context, db *gorm.DB, adminID, userID string, approve bool, reason string) (*dto.UserResponse, error)
}

type MembershipServiceImpl struct {
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
	mailer         *email.Mailer
	notifier       Notifier
	now            func() time.Time
}

func NewMembershipService(
	userRepo repositories.UserRepository,
	membershipRepo repositories.MembershipRepository,
	mailer *email.Mailer,
	notifier Notifier,
) MembershipService {
	return &MembershipServiceImpl{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		mailer:         mailer,
		notifier:       orNoop(notifier),
		now:            time.Now,
	}
}

func decisionOf(approve bool) models.ApprovalStatus {
	if approve {
		return models.ApprovalApproved
	}
	return models.ApprovalRejected
}

func (s *MembershipServiceImpl) Status(db *gorm.DB, userID string) (*dto.MembershipStatusResponse, error) {
	user, err := s.userRepo.FindByIDWithProfiles(db, userID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "membership", "Account not found")
	}

	latest, err := s.membershipRepo.FindLatestByUserID(db, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMembershipApplicationNotFound) {
			return nil, apperrors.InternalError(err)
		}
		latest = nil
	}

	set := user.RoleSet()
	resp := &dto.MembershipStatusResponse{
		Status:          membership.Derive(user, latest, nil),
		ApprovalStatus:  user.ApprovalStatus,
		Roles:           set.Strings(),
		RoleFlags:       set.Flags(),
		ProfileComplete: user.ProfileComplete(),
		Application:     latest,
	}
	for _, r := range user.MissingProfiles(set) {
		resp.MissingProfiles = append(resp.MissingProfiles, r.String())
	}
	return resp, nil
}

func (s *MembershipServiceImpl) Submit(ctx context.Context, db *gorm.DB, userID string, req *dto.SubmitMembershipRequest) (*dto.MembershipApplicationResponse, error) {
	requested, err := roles.ParseList(req.Roles)
	if err != nil {
		return nil, apperrors.ValidationError(map[string]string{"requested_roles": err.Error()})
	}
	if requested.IsEmpty() {
		return nil, apperrors.ErrRoleRequired
	}

	user, err := s.userRepo.FindByIDWithProfiles(db, userID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "membership", "Account not found")
	}

	pending, err := s.membershipRepo.HasPending(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if pending {
		return nil, apperrors.ErrPendingApplicationExists
	}

	if user.IsApproved() {
		current := user.RoleSet()
		granted := true
		for _, r := range requested {
			if !current.Has(r) {
				granted = false
				break
			}
		}
		if granted {
			return nil, apperrors.New(apperrors.CodeInvalidOperation, "membership",
				"All requested roles are already granted", http.StatusConflict)
		}
	}

	missing := user.MissingProfiles(requested)
	if user.FullName == "" || len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, r := range missing {
			names = append(names, r.String())
		}
		return nil, apperrors.ErrProfileIncomplete.WithDetails(map[string]interface{}{
			"redirect": "/profile",
			"missing":  names,
		})
	}

	app := &models.MembershipApplication{
		UserID:         userID,
		RequestedRoles: pq.StringArray(requested.Strings()),
		Motivation:     req.Motivation,
		Status:         models.ApprovalPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.Create(tx, app); err != nil {
			return err
		}
		// A rejected account goes back into the queue with the new application.
		if user.ApprovalStatus == models.ApprovalRejected {
			user.ResetReview()
			return s.userRepo.Update(tx, user)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Membership application submitted", "user_id", userID, "roles", requested.Strings())
	resp := dto.NewMembershipApplicationResponse(app)
	return &resp, nil
}

func (s *MembershipServiceImpl) ListMine(db *gorm.DB, userID string) ([]models.MembershipApplication, error) {
	apps, err := s.membershipRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if apps == nil {
		apps = []models.MembershipApplication{}
	}
	return apps, nil
}

func (s *MembershipServiceImpl) List(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) (*dto.ListResponse[dto.MembershipApplicationResponse], error) {
	apps, total, err := s.membershipRepo.FindByStatus(db, status, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.MembershipApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, dto.NewMembershipApplicationResponse(&apps[i]))
	}
	resp := dto.NewListResponse(items, total, page, pageSize)
	return &resp, nil
}

func (s *MembershipServiceImpl) ReviewApplication(ctx context.Context, db *gorm.DB, adminID, applicationID string, approve bool, reason string) (*dto.MembershipApplicationResponse, error) {
	app, err := s.membershipRepo.FindByID(db, applicationID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrMembershipApplicationNotFound, "membership", "Membership application not found")
	}
	if app.UserID == adminID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if app.Status != models.ApprovalPending {
		return nil, apperrors.ErrAlreadyReviewed
	}
	if app.User == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "membership", "Account not found", http.StatusNotFound)
	}

	user := app.User
	app.User = nil
	err = db.Transaction(func(tx *gorm.DB) error {
		return s.applyDecision(tx, adminID, user, app, approve, reason)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.announce(ctx, user, approve, app.RequestedRoles, reason)
	app.User = user
	resp := dto.NewMembershipApplicationResponse(app)
	return &resp, nil
}

func (s *MembershipServiceImpl) ReviewUser(ctx context.Context, db *gorm.DB, adminID, userID string, approve bool, reason string) (*dto.UserResponse, error) {
	if userID == adminID {
		return nil, apperrors.ErrCannotModifySelf
	}

	user, err := s.userRepo.FindByIDWithProfiles(db, userID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}

	app, err := s.membershipRepo.FindLatestByUserID(db, userID)
	switch {
	case errors.Is(err, repositories.ErrMembershipApplicationNotFound):
		app = nil
	case err != nil:
		return nil, apperrors.InternalError(err)
	case app.Status != models.ApprovalPending:
		app = nil
	}

	if app == nil && user.ApprovalStatus == decisionOf(approve) {
		return nil, apperrors.ErrAlreadyReviewed
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return s.applyDecision(tx, adminID, user, app, approve, reason)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	var granted []string
	if app != nil {
		granted = app.RequestedRoles
	}
	s.announce(ctx, user, approve, granted, reason)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// applyDecision updates the application (if any) and the account together.
// Approval grants the requested roles. Rejecting an application of an
// already approved member leaves the account approved.
func (s *MembershipServiceImpl) applyDecision(tx *gorm.DB, adminID string, user *models.User, app *models.MembershipApplication, approve bool, reason string) error {
	now := s.now()
	decision := decisionOf(approve)

	if app != nil {
		app.Status = decision
		app.ReviewNote = reason
		app.ReviewedBy = &adminID
		app.ReviewedAt = &now
		if err := s.membershipRepo.Update(tx, app); err != nil {
			return err
		}
	}

	switch {
	case approve:
		if app != nil {
			user.SetRoles(user.RoleSet().Union(roles.FromStrings(app.RequestedRoles)))
		}
		user.MarkReviewed(models.ApprovalApproved, adminID, "", now)
	case !user.IsApproved() || app == nil:
		user.MarkReviewed(models.ApprovalRejected, adminID, reason, now)
	}

	if user.IsApproved() && user.RoleSet().IsEmpty() && !user.IsAdmin {
		return apperrors.ErrInvalidStatus("membership", "User has not selected any roles")
	}

	if err := s.userRepo.Update(tx, user); err != nil {
		return err
	}

	entity := "user"
	if app != nil {
		entity = "membership"
	}
	metrics.RecordReview(entity, string(decision))
	return nil
}

func (s *MembershipServiceImpl) announce(ctx context.Context, user *models.User, approve bool, granted []string, reason string) {
	logger.CtxInfo(ctx, "Membership reviewed", "user_id", user.ID, "approved", approve)

	if err := s.mailer.SendMembershipDecision(ctx, user.Email, user.FullName, approve, granted, reason); err != nil {
		logger.CtxWithError(ctx, "Failed to send membership decision email", err, "user_id", user.ID)
	}

	s.notifier.Notify(user.ID, EventMembershipReviewed, map[string]interface{}{
		"approval_status": user.ApprovalStatus,
		"roles":           user.RoleSet().Strings(),
		"reason":          reason,
	})
}

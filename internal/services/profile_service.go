package services

import (
	"context"
	"net/http"

	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfiles(db *gorm.DB, userID string) (*dto.ProfilesResponse, error)
	// UpsertProfile saves the sub-profile for role. Partial profiles are
	// accepted; completeness is checked when applying for membership.
	UpsertProfile(ctx context.Context, db *gorm.DB, userID string, role roles.Role, profile models.RoleProfile) (*dto.ProfilesResponse, error)
}

type ProfileServiceImpl struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
}

func NewProfileService(userRepo repositories.UserRepository, profileRepo repositories.ProfileRepository) ProfileService {
	return &ProfileServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

func (s *ProfileServiceImpl) GetProfiles(db *gorm.DB, userID string) (*dto.ProfilesResponse, error) {
	user, err := s.userRepo.FindByIDWithProfiles(db, userID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}
	resp := dto.NewProfilesResponse(user)
	return &resp, nil
}

func (s *ProfileServiceImpl) UpsertProfile(ctx context.Context, db *gorm.DB, userID string, role roles.Role, profile models.RoleProfile) (*dto.ProfilesResponse, error) {
	if !role.Valid() || profile == nil || profile.Role() != role {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile", "Unknown profile role", http.StatusNotFound)
	}

	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}

	if err := s.profileRepo.Upsert(db, userID, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Profile saved", "user_id", userID, "role", role, "complete", profile.Complete())
	return s.GetProfiles(db, userID)
}

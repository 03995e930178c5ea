package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	// GetMe 404s when the account no longer exists.
	GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateMe(db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
	DeleteMe(ctx context.Context, db *gorm.DB, userID string) error
	UpdateRoles(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateRolesRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
	// Identity loads the caller's current roles for request authentication.
	Identity(db *gorm.DB, userID string) (*auth.Identity, error)

	// Admin operations
	ListUsers(db *gorm.DB, query *dto.UserListQuery, page, pageSize int) (*dto.ListResponse[dto.UserResponse], error)
}

type UserServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

func NewUserService(userRepo repositories.UserRepository, refreshTokenRepo repositories.RefreshTokenRepository) UserService {
	return &UserServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

func (s *UserServiceImpl) load(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByIDWithProfiles(db, userID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}
	return user, nil
}

func (s *UserServiceImpl) GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.load(db, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *UserServiceImpl) UpdateMe(db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.load(db, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Headline != nil {
		user.Headline = *req.Headline
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// DeleteMe removes the account. Profiles, tokens, opportunities and
// applications go with it through the foreign keys.
func (s *UserServiceImpl) DeleteMe(ctx context.Context, db *gorm.DB, userID string) error {
	if err := s.userRepo.Delete(db, userID); err != nil {
		return notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}
	logger.CtxInfo(ctx, "Account deleted", "user_id", userID)
	return nil
}

// UpdateRoles replaces the selected roles. Until the membership is approved
// the selection is free; an approved member may drop roles but must submit
// a membership application to gain new ones.
func (s *UserServiceImpl) UpdateRoles(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateRolesRequest) (*dto.UserResponse, error) {
	var next roles.Set
	switch {
	case len(req.Roles) > 0:
		parsed, err := roles.ParseList(req.Roles)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"roles": err.Error()})
		}
		next = parsed
	case req.Flags != nil:
		next = roles.FromFlags(*req.Flags)
	default:
		return nil, apperrors.ValidationError(map[string]string{"roles": "Provide roles or role_flags"})
	}

	user, err := s.load(db, userID)
	if err != nil {
		return nil, err
	}

	if user.IsApproved() && !user.IsAdmin {
		current := user.RoleSet()
		for _, r := range next {
			if !current.Has(r) {
				return nil, apperrors.New(apperrors.CodeInvalidOperation, "membership",
					"Submit a membership application to add roles", http.StatusConflict).
					WithDetails(map[string]string{"role": r.String()})
			}
		}
	}

	user.SetRoles(next)
	if err := s.userRepo.Update(db, user); err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}

	logger.CtxInfo(ctx, "Roles updated", "user_id", userID, "roles", next.Strings())
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *UserServiceImpl) ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = hash

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Update(tx, user); err != nil {
			return err
		}
		return s.refreshTokenRepo.DeleteByUserID(tx, user.ID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Password changed", "user_id", userID)
	return nil
}

func (s *UserServiceImpl) Identity(db *gorm.DB, userID string) (*auth.Identity, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}
	id := identityOf(user)
	return &id, nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, query *dto.UserListQuery, page, pageSize int) (*dto.ListResponse[dto.UserResponse], error) {
	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		ApprovalStatus: models.ApprovalStatus(query.ApprovalStatus),
		Search:         query.Search,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	resp := dto.NewListResponse(items, total, page, pageSize)
	return &resp, nil
}

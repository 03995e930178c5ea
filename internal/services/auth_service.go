package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/email"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const passwordResetTTL = time.Hour

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Refresh rotates the refresh token and issues a new access token.
	Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, db *gorm.DB, refreshToken string) error
	VerifyEmail(ctx context.Context, db *gorm.DB, token string) error
	RequestPasswordReset(ctx context.Context, db *gorm.DB, email string) error
	ResetPassword(ctx context.Context, db *gorm.DB, token, newPassword string) error
	PurgeExpiredTokens(ctx context.Context, db *gorm.DB) (int64, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenService
	mailer           *email.Mailer
	refreshTTL       time.Duration
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenService,
	mailer *email.Mailer,
	refreshTTL time.Duration,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		mailer:           mailer,
		refreshTTL:       refreshTTL,
		now:              time.Now,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register creates a pending account without roles.
func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	verificationToken, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:             normalizeEmail(req.Email),
		PasswordHash:      hash,
		FullName:          strings.TrimSpace(req.FullName),
		Roles:             pq.StringArray{},
		VerificationToken: verificationToken,
		Review:            models.Review{ApprovalStatus: models.ApprovalPending},
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "User registered", "user_id", user.ID)

	if err := s.mailer.SendVerification(ctx, user.Email, user.FullName, verificationToken); err != nil {
		logger.CtxWithError(ctx, "Failed to send verification email", err, "user_id", user.ID)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "Failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(db, user.ID, now); err != nil {
		logger.CtxWithError(ctx, "Failed to update last login", err, "user_id", user.ID)
	}

	return s.issueTokens(db, user.ID)
}

func (s *AuthServiceImpl) Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	token, err := s.refreshTokenRepo.FindByToken(db, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if s.now().After(token.ExpiresAt) {
		if err := s.refreshTokenRepo.DeleteByToken(db, refreshToken); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			logger.CtxWithError(ctx, "Failed to delete expired refresh token", err)
		}
		return nil, apperrors.ErrInvalidToken
	}

	var resp *dto.AuthResponse
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.refreshTokenRepo.DeleteByToken(tx, refreshToken); err != nil {
			if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
				// Lost a race with a concurrent refresh of the same token.
				return apperrors.ErrInvalidToken
			}
			return err
		}
		issued, err := s.issueTokens(tx, token.UserID)
		if err != nil {
			return err
		}
		resp = issued
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return resp, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, db *gorm.DB, refreshToken string) error {
	if err := s.refreshTokenRepo.DeleteByToken(db, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, db *gorm.DB, token string) error {
	user, err := s.userRepo.FindByVerificationToken(db, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	user.IsVerified = true
	user.VerificationToken = ""
	if err := s.userRepo.Update(db, user); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Email verified", "user_id", user.ID)
	return nil
}

// RequestPasswordReset answers the same way whether or not the email is known.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, db *gorm.DB, address string) error {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(address))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	exp := s.now().Add(passwordResetTTL)
	user.ResetToken = token
	user.ResetTokenExp = &exp

	if err := s.userRepo.Update(db, user); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.FullName, token, passwordResetTTL); err != nil {
		logger.CtxWithError(ctx, "Failed to send password reset email", err, "user_id", user.ID)
	}
	return nil
}

// ResetPassword sets a new password and signs the user out everywhere.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, db *gorm.DB, token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByResetToken(db, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	if user.ResetTokenExp == nil || s.now().After(*user.ResetTokenExp) {
		return apperrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		user.PasswordHash = hash
		user.ResetToken = ""
		user.ResetTokenExp = nil
		if err := s.userRepo.Update(tx, user); err != nil {
			return err
		}
		return s.refreshTokenRepo.DeleteByUserID(tx, user.ID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Password reset", "user_id", user.ID)
	return nil
}

func (s *AuthServiceImpl) PurgeExpiredTokens(ctx context.Context, db *gorm.DB) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(db, s.now())
}

// issueTokens signs an access token with the user's current roles and
// stores a fresh refresh token.
func (s *AuthServiceImpl) issueTokens(db *gorm.DB, userID string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByIDWithProfiles(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(identityOf(user))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		User:         dto.NewUserResponse(user),
	}, nil
}

func identityOf(user *models.User) auth.Identity {
	return auth.Identity{
		UserID:  user.ID,
		Email:   user.Email,
		Roles:   user.RoleSet(),
		IsAdmin: user.IsAdmin,
	}
}

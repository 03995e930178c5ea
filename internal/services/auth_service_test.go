package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users   *mockUserRepo
	refresh *mockRefreshTokenRepo
	tokens  *auth.TokenService
	sent    func() int
	svc     AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	mailer, provider := newTestMailer(t)
	f := &authFixture{
		users:   &mockUserRepo{},
		refresh: &mockRefreshTokenRepo{},
		tokens:  auth.NewTokenService("test-secret", "memberhub-test", 15*time.Minute),
		sent:    func() int { return len(provider.Sent()) },
	}
	f.svc = NewAuthService(f.users, f.refresh, f.tokens, mailer, 24*time.Hour)
	return f
}

func TestRegister(t *testing.T) {
	t.Run("creates a pending account without roles", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "new@example.test" &&
				len(u.Roles) == 0 &&
				u.ApprovalStatus == models.ApprovalPending &&
				u.VerificationToken != "" &&
				auth.CheckPasswordHash("correct horse", u.PasswordHash)
		})).Return(nil)

		resp, err := f.svc.Register(context.Background(), db, &dto.RegisterRequest{
			Email:    "  New@Example.test ",
			Password: "correct horse",
			FullName: "New Member",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.test", resp.Email)
		assert.Empty(t, resp.Roles)
		assert.False(t, resp.ProfileComplete)
		assert.Equal(t, 1, f.sent())
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)
		f.users.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrUserAlreadyExists)

		_, err := f.svc.Register(context.Background(), db, &dto.RegisterRequest{Email: "a@example.test", Password: "long enough"})
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("short password", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)

		_, err := f.svc.Register(context.Background(), db, &dto.RegisterRequest{Email: "a@example.test", Password: "short"})
		require.Error(t, err)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	user := &models.User{
		BaseModel:    models.BaseModel{ID: "user-1"},
		Email:        "member@example.test",
		PasswordHash: hash,
		Roles:        pq.StringArray{"employer"},
	}

	t.Run("issues tokens carrying the roles", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)
		f.users.On("FindByEmail", mock.Anything, "member@example.test").Return(user, nil)
		f.users.On("UpdateLastLogin", mock.Anything, "user-1", mock.Anything).Return(nil)
		f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(user, nil)
		f.refresh.On("Create", mock.Anything, mock.MatchedBy(func(rt *models.RefreshToken) bool {
			return rt.UserID == "user-1" && rt.Token != "" && rt.ExpiresAt.After(time.Now().Add(23*time.Hour))
		})).Return(nil)

		resp, err := f.svc.Login(context.Background(), db, &dto.LoginRequest{Email: "Member@example.test", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.NotEmpty(t, resp.RefreshToken)

		claims, err := f.tokens.ParseAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, []string{"employer"}, claims.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)
		f.users.On("FindByEmail", mock.Anything, "member@example.test").Return(user, nil)

		_, err := f.svc.Login(context.Background(), db, &dto.LoginRequest{Email: "member@example.test", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)
		f.users.On("FindByEmail", mock.Anything, "ghost@example.test").Return(nil, repositories.ErrUserNotFound)

		_, err := f.svc.Login(context.Background(), db, &dto.LoginRequest{Email: "ghost@example.test", Password: "whatever"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	db, sqlMock := newTestDB(t)
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Email: "member@example.test"}

	f.refresh.On("FindByToken", mock.Anything, "old").Return(&models.RefreshToken{
		UserID:    "user-1",
		Token:     "old",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	f.refresh.On("DeleteByToken", mock.Anything, "old").Return(nil)
	f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(user, nil)
	f.refresh.On("Create", mock.Anything, mock.Anything).Return(nil)
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	resp, err := f.svc.Refresh(context.Background(), db, "old")
	require.NoError(t, err)
	assert.NotEqual(t, "old", resp.RefreshToken)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	db, _ := newTestDB(t)
	f.refresh.On("FindByToken", mock.Anything, "stale").Return(&models.RefreshToken{
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	f.refresh.On("DeleteByToken", mock.Anything, "stale").Return(nil)

	_, err := f.svc.Refresh(context.Background(), db, "stale")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	f.users.AssertNotCalled(t, "FindByIDWithProfiles", mock.Anything, mock.Anything)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	db, _ := newTestDB(t)
	f.refresh.On("DeleteByToken", mock.Anything, "gone").Return(repositories.ErrRefreshTokenNotFound)

	assert.NoError(t, f.svc.Logout(context.Background(), db, "gone"))
}

func TestRequestPasswordResetDoesNotLeakAccounts(t *testing.T) {
	f := newAuthFixture(t)
	db, _ := newTestDB(t)
	f.users.On("FindByEmail", mock.Anything, "ghost@example.test").Return(nil, repositories.ErrUserNotFound)

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), db, "ghost@example.test"))
	assert.Zero(t, f.sent())
}

func TestResetPassword(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture(t)
		db, _ := newTestDB(t)
		past := time.Now().Add(-time.Minute)
		f.users.On("FindByResetToken", mock.Anything, "tok").Return(&models.User{ResetToken: "tok", ResetTokenExp: &past}, nil)

		err := f.svc.ResetPassword(context.Background(), db, "tok", "new password")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("signs out everywhere", func(t *testing.T) {
		f := newAuthFixture(t)
		db, sqlMock := newTestDB(t)
		future := time.Now().Add(time.Minute)
		user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, ResetToken: "tok", ResetTokenExp: &future}
		f.users.On("FindByResetToken", mock.Anything, "tok").Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)
		f.refresh.On("DeleteByUserID", mock.Anything, "user-1").Return(nil)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		require.NoError(t, f.svc.ResetPassword(context.Background(), db, "tok", "new password"))
		assert.Empty(t, user.ResetToken)
		assert.Nil(t, user.ResetTokenExp)
		assert.True(t, auth.CheckPasswordHash("new password", user.PasswordHash))
		f.refresh.AssertCalled(t, "DeleteByUserID", mock.Anything, "user-1")
	})

	t.Run("database failure", func(t *testing.T) {
		f := newAuthFixture(t)
		db, sqlMock := newTestDB(t)
		future := time.Now().Add(time.Minute)
		user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, ResetTokenExp: &future}
		f.users.On("FindByResetToken", mock.Anything, "tok").Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(errors.New("boom"))
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		err := f.svc.ResetPassword(context.Background(), db, "tok", "new password")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 500, appErr.HTTPCode)
	})
}

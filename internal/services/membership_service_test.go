package services

import (
	"context"
	"testing"

	"memberhub_backend/internal/membership"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type membershipFixture struct {
	users    *mockUserRepo
	apps     *mockMembershipRepo
	notifier *recordingNotifier
	sent     func() int
	svc      MembershipService
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	mailer, provider := newTestMailer(t)
	f := &membershipFixture{
		users:    &mockUserRepo{},
		apps:     &mockMembershipRepo{},
		notifier: &recordingNotifier{},
		sent:     func() int { return len(provider.Sent()) },
	}
	f.svc = NewMembershipService(f.users, f.apps, mailer, f.notifier)
	return f
}

func applicant(status models.ApprovalStatus) *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Email:     "member@example.test",
		FullName:  "Member One",
		Review:    models.Review{ApprovalStatus: status},
		EmployerProfile: &models.EmployerProfile{
			CompanyName: "Acme",
			Industry:    "Manufacturing",
		},
	}
}

func TestSubmitRejectsSecondPendingApplication(t *testing.T) {
	f := newMembershipFixture(t)
	db, _ := newTestDB(t)
	f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(applicant(models.ApprovalPending), nil)
	f.apps.On("HasPending", mock.Anything, "user-1").Return(true, nil)

	_, err := f.svc.Submit(context.Background(), db, "user-1", &dto.SubmitMembershipRequest{Roles: []string{"employer"}})
	assert.ErrorIs(t, err, apperrors.ErrPendingApplicationExists)
	f.apps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRequiresCompleteProfiles(t *testing.T) {
	f := newMembershipFixture(t)
	db, _ := newTestDB(t)
	f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(applicant(models.ApprovalPending), nil)
	f.apps.On("HasPending", mock.Anything, "user-1").Return(false, nil)

	_, err := f.svc.Submit(context.Background(), db, "user-1", &dto.SubmitMembershipRequest{Roles: []string{"employer", "investor"}})
	require.ErrorIs(t, err, apperrors.ErrProfileIncomplete)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	details := appErr.Details.(map[string]interface{})
	assert.Equal(t, "/profile", details["redirect"])
	assert.Equal(t, []string{"investor"}, details["missing"])
}

func TestSubmitRequeuesRejectedAccount(t *testing.T) {
	f := newMembershipFixture(t)
	db, sqlMock := newTestDB(t)
	user := applicant(models.ApprovalRejected)
	user.RejectionReason = "incomplete"

	f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(user, nil)
	f.apps.On("HasPending", mock.Anything, "user-1").Return(false, nil)
	f.apps.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("Update", mock.Anything, user).Return(nil)
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	resp, err := f.svc.Submit(context.Background(), db, "user-1", &dto.SubmitMembershipRequest{Roles: []string{"employer"}})
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"employer"}, resp.RequestedRoles)
	assert.Equal(t, models.ApprovalPending, resp.Status)
	assert.Equal(t, models.ApprovalPending, user.ApprovalStatus)
	assert.Empty(t, user.RejectionReason)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestReviewApplicationApproveGrantsRoles(t *testing.T) {
	f := newMembershipFixture(t)
	db, sqlMock := newTestDB(t)
	user := applicant(models.ApprovalPending)
	user.Roles = pq.StringArray{"professional"}
	app := &models.MembershipApplication{
		BaseModel:      models.BaseModel{ID: "app-1"},
		UserID:         "user-1",
		RequestedRoles: pq.StringArray{"employer"},
		Status:         models.ApprovalPending,
		User:           user,
	}

	f.apps.On("FindByID", mock.Anything, "app-1").Return(app, nil)
	f.apps.On("Update", mock.Anything, app).Return(nil)
	f.users.On("Update", mock.Anything, user).Return(nil)
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	resp, err := f.svc.ReviewApplication(context.Background(), db, "admin-1", "app-1", true, "")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, resp.Status)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, "admin-1", *resp.ReviewedBy)

	assert.Equal(t, models.ApprovalApproved, user.ApprovalStatus)
	assert.Equal(t, pq.StringArray{"professional", "employer"}, user.Roles)
	assert.Equal(t, 1, f.sent())

	events := f.notifier.events()
	require.Len(t, events, 1)
	assert.Equal(t, EventMembershipReviewed, events[0].EventType)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestReviewApplicationOnlyFromPending(t *testing.T) {
	f := newMembershipFixture(t)
	db, _ := newTestDB(t)
	f.apps.On("FindByID", mock.Anything, "app-1").Return(&models.MembershipApplication{
		UserID: "user-1",
		Status: models.ApprovalRejected,
		User:   applicant(models.ApprovalRejected),
	}, nil)

	_, err := f.svc.ReviewApplication(context.Background(), db, "admin-1", "app-1", true, "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
}

func TestReviewApplicationUnknown(t *testing.T) {
	f := newMembershipFixture(t)
	db, _ := newTestDB(t)
	f.apps.On("FindByID", mock.Anything, "missing").Return(nil, repositories.ErrMembershipApplicationNotFound)

	_, err := f.svc.ReviewApplication(context.Background(), db, "admin-1", "missing", true, "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestReviewUser(t *testing.T) {
	t.Run("admins cannot review themselves", func(t *testing.T) {
		f := newMembershipFixture(t)
		db, _ := newTestDB(t)
		_, err := f.svc.ReviewUser(context.Background(), db, "admin-1", "admin-1", true, "")
		assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
	})

	t.Run("approving an account without roles fails", func(t *testing.T) {
		f := newMembershipFixture(t)
		db, sqlMock := newTestDB(t)
		f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(applicant(models.ApprovalPending), nil)
		f.apps.On("FindLatestByUserID", mock.Anything, "user-1").Return(nil, repositories.ErrMembershipApplicationNotFound)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := f.svc.ReviewUser(context.Background(), db, "admin-1", "user-1", true, "")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejecting twice is reported", func(t *testing.T) {
		f := newMembershipFixture(t)
		db, _ := newTestDB(t)
		f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(applicant(models.ApprovalRejected), nil)
		f.apps.On("FindLatestByUserID", mock.Anything, "user-1").Return(&models.MembershipApplication{
			Status: models.ApprovalRejected,
		}, nil)

		_, err := f.svc.ReviewUser(context.Background(), db, "admin-1", "user-1", false, "no")
		assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
	})

	t.Run("rejection stores the reason", func(t *testing.T) {
		f := newMembershipFixture(t)
		db, sqlMock := newTestDB(t)
		user := applicant(models.ApprovalPending)
		f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(user, nil)
		f.apps.On("FindLatestByUserID", mock.Anything, "user-1").Return(nil, repositories.ErrMembershipApplicationNotFound)
		f.users.On("Update", mock.Anything, user).Return(nil)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		resp, err := f.svc.ReviewUser(context.Background(), db, "admin-1", "user-1", false, "missing documents")
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalRejected, resp.ApprovalStatus)
		assert.Equal(t, "missing documents", user.RejectionReason)
	})
}

func TestMembershipStatus(t *testing.T) {
	f := newMembershipFixture(t)
	db, _ := newTestDB(t)
	user := applicant(models.ApprovalApproved)
	user.Roles = pq.StringArray{"employer"}
	f.users.On("FindByIDWithProfiles", mock.Anything, "user-1").Return(user, nil)
	f.apps.On("FindLatestByUserID", mock.Anything, "user-1").Return(nil, repositories.ErrMembershipApplicationNotFound)

	resp, err := f.svc.Status(db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, membership.StatusActive, resp.Status)
	assert.Equal(t, []string{"employer"}, resp.Roles)
	assert.True(t, resp.RoleFlags.IsEmployer)
	assert.True(t, resp.ProfileComplete)
	assert.Empty(t, resp.MissingProfiles)
}

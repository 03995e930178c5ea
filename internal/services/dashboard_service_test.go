package services

import (
	"testing"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/roles"
	"memberhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDashboardFixture() (*mockUserRepo, *mockOpportunityRepo, *mockApplicationRepo, DashboardService) {
	users, opps, apps := &mockUserRepo{}, &mockOpportunityRepo{}, &mockApplicationRepo{}
	return users, opps, apps, NewDashboardService(users, opps, apps)
}

func TestDashboardGates(t *testing.T) {
	t.Run("no roles redirects to role selection", func(t *testing.T) {
		_, _, _, svc := newDashboardFixture()
		db, _ := newTestDB(t)

		_, err := svc.Summary(db, &auth.Identity{UserID: "u-1"}, "employer")
		require.ErrorIs(t, err, apperrors.ErrRoleRequired)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, map[string]string{"redirect": "/select-role"}, appErr.Details)
	})

	t.Run("role not held", func(t *testing.T) {
		_, _, _, svc := newDashboardFixture()
		db, _ := newTestDB(t)

		_, err := svc.Summary(db, seeker(), "investor")
		assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	})

	t.Run("unknown dashboard", func(t *testing.T) {
		_, _, _, svc := newDashboardFixture()
		db, _ := newTestDB(t)

		_, err := svc.Summary(db, seeker(), "admin")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})

	t.Run("pending member", func(t *testing.T) {
		users, _, _, svc := newDashboardFixture()
		db, _ := newTestDB(t)
		users.On("FindByID", mock.Anything, "seeker-1").Return(&models.User{
			Review: models.Review{ApprovalStatus: models.ApprovalPending},
		}, nil)

		_, err := svc.Summary(db, seeker(), "job_seeker")
		assert.ErrorIs(t, err, apperrors.ErrNotApprovedMember)
	})
}

func TestDashboardSummaries(t *testing.T) {
	approved := func(id string) *models.User {
		return &models.User{BaseModel: models.BaseModel{ID: id}, Review: models.Review{ApprovalStatus: models.ApprovalApproved}}
	}

	t.Run("job seeker sees own applications", func(t *testing.T) {
		users, _, apps, svc := newDashboardFixture()
		db, _ := newTestDB(t)
		users.On("FindByID", mock.Anything, "seeker-1").Return(approved("seeker-1"), nil)
		apps.On("CountByApplicantGrouped", mock.Anything, "seeker-1").Return(map[models.ApplicationStatus]int64{
			models.ApplicationApplied: 2,
		}, nil)

		resp, err := svc.Summary(db, seeker(), "job_seeker")
		require.NoError(t, err)
		assert.Equal(t, "job_seeker", resp.Role)
		assert.Equal(t, int64(2), resp.Applications[models.ApplicationApplied])
		assert.Nil(t, resp.Opportunities)
		assert.Nil(t, resp.InvestmentOpportunities)
	})

	t.Run("investor sees postings and the investment count", func(t *testing.T) {
		users, opps, apps, svc := newDashboardFixture()
		db, _ := newTestDB(t)
		investor := &auth.Identity{UserID: "inv-1", Roles: roles.NewSet(roles.Investor)}
		users.On("FindByID", mock.Anything, "inv-1").Return(approved("inv-1"), nil)
		opps.On("CountByOwnerGrouped", mock.Anything, "inv-1").Return(map[models.ApprovalStatus]int64{
			models.ApprovalPending:  1,
			models.ApprovalApproved: 3,
			models.ApprovalRejected: 0,
		}, nil)
		apps.On("CountReceivedByOwner", mock.Anything, "inv-1").Return(int64(0), nil)
		opps.On("CountPublicByType", mock.Anything, models.OpportunityInvestment).Return(int64(7), nil)

		resp, err := svc.Summary(db, investor, "investor")
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Opportunities[models.ApprovalApproved])
		require.NotNil(t, resp.ApplicationsReceived)
		assert.Zero(t, *resp.ApplicationsReceived)
		require.NotNil(t, resp.InvestmentOpportunities)
		assert.Equal(t, int64(7), *resp.InvestmentOpportunities)
	})

	t.Run("admins open any dashboard", func(t *testing.T) {
		users, opps, apps, svc := newDashboardFixture()
		db, _ := newTestDB(t)
		admin := &auth.Identity{UserID: "admin-1", IsAdmin: true}
		users.On("FindByID", mock.Anything, "admin-1").Return(&models.User{BaseModel: models.BaseModel{ID: "admin-1"}, IsAdmin: true}, nil)
		opps.On("CountByOwnerGrouped", mock.Anything, "admin-1").Return(map[models.ApprovalStatus]int64{}, nil)
		apps.On("CountReceivedByOwner", mock.Anything, "admin-1").Return(int64(4), nil)

		resp, err := svc.Summary(db, admin, "employer")
		require.NoError(t, err)
		assert.Equal(t, int64(4), *resp.ApplicationsReceived)
	})
}

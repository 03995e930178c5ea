package services

import (
	"context"
	"testing"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.ApplicationStatus
		actor    TransitionActor
		want     bool
	}{
		{models.ApplicationApplied, models.ApplicationUnderReview, ActorOwner, true},
		{models.ApplicationUnderReview, models.ApplicationInterview, ActorOwner, true},
		{models.ApplicationInterview, models.ApplicationOffer, ActorOwner, true},
		{models.ApplicationApplied, models.ApplicationInterview, ActorOwner, false},
		{models.ApplicationApplied, models.ApplicationOffer, ActorOwner, false},
		{models.ApplicationInterview, models.ApplicationUnderReview, ActorOwner, false},
		{models.ApplicationApplied, models.ApplicationRejected, ActorOwner, true},
		{models.ApplicationInterview, models.ApplicationRejected, ActorOwner, true},
		{models.ApplicationApplied, models.ApplicationWithdrawn, ActorOwner, false},
		{models.ApplicationApplied, models.ApplicationWithdrawn, ActorApplicant, true},
		{models.ApplicationInterview, models.ApplicationWithdrawn, ActorApplicant, true},
		{models.ApplicationApplied, models.ApplicationUnderReview, ActorApplicant, false},
		{models.ApplicationOffer, models.ApplicationRejected, ActorOwner, false},
		{models.ApplicationRejected, models.ApplicationUnderReview, ActorOwner, false},
		{models.ApplicationWithdrawn, models.ApplicationWithdrawn, ActorApplicant, false},
		{models.ApplicationOffer, models.ApplicationWithdrawn, ActorApplicant, false},
		{models.ApplicationApplied, models.ApplicationStatus("hired"), ActorOwner, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.actor))
		})
	}
}

type applicationFixture struct {
	apps     *mockApplicationRepo
	opps     *mockOpportunityRepo
	users    *mockUserRepo
	notifier *recordingNotifier
	svc      ApplicationService
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	mailer, _ := newTestMailer(t)
	f := &applicationFixture{
		apps:     &mockApplicationRepo{},
		opps:     &mockOpportunityRepo{},
		users:    &mockUserRepo{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewApplicationService(f.apps, f.opps, f.users, mailer, f.notifier)
	return f
}

func publicJob() *models.Opportunity {
	return &models.Opportunity{
		BaseModel: models.BaseModel{ID: "opp-1"},
		OwnerID:   "owner-1",
		Type:      models.OpportunityJob,
		Title:     "Backend engineer",
		Status:    models.OpportunityOpen,
		Review:    models.Review{ApprovalStatus: models.ApprovalApproved},
		Owner:     &models.User{BaseModel: models.BaseModel{ID: "owner-1"}, Email: "owner@example.test", FullName: "Owner"},
	}
}

func seeker() *auth.Identity {
	return &auth.Identity{UserID: "seeker-1", Roles: roles.NewSet(roles.JobSeeker)}
}

func TestApplyGates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Opportunity)
		viewer *auth.Identity
		want   *apperrors.AppError
	}{
		{
			name:   "pending opportunity is hidden",
			mutate: func(o *models.Opportunity) { o.ApprovalStatus = models.ApprovalPending },
			viewer: seeker(),
		},
		{
			name:   "closed",
			mutate: func(o *models.Opportunity) { o.Status = models.OpportunityClosed },
			viewer: seeker(),
			want:   apperrors.ErrOpportunityClosed,
		},
		{
			name: "expired but not yet closed",
			mutate: func(o *models.Opportunity) {
				past := time.Now().Add(-time.Hour)
				o.ExpiresAt = &past
			},
			viewer: seeker(),
			want:   apperrors.ErrOpportunityClosed,
		},
		{
			name:   "not a job",
			mutate: func(o *models.Opportunity) { o.Type = models.OpportunityPartnership },
			viewer: seeker(),
			want:   apperrors.ErrNotJobOpportunity,
		},
		{
			name:   "own opportunity",
			viewer: &auth.Identity{UserID: "owner-1", Roles: roles.NewSet(roles.Employer)},
			want:   apperrors.ErrCannotApplyOwn,
		},
		{
			name:   "no roles",
			viewer: &auth.Identity{UserID: "u-2"},
			want:   apperrors.ErrRoleRequired,
		},
		{
			name:   "role without apply permission",
			viewer: &auth.Identity{UserID: "u-3", Roles: roles.NewSet(roles.Investor)},
			want:   apperrors.ErrInsufficientPermissions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newApplicationFixture(t)
			db, _ := newTestDB(t)
			opp := publicJob()
			if tt.mutate != nil {
				tt.mutate(opp)
			}
			f.opps.On("FindByIDWithOwner", mock.Anything, "opp-1").Return(opp, nil)

			_, err := f.svc.Apply(context.Background(), db, tt.viewer, "opp-1", &dto.ApplyRequest{})
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			if tt.want == nil {
				assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			f.apps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestApplyRequiresApprovedMember(t *testing.T) {
	f := newApplicationFixture(t)
	db, _ := newTestDB(t)
	f.opps.On("FindByIDWithOwner", mock.Anything, "opp-1").Return(publicJob(), nil)
	f.users.On("FindByID", mock.Anything, "seeker-1").Return(&models.User{
		BaseModel: models.BaseModel{ID: "seeker-1"},
		Review:    models.Review{ApprovalStatus: models.ApprovalPending},
	}, nil)

	_, err := f.svc.Apply(context.Background(), db, seeker(), "opp-1", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotApprovedMember)
}

func TestApplyDuplicate(t *testing.T) {
	f := newApplicationFixture(t)
	db, _ := newTestDB(t)
	f.opps.On("FindByIDWithOwner", mock.Anything, "opp-1").Return(publicJob(), nil)
	f.users.On("FindByID", mock.Anything, "seeker-1").Return(&models.User{
		BaseModel: models.BaseModel{ID: "seeker-1"},
		Review:    models.Review{ApprovalStatus: models.ApprovalApproved},
	}, nil)
	f.apps.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrApplicationDuplicate)

	_, err := f.svc.Apply(context.Background(), db, seeker(), "opp-1", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateApplication)
}

func TestApplyNotifiesOwner(t *testing.T) {
	f := newApplicationFixture(t)
	db, _ := newTestDB(t)
	f.opps.On("FindByIDWithOwner", mock.Anything, "opp-1").Return(publicJob(), nil)
	f.users.On("FindByID", mock.Anything, "seeker-1").Return(&models.User{
		BaseModel: models.BaseModel{ID: "seeker-1"},
		FullName:  "Sam Seeker",
		Review:    models.Review{ApprovalStatus: models.ApprovalApproved},
	}, nil)
	f.apps.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Application) bool {
		return a.OpportunityID == "opp-1" && a.ApplicantID == "seeker-1" && a.Status == models.ApplicationApplied
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Application).ID = "app-1"
	}).Return(nil)

	app, err := f.svc.Apply(context.Background(), db, seeker(), "opp-1", &dto.ApplyRequest{CoverLetter: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.Equal(t, "hello", app.CoverLetter)

	events := f.notifier.events()
	require.Len(t, events, 1)
	assert.Equal(t, "owner-1", events[0].UserID)
	assert.Equal(t, EventApplicationReceived, events[0].EventType)
}

func TestUpdateApplicationStatus(t *testing.T) {
	owner := &auth.Identity{UserID: "owner-1", Roles: roles.NewSet(roles.Employer)}
	stranger := &auth.Identity{UserID: "other", Roles: roles.NewSet(roles.Employer)}

	stored := func(status models.ApplicationStatus) *models.Application {
		return &models.Application{
			BaseModel:     models.BaseModel{ID: "app-1"},
			OpportunityID: "opp-1",
			ApplicantID:   "seeker-1",
			Status:        status,
			Opportunity:   publicJob(),
		}
	}

	t.Run("owner advances one step and the applicant is told", func(t *testing.T) {
		f := newApplicationFixture(t)
		db, _ := newTestDB(t)
		f.apps.On("FindByID", mock.Anything, "app-1").Return(stored(models.ApplicationApplied), nil)
		f.apps.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.users.On("FindByID", mock.Anything, "seeker-1").Return(&models.User{Email: "s@example.test"}, nil)

		app, err := f.svc.UpdateStatus(context.Background(), db, owner, "app-1",
			&dto.UpdateApplicationStatusRequest{Status: "under_review", Note: "looking"})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationUnderReview, app.Status)
		assert.Equal(t, "looking", app.OwnerNote)

		events := f.notifier.events()
		require.Len(t, events, 1)
		assert.Equal(t, "seeker-1", events[0].UserID)
		assert.Equal(t, EventApplicationStatus, events[0].EventType)
	})

	t.Run("owner cannot skip a step", func(t *testing.T) {
		f := newApplicationFixture(t)
		db, _ := newTestDB(t)
		f.apps.On("FindByID", mock.Anything, "app-1").Return(stored(models.ApplicationApplied), nil)

		_, err := f.svc.UpdateStatus(context.Background(), db, owner, "app-1",
			&dto.UpdateApplicationStatusRequest{Status: "offer"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidApplicationTransition)
		f.apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("applicant withdraws without notifying", func(t *testing.T) {
		f := newApplicationFixture(t)
		db, _ := newTestDB(t)
		f.apps.On("FindByID", mock.Anything, "app-1").Return(stored(models.ApplicationInterview), nil)
		f.apps.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

		app, err := f.svc.UpdateStatus(context.Background(), db, seeker(), "app-1",
			&dto.UpdateApplicationStatusRequest{Status: "withdrawn"})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationWithdrawn, app.Status)
		assert.Empty(t, f.notifier.events())
	})

	t.Run("applicant cannot move the pipeline", func(t *testing.T) {
		f := newApplicationFixture(t)
		db, _ := newTestDB(t)
		f.apps.On("FindByID", mock.Anything, "app-1").Return(stored(models.ApplicationApplied), nil)

		_, err := f.svc.UpdateStatus(context.Background(), db, seeker(), "app-1",
			&dto.UpdateApplicationStatusRequest{Status: "under_review"})
		assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	})

	t.Run("unrelated viewer gets not found", func(t *testing.T) {
		f := newApplicationFixture(t)
		db, _ := newTestDB(t)
		f.apps.On("FindByID", mock.Anything, "app-1").Return(stored(models.ApplicationApplied), nil)

		_, err := f.svc.UpdateStatus(context.Background(), db, stranger, "app-1",
			&dto.UpdateApplicationStatusRequest{Status: "rejected"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

package services

import (
	"sync"
	"testing"
	"time"

	"memberhub_backend/internal/email"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB returns a gorm handle backed by sqlmock. Repositories are mocked
// in these tests, so only transaction boundaries reach the driver.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mockSQL, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mockSQL
}

func newTestMailer(t *testing.T) (*email.Mailer, *email.LogProvider) {
	t.Helper()
	templates, err := email.NewDefaultTemplateManager()
	require.NoError(t, err)
	provider := email.NewLogProvider()
	return email.NewMailer(provider, templates, email.MailerOptions{PublicURL: "https://example.test"}), provider
}

type notification struct {
	UserID    string
	EventType string
	Payload   interface{}
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []notification
}

func (n *recordingNotifier) Notify(userID, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, notification{UserID: userID, EventType: eventType, Payload: payload})
}

func (n *recordingNotifier) events() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.got...)
}

// ============================================
// Repository mocks
// ============================================

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(db *gorm.DB, user *models.User) error {
	return m.Called(db, user).Error(0)
}

func (m *mockUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	args := m.Called(db, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByIDWithProfiles(db *gorm.DB, id string) (*models.User, error) {
	args := m.Called(db, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(db *gorm.DB, address string) (*models.User, error) {
	args := m.Called(db, address)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByVerificationToken(db *gorm.DB, token string) (*models.User, error) {
	args := m.Called(db, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByResetToken(db *gorm.DB, token string) (*models.User, error) {
	args := m.Called(db, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Update(db *gorm.DB, user *models.User) error {
	return m.Called(db, user).Error(0)
}

func (m *mockUserRepo) UpdateLastLogin(db *gorm.DB, userID string, at time.Time) error {
	return m.Called(db, userID, at).Error(0)
}

func (m *mockUserRepo) Delete(db *gorm.DB, userID string) error {
	return m.Called(db, userID).Error(0)
}

func (m *mockUserRepo) FindWithFilter(db *gorm.DB, filter repositories.UserFilter) ([]models.User, int64, error) {
	args := m.Called(db, filter)
	users, _ := args.Get(0).([]models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

type mockRefreshTokenRepo struct{ mock.Mock }

func (m *mockRefreshTokenRepo) Create(db *gorm.DB, token *models.RefreshToken) error {
	return m.Called(db, token).Error(0)
}

func (m *mockRefreshTokenRepo) FindByToken(db *gorm.DB, tokenString string) (*models.RefreshToken, error) {
	args := m.Called(db, tokenString)
	tok, _ := args.Get(0).(*models.RefreshToken)
	return tok, args.Error(1)
}

func (m *mockRefreshTokenRepo) DeleteByToken(db *gorm.DB, tokenString string) error {
	return m.Called(db, tokenString).Error(0)
}

func (m *mockRefreshTokenRepo) DeleteByUserID(db *gorm.DB, userID string) error {
	return m.Called(db, userID).Error(0)
}

func (m *mockRefreshTokenRepo) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	args := m.Called(db, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockMembershipRepo struct{ mock.Mock }

func (m *mockMembershipRepo) Create(db *gorm.DB, app *models.MembershipApplication) error {
	return m.Called(db, app).Error(0)
}

func (m *mockMembershipRepo) FindByID(db *gorm.DB, id string) (*models.MembershipApplication, error) {
	args := m.Called(db, id)
	app, _ := args.Get(0).(*models.MembershipApplication)
	return app, args.Error(1)
}

func (m *mockMembershipRepo) FindLatestByUserID(db *gorm.DB, userID string) (*models.MembershipApplication, error) {
	args := m.Called(db, userID)
	app, _ := args.Get(0).(*models.MembershipApplication)
	return app, args.Error(1)
}

func (m *mockMembershipRepo) FindByUserID(db *gorm.DB, userID string) ([]models.MembershipApplication, error) {
	args := m.Called(db, userID)
	apps, _ := args.Get(0).([]models.MembershipApplication)
	return apps, args.Error(1)
}

func (m *mockMembershipRepo) HasPending(db *gorm.DB, userID string) (bool, error) {
	args := m.Called(db, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMembershipRepo) FindByStatus(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) ([]models.MembershipApplication, int64, error) {
	args := m.Called(db, status, page, pageSize)
	apps, _ := args.Get(0).([]models.MembershipApplication)
	return apps, args.Get(1).(int64), args.Error(2)
}

func (m *mockMembershipRepo) Update(db *gorm.DB, app *models.MembershipApplication) error {
	return m.Called(db, app).Error(0)
}

type mockOpportunityRepo struct{ mock.Mock }

func (m *mockOpportunityRepo) Create(db *gorm.DB, opp *models.Opportunity) error {
	return m.Called(db, opp).Error(0)
}

func (m *mockOpportunityRepo) FindByID(db *gorm.DB, id string) (*models.Opportunity, error) {
	args := m.Called(db, id)
	opp, _ := args.Get(0).(*models.Opportunity)
	return opp, args.Error(1)
}

func (m *mockOpportunityRepo) FindByIDWithOwner(db *gorm.DB, id string) (*models.Opportunity, error) {
	args := m.Called(db, id)
	opp, _ := args.Get(0).(*models.Opportunity)
	return opp, args.Error(1)
}

func (m *mockOpportunityRepo) Update(db *gorm.DB, opp *models.Opportunity) error {
	return m.Called(db, opp).Error(0)
}

func (m *mockOpportunityRepo) Delete(db *gorm.DB, id string) error {
	return m.Called(db, id).Error(0)
}

func (m *mockOpportunityRepo) IncrementViews(db *gorm.DB, id string) error {
	return m.Called(db, id).Error(0)
}

func (m *mockOpportunityRepo) FindPublic(db *gorm.DB, filter repositories.OpportunityFilter) ([]models.Opportunity, int64, error) {
	args := m.Called(db, filter)
	opps, _ := args.Get(0).([]models.Opportunity)
	return opps, args.Get(1).(int64), args.Error(2)
}

func (m *mockOpportunityRepo) FindByOwner(db *gorm.DB, ownerID string, page, pageSize int) ([]models.Opportunity, int64, error) {
	args := m.Called(db, ownerID, page, pageSize)
	opps, _ := args.Get(0).([]models.Opportunity)
	return opps, args.Get(1).(int64), args.Error(2)
}

func (m *mockOpportunityRepo) FindByApprovalStatus(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) ([]models.Opportunity, int64, error) {
	args := m.Called(db, status, page, pageSize)
	opps, _ := args.Get(0).([]models.Opportunity)
	return opps, args.Get(1).(int64), args.Error(2)
}

func (m *mockOpportunityRepo) CloseExpired(db *gorm.DB, now time.Time) (int64, error) {
	args := m.Called(db, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOpportunityRepo) CountByOwnerGrouped(db *gorm.DB, ownerID string) (map[models.ApprovalStatus]int64, error) {
	args := m.Called(db, ownerID)
	counts, _ := args.Get(0).(map[models.ApprovalStatus]int64)
	return counts, args.Error(1)
}

func (m *mockOpportunityRepo) CountPublicByType(db *gorm.DB, t models.OpportunityType) (int64, error) {
	args := m.Called(db, t)
	return args.Get(0).(int64), args.Error(1)
}

type mockApplicationRepo struct{ mock.Mock }

func (m *mockApplicationRepo) Create(db *gorm.DB, app *models.Application) error {
	return m.Called(db, app).Error(0)
}

func (m *mockApplicationRepo) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	args := m.Called(db, id)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockApplicationRepo) Exists(db *gorm.DB, opportunityID, applicantID string) (bool, error) {
	args := m.Called(db, opportunityID, applicantID)
	return args.Bool(0), args.Error(1)
}

func (m *mockApplicationRepo) FindByApplicant(db *gorm.DB, applicantID string, page, pageSize int) ([]models.Application, int64, error) {
	args := m.Called(db, applicantID, page, pageSize)
	apps, _ := args.Get(0).([]models.Application)
	return apps, args.Get(1).(int64), args.Error(2)
}

func (m *mockApplicationRepo) FindByOpportunity(db *gorm.DB, opportunityID string, page, pageSize int) ([]models.Application, int64, error) {
	args := m.Called(db, opportunityID, page, pageSize)
	apps, _ := args.Get(0).([]models.Application)
	return apps, args.Get(1).(int64), args.Error(2)
}

func (m *mockApplicationRepo) UpdateStatus(db *gorm.DB, app *models.Application) error {
	return m.Called(db, app).Error(0)
}

func (m *mockApplicationRepo) CountByApplicantGrouped(db *gorm.DB, applicantID string) (map[models.ApplicationStatus]int64, error) {
	args := m.Called(db, applicantID)
	counts, _ := args.Get(0).(map[models.ApplicationStatus]int64)
	return counts, args.Error(1)
}

func (m *mockApplicationRepo) CountReceivedByOwner(db *gorm.DB, ownerID string) (int64, error) {
	args := m.Called(db, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

package repositories

import (
	"database/sql/driver"
	"testing"
	"time"

	"memberhub_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==========================
// Helpers
// ==========================

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPaginate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "leaders" LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var out []models.Leader
	require.NoError(t, db.Scopes(Paginate(2, 500)).Find(&out).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern(" 50%_off "))
}

// ==========================
// Users
// ==========================

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(db, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(db, &models.User{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))

	user := &models.User{Email: "new@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(db, user))
	assert.Equal(t, "user-1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectExec(`DELETE FROM "users" WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(db, "ghost"), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Refresh tokens
// ==========================

func TestRefreshTokenRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefreshTokenRepository()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM "refresh_tokens" WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteExpired(db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	mock.ExpectExec(`DELETE FROM "refresh_tokens" WHERE token = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteByToken(db, "gone"), ErrRefreshTokenNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Opportunities
// ==========================

func TestOpportunityRepository_FindPublic_AppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOpportunityRepository()
	remote := true
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "opportunities" WHERE \(approval_status = \$1 AND status = \$2\) AND \(expires_at IS NULL OR expires_at > \$3\) AND type NOT IN \(\$4\) AND location ILIKE \$5 AND is_remote = \$6`).
		WithArgs(models.ApprovalApproved, models.OpportunityOpen, now, models.OpportunityInvestment, "%Almaty%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "opportunities" WHERE .* ORDER BY created_at DESC LIMIT \$7`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "type"}).AddRow("opp-1", "Go developer", "job"))

	opps, total, err := repo.FindPublic(db, OpportunityFilter{
		ExcludeTypes: []models.OpportunityType{models.OpportunityInvestment},
		Location:     "Almaty",
		IsRemote:     &remote,
		Now:          now,
		Page:         1,
		PageSize:     10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, opps, 1)
	assert.Equal(t, "Go developer", opps[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpportunityRepository_CloseExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOpportunityRepository()
	now := time.Now()

	mock.ExpectExec(`UPDATE "opportunities" SET "status"=\$1,"updated_at"=\$2 WHERE status = \$3 AND expires_at IS NOT NULL AND expires_at < \$4`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.CloseExpired(db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpportunityRepository_CountByOwnerGrouped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOpportunityRepository()

	mock.ExpectQuery(`SELECT approval_status, COUNT\(\*\) AS count FROM "opportunities" WHERE owner_id = \$1 GROUP BY "approval_status"`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"approval_status", "count"}).
			AddRow("approved", 4).
			AddRow("pending", 1))

	counts, err := repo.CountByOwnerGrouped(db, "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, counts[models.ApprovalApproved])
	assert.EqualValues(t, 1, counts[models.ApprovalPending])
	assert.EqualValues(t, 0, counts[models.ApprovalRejected])
}

// ==========================
// Applications
// ==========================

func TestApplicationRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "applications" WHERE opportunity_id = \$1 AND applicant_id = \$2`).
		WithArgs("opp-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(db, &models.Application{OpportunityID: "opp-1", ApplicantID: "user-1"})
	assert.ErrorIs(t, err, ErrApplicationDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpdateStatus_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository()

	mock.ExpectExec(`UPDATE "applications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(db, &models.Application{BaseModel: models.BaseModel{ID: "app-1"}, Status: models.ApplicationInterview})
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

// ==========================
// Content
// ==========================

func TestContentRepository_Reorder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContentRepository[models.Video]()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "videos" SET "display_order"=\$1`).
		WithArgs(0, sqlmock.AnyArg(), "v-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "videos" SET "display_order"=\$1`).
		WithArgs(1, sqlmock.AnyArg(), "v-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Reorder(db, []string{"v-2", "v-1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_Reorder_UnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContentRepository[models.Leader]()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "leaders" SET "display_order"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Reorder(db, []string{"missing"}), ErrContentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_FindVisible(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContentRepository[models.GalleryImage]()

	mock.ExpectQuery(`SELECT \* FROM "gallery_images" WHERE is_visible = \$1 ORDER BY display_order ASC, created_at ASC`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "image_url", "display_order", "is_visible"}).
			AddRow("g-1", "/uploads/a.png", 0, true))

	items, err := repo.FindVisible(db)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/uploads/a.png", items[0].ImageURL)
}

// boolArgs records every bool bound to a statement.
type boolArgs struct{ seen []bool }

func (b *boolArgs) ConvertValue(v interface{}) (driver.Value, error) {
	dv, err := driver.DefaultParameterConverter.ConvertValue(v)
	if flag, ok := dv.(bool); ok {
		b.seen = append(b.seen, flag)
	}
	return dv, err
}

func TestContentRepository_Create_Hidden(t *testing.T) {
	args := &boolArgs{}
	sqlDB, mock, err := sqlmock.New(sqlmock.ValueConverterOption(args))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO "leaders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l-1"))

	leader := &models.Leader{Name: "Ada", IsVisible: false}
	require.NoError(t, NewContentRepository[models.Leader]().Create(db, leader))

	assert.Equal(t, []bool{false}, args.seen)
	assert.False(t, leader.IsVisible)
	assert.Equal(t, "l-1", leader.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

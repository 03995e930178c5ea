package repositories

import (
	"errors"

	"memberhub_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMembershipApplicationNotFound = errors.New("membership application not found")
)

type MembershipRepository interface {
	Create(db *gorm.DB, app *models.MembershipApplication) error
	FindByID(db *gorm.DB, id string) (*models.MembershipApplication, error)
	// FindLatestByUserID returns the most recently submitted application.
	FindLatestByUserID(db *gorm.DB, userID string) (*models.MembershipApplication, error)
	FindByUserID(db *gorm.DB, userID string) ([]models.MembershipApplication, error)
	HasPending(db *gorm.DB, userID string) (bool, error)
	FindByStatus(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) ([]models.MembershipApplication, int64, error)
	Update(db *gorm.DB, app *models.MembershipApplication) error
}

type membershipRepository struct{}

func NewMembershipRepository() MembershipRepository {
	return &membershipRepository{}
}

func (r *membershipRepository) Create(db *gorm.DB, app *models.MembershipApplication) error {
	return db.Create(app).Error
}

func (r *membershipRepository) FindByID(db *gorm.DB, id string) (*models.MembershipApplication, error) {
	var app models.MembershipApplication
	if err := db.Preload("User").First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *membershipRepository) FindLatestByUserID(db *gorm.DB, userID string) (*models.MembershipApplication, error) {
	var app models.MembershipApplication
	err := db.Where("user_id = ?", userID).Order("created_at DESC").First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *membershipRepository) FindByUserID(db *gorm.DB, userID string) ([]models.MembershipApplication, error) {
	var apps []models.MembershipApplication
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *membershipRepository) HasPending(db *gorm.DB, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.MembershipApplication{}).
		Where("user_id = ? AND status = ?", userID, models.ApprovalPending).
		Count(&count).Error
	return count > 0, err
}

func (r *membershipRepository) FindByStatus(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) ([]models.MembershipApplication, int64, error) {
	query := db.Model(&models.MembershipApplication{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.MembershipApplication
	err := query.Preload("User").
		Order("created_at ASC").
		Scopes(Paginate(page, pageSize)).
		Find(&apps).Error
	return apps, total, err
}

func (r *membershipRepository) Update(db *gorm.DB, app *models.MembershipApplication) error {
	result := db.Model(app).Omit(clause.Associations).Updates(map[string]interface{}{
		"status":      app.Status,
		"review_note": app.ReviewNote,
		"reviewed_by": app.ReviewedBy,
		"reviewed_at": app.ReviewedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipApplicationNotFound
	}
	return nil
}
